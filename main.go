package main

import (
	"github.com/theirongolddev/bpace/cmd"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cmd.Execute()
}
