package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bpace/internal/config"
	"github.com/theirongolddev/bpace/internal/pipeline"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded (BPACE_* env and flags applied on top)")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Log level: %s\n", cfg.General.LogLevel)
	fmt.Println()

	fmt.Println("  [Ledger]")
	if cfg.Ledger.Path != "" {
		fmt.Printf("    Path:       %s\n", cfg.Ledger.Path)
	} else {
		fmt.Println("    Path:       not configured")
	}
	fmt.Printf("    Columns:    %s / %s / %s\n", cfg.Ledger.MonthColumn, cfg.Ledger.CategoryColumn, cfg.Ledger.AmountColumn)
	fmt.Printf("    Excluded:   %s\n", orNone(strings.Join(cfg.Ledger.ExcludedCategories, ", ")))
	fmt.Printf("    Cache:      %v (%s)\n", cfg.Ledger.UseCache, pipeline.CachePath())
	fmt.Println()

	fmt.Println("  [Budget]")
	fmt.Printf("    Templates:        %s\n", cfg.TemplatesPath())
	fmt.Printf("    Default template: %s\n", orNone(cfg.Budget.DefaultTemplate))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Locale:   %s\n", cfg.Appearance.Locale)
	fmt.Printf("    Currency: %s\n", cfg.Appearance.Currency)
	fmt.Printf("    Theme:    %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  Run `bpace setup` to reconfigure.")
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
