package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bpace/internal/config"
	"github.com/theirongolddev/bpace/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Start from the file alone so env overrides are not persisted.
	fileCfg, err := config.Load()
	if err != nil {
		return err
	}

	updated, err := tui.RunSetup(fileCfg)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	if err := config.Save(updated); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `bpace setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
