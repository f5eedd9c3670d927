package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/bpace/internal/config"
	"github.com/theirongolddev/bpace/internal/tui"
	"github.com/theirongolddev/bpace/internal/tui/theme"
)

var flagTUITemplate string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive budget dashboard",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&flagTUITemplate, "template", "t", "", "Template to load once the ledger is read")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor so background styling always produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	tpl, err := openTemplates()
	if err != nil {
		logger.Warn("template store unavailable", "path", cfg.TemplatesPath(), "err", err)
		tpl = nil
	}

	// The TUI owns the terminal; only errors reach stderr.
	logger.SetLevel(max(logger.GetLevel(), log.ErrorLevel))

	app := tui.NewApp(tui.Options{
		Config:     cfg,
		Templates:  tpl,
		Logger:     logger,
		LedgerPath: cfg.Ledger.Path,
		Year:       flagYear,
		Template:   flagTUITemplate,
		UseCache:   cfg.Ledger.UseCache,
		NeedSetup:  !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
