package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/bpace/internal/config"
	"github.com/theirongolddev/bpace/internal/locale"
	"github.com/theirongolddev/bpace/internal/tui/theme"
)

// setupValues is bound to the first-run form fields.
type setupValues struct {
	ledgerPath string
	locale     string
	currency   string
	theme      string
}

var languageNames = map[string]string{
	"en": "English",
	"he": "עברית",
}

func newSetupForm(cfg config.Config, vals *setupValues) *huh.Form {
	*vals = setupValues{
		ledgerPath: cfg.Ledger.Path,
		locale:     cfg.Appearance.Locale,
		currency:   cfg.Appearance.Currency,
		theme:      cfg.Appearance.Theme,
	}

	langOpts := make([]huh.Option[string], 0, len(locale.Supported()))
	for _, lang := range locale.Supported() {
		langOpts = append(langOpts, huh.NewOption(languageNames[lang], lang))
	}
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to bpace").
				Description("Track yearly category budgets against your ledger exports.\nLet's set a few defaults."),
			huh.NewInput().
				Title("Ledger file or directory").
				Description("CSV or XLSX export. Leave empty to open one later with l.").
				Value(&vals.ledgerPath).
				Validate(validateLedgerPath),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Language").
				Options(langOpts...).
				Value(&vals.locale),
			huh.NewInput().
				Title("Currency symbol").
				CharLimit(4).
				Value(&vals.currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
		),
	).WithShowHelp(false)
}

func validateLedgerPath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := os.Stat(expandHome(s)); err != nil {
		return errors.New("path does not exist")
	}
	return nil
}

// apply copies the form values onto cfg.
func (v setupValues) apply(cfg config.Config) config.Config {
	cfg.Ledger.Path = expandHome(strings.TrimSpace(v.ledgerPath))
	if v.locale != "" {
		cfg.Appearance.Locale = v.locale
	}
	if c := strings.TrimSpace(v.currency); c != "" {
		cfg.Appearance.Currency = c
	}
	if v.theme != "" {
		cfg.Appearance.Theme = v.theme
	}
	return cfg
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupForm = nil
		cfg := a.setupVals.apply(a.cfg)
		if err := config.Save(cfg); err != nil {
			a.setError(fmt.Errorf("saving config: %w", err))
		} else {
			a.setInfo("Saved %s", config.ConfigPath())
		}
		a.applyConfig(cfg)
		if a.ledgerPath == "" {
			a.ledgerPath = cfg.Ledger.Path
		}
		if a.ledgerPath != "" {
			return a.startLoad()
		}
		return a, nil
	case huh.StateAborted:
		a.setupForm = nil
		if a.ledgerPath != "" {
			return a.startLoad()
		}
		return a, nil
	}

	return a, cmd
}

// RunSetup runs the first-run wizard standalone and returns the updated
// configuration. The caller saves it.
func RunSetup(cfg config.Config) (config.Config, error) {
	var vals setupValues
	if err := newSetupForm(cfg, &vals).Run(); err != nil {
		return cfg, err
	}
	return vals.apply(cfg), nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
