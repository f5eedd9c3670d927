// Package config loads bpace settings from a TOML file with env and flag overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/theirongolddev/bpace/internal/ledger"
	"github.com/theirongolddev/bpace/internal/locale"
)

// EnvPrefix is the prefix for environment overrides, e.g. BPACE_LEDGER_PATH.
const EnvPrefix = "BPACE"

// Config holds all bpace configuration.
type Config struct {
	General    GeneralConfig    `toml:"general" mapstructure:"general"`
	Ledger     LedgerConfig     `toml:"ledger" mapstructure:"ledger"`
	Budget     BudgetConfig     `toml:"budget" mapstructure:"budget"`
	Appearance AppearanceConfig `toml:"appearance" mapstructure:"appearance"`
	Server     ServerConfig     `toml:"server" mapstructure:"server"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	LogLevel string `toml:"log_level" mapstructure:"log_level"`
}

// LedgerConfig describes where the ledger lives and how to read it.
type LedgerConfig struct {
	Path               string   `toml:"path,omitempty" mapstructure:"path"`
	MonthColumn        string   `toml:"month_column" mapstructure:"month_column"`
	CategoryColumn     string   `toml:"category_column" mapstructure:"category_column"`
	AmountColumn       string   `toml:"amount_column" mapstructure:"amount_column"`
	ExcludedCategories []string `toml:"excluded_categories" mapstructure:"excluded_categories"`
	UseCache           bool     `toml:"use_cache" mapstructure:"use_cache"`
}

// BudgetConfig holds template store settings.
type BudgetConfig struct {
	TemplatesPath   string `toml:"templates_path,omitempty" mapstructure:"templates_path"`
	DefaultTemplate string `toml:"default_template,omitempty" mapstructure:"default_template"`
}

// AppearanceConfig holds locale and theme settings.
type AppearanceConfig struct {
	Locale   string `toml:"locale" mapstructure:"locale"`
	Currency string `toml:"currency" mapstructure:"currency"`
	Theme    string `toml:"theme" mapstructure:"theme"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr" mapstructure:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Ledger: LedgerConfig{
			MonthColumn:        ledger.DefaultColumns.Month,
			CategoryColumn:     ledger.DefaultColumns.Category,
			AmountColumn:       ledger.DefaultColumns.Amount,
			ExcludedCategories: append([]string(nil), ledger.DefaultExcluded...),
			UseCache:           true,
		},
		Appearance: AppearanceConfig{
			Locale:   "en",
			Currency: "₪",
			Theme:    "flexoki-dark",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8788",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bpace")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "bpace")
}

// ConfigPath returns the full path to the config file.
// BPACE_CONFIG overrides the default location.
func ConfigPath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Resolve loads the config file and applies BPACE_* environment variables and
// any flags already bound on v. Precedence: flag, env, file, default.
func Resolve(v *viper.Viper) (Config, error) {
	cfg, err := Load()
	if err != nil {
		return cfg, err
	}

	seed(v, cfg)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return out, nil
}

// seed registers every key with viper so env overrides are picked up by Unmarshal.
func seed(v *viper.Viper, cfg Config) {
	v.SetDefault("general.log_level", cfg.General.LogLevel)
	v.SetDefault("ledger.path", cfg.Ledger.Path)
	v.SetDefault("ledger.month_column", cfg.Ledger.MonthColumn)
	v.SetDefault("ledger.category_column", cfg.Ledger.CategoryColumn)
	v.SetDefault("ledger.amount_column", cfg.Ledger.AmountColumn)
	v.SetDefault("ledger.excluded_categories", cfg.Ledger.ExcludedCategories)
	v.SetDefault("ledger.use_cache", cfg.Ledger.UseCache)
	v.SetDefault("budget.templates_path", cfg.Budget.TemplatesPath)
	v.SetDefault("budget.default_template", cfg.Budget.DefaultTemplate)
	v.SetDefault("appearance.locale", cfg.Appearance.Locale)
	v.SetDefault("appearance.currency", cfg.Appearance.Currency)
	v.SetDefault("appearance.theme", cfg.Appearance.Theme)
	v.SetDefault("server.addr", cfg.Server.Addr)
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Validate checks the configuration and reports every problem at once.
func (c Config) Validate() error {
	var errs []string

	if _, err := log.ParseLevel(c.General.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("general.log_level %q is not a log level", c.General.LogLevel))
	}
	if strings.TrimSpace(c.Ledger.MonthColumn) == "" {
		errs = append(errs, "ledger.month_column is required")
	}
	if strings.TrimSpace(c.Ledger.CategoryColumn) == "" {
		errs = append(errs, "ledger.category_column is required")
	}
	if strings.TrimSpace(c.Ledger.AmountColumn) == "" {
		errs = append(errs, "ledger.amount_column is required")
	}
	if !supportedLocale(c.Appearance.Locale) {
		errs = append(errs, fmt.Sprintf("appearance.locale %q is not one of %v", c.Appearance.Locale, locale.Supported()))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, "server.addr is required")
	}

	if len(errs) > 0 {
		return errors.New("configuration validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

// LedgerOptions converts the ledger section to parser options.
func (c Config) LedgerOptions() ledger.Options {
	return ledger.Options{
		Columns: ledger.Columns{
			Month:    c.Ledger.MonthColumn,
			Category: c.Ledger.CategoryColumn,
			Amount:   c.Ledger.AmountColumn,
		},
		Excluded: c.Ledger.ExcludedCategories,
	}
}

// TemplatesPath returns the template store path, defaulting next to the config file.
func (c Config) TemplatesPath() string {
	if c.Budget.TemplatesPath != "" {
		return c.Budget.TemplatesPath
	}
	return filepath.Join(ConfigDir(), "templates.json")
}

// Labels builds presentation labels from the appearance section.
func (c Config) Labels() locale.Labels {
	b := locale.New(c.Appearance.Locale)
	if c.Appearance.Currency != "" {
		b = b.WithCurrency(c.Appearance.Currency)
	}
	return b.Build()
}

func supportedLocale(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, l := range locale.Supported() {
		if l == lang {
			return true
		}
	}
	return false
}
