package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func withConfigHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("BPACE_CONFIG", "")
	return dir
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	withConfigHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:8788" {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
	if len(cfg.Ledger.ExcludedCategories) != 4 {
		t.Errorf("ExcludedCategories = %v, want 4 defaults", cfg.Ledger.ExcludedCategories)
	}
	if Exists() {
		t.Error("Exists = true before Save")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	home := withConfigHome(t)

	cfg := DefaultConfig()
	cfg.Ledger.Path = "/data/ledger"
	cfg.Ledger.MonthColumn = "Month"
	cfg.Appearance.Locale = "he"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ConfigPath() != filepath.Join(home, "bpace", "config.toml") {
		t.Errorf("ConfigPath = %s", ConfigPath())
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Ledger.Path != "/data/ledger" || got.Ledger.MonthColumn != "Month" || got.Appearance.Locale != "he" {
		t.Errorf("Load = %+v", got)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	home := withConfigHome(t)
	path := filepath.Join(home, "bpace", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[ledger]\npath = \"x.csv\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ledger.Path != "x.csv" {
		t.Errorf("Ledger.Path = %q, want x.csv", cfg.Ledger.Path)
	}
	if cfg.Appearance.Theme != "flexoki-dark" {
		t.Errorf("Theme = %q, want default", cfg.Appearance.Theme)
	}
}

func TestResolve_EnvOverrides(t *testing.T) {
	withConfigHome(t)
	t.Setenv("BPACE_LEDGER_PATH", "/env/ledger.csv")
	t.Setenv("BPACE_SERVER_ADDR", ":9999")
	t.Setenv("BPACE_LEDGER_EXCLUDED_CATEGORIES", "Salary,Bonus")

	cfg, err := Resolve(viper.New())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Ledger.Path != "/env/ledger.csv" {
		t.Errorf("Ledger.Path = %q, want env value", cfg.Ledger.Path)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want :9999", cfg.Server.Addr)
	}
	if got := cfg.Ledger.ExcludedCategories; len(got) != 2 || got[0] != "Salary" {
		t.Errorf("ExcludedCategories = %v, want [Salary Bonus]", got)
	}
	if cfg.Ledger.AmountColumn != DefaultConfig().Ledger.AmountColumn {
		t.Errorf("AmountColumn = %q, want default", cfg.Ledger.AmountColumn)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []string
	}{
		{"defaults valid", func(*Config) {}, nil},
		{"bad log level", func(c *Config) { c.General.LogLevel = "loud" }, []string{"general.log_level"}},
		{"missing columns", func(c *Config) {
			c.Ledger.MonthColumn = ""
			c.Ledger.AmountColumn = " "
		}, []string{"ledger.month_column", "ledger.amount_column"}},
		{"bad locale", func(c *Config) { c.Appearance.Locale = "fr" }, []string{"appearance.locale"}},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, []string{"server.addr"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q missing %q", err, want)
				}
			}
		})
	}
}

func TestDerived(t *testing.T) {
	home := withConfigHome(t)
	cfg := DefaultConfig()

	if got := cfg.TemplatesPath(); got != filepath.Join(home, "bpace", "templates.json") {
		t.Errorf("TemplatesPath = %s", got)
	}
	cfg.Budget.TemplatesPath = "/tmp/t.json"
	if got := cfg.TemplatesPath(); got != "/tmp/t.json" {
		t.Errorf("TemplatesPath override = %s", got)
	}

	opts := cfg.LedgerOptions()
	if opts.Columns.Month != cfg.Ledger.MonthColumn || len(opts.Excluded) != 4 {
		t.Errorf("LedgerOptions = %+v", opts)
	}

	cfg.Appearance.Currency = "$"
	if got := cfg.Labels().FormatMoney(1500); got != "$1,500" {
		t.Errorf("Labels().FormatMoney = %q, want $1,500", got)
	}
}
