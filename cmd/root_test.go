package cmd

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestParseAsOf(t *testing.T) {
	fallback := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"", fallback, false},
		{"2024-07-02", time.Date(2024, 7, 2, 0, 0, 0, 0, time.Local), false},
		{"2024-7-2", time.Time{}, true},
		{"yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseAsOf(tt.in, fallback)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAsOf(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("parseAsOf(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBindFlags_OnlyChanged(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("ledger", "", "")
	fs.String("log-level", "", "")
	if err := fs.Set("ledger", "/tmp/ledger.csv"); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetDefault("general.log_level", "warn")
	if err := bindFlags(v, fs); err != nil {
		t.Fatalf("bindFlags: %v", err)
	}

	if got := v.GetString("ledger.path"); got != "/tmp/ledger.csv" {
		t.Errorf("ledger.path = %q, want /tmp/ledger.csv", got)
	}
	// An unset flag must not shadow the lower layers with its empty default.
	if got := v.GetString("general.log_level"); got != "warn" {
		t.Errorf("general.log_level = %q, want warn", got)
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/test")
	if got := expandPath("~/ledgers"); got != "/home/test/ledgers" {
		t.Errorf("expandPath(~/ledgers) = %q", got)
	}
	if got := expandPath("/abs/x.csv"); got != "/abs/x.csv" {
		t.Errorf("expandPath(/abs/x.csv) = %q", got)
	}
}
