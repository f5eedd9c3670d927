// Package cmd implements the bpace CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/theirongolddev/bpace/internal/cli"
	"github.com/theirongolddev/bpace/internal/config"
	"github.com/theirongolddev/bpace/internal/pipeline"
	"github.com/theirongolddev/bpace/internal/session"
	"github.com/theirongolddev/bpace/internal/store"
	"github.com/theirongolddev/bpace/internal/templates"
)

var (
	flagLedger     string
	flagYear       string
	flagLogLevel   string
	flagConfigPath string
	flagNoCache    bool
	flagQuiet      bool
)

// Resolved in PersistentPreRunE for every command.
var (
	cfg    config.Config
	logger *log.Logger
)

var errNoLedger = errors.New("no ledger configured: pass --ledger, set BPACE_LEDGER_PATH or run bpace setup")

var rootCmd = &cobra.Command{
	Use:   "bpace",
	Short: "Budget pacing for ledger exports",
	Long:  "Compare yearly category budgets against a CSV or XLSX ledger export, paced by how much of the year has passed.",
	// Bare bpace runs the analysis.
	RunE:              runAnalyze,
	PersistentPreRunE: resolveConfig,
	SilenceUsage:      true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagLedger, "ledger", "l", "", "Ledger file or directory (CSV/XLSX)")
	pf.StringVarP(&flagYear, "year", "y", "", "Year to analyze (default: latest in ledger)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagConfigPath, "config", "", "Config file path")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite cache, reparse everything")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")

	addAnalyzeFlags(rootCmd)
}

// resolveConfig layers flags over BPACE_* env vars over the config file.
func resolveConfig(cmd *cobra.Command, _ []string) error {
	if flagConfigPath != "" {
		if err := os.Setenv(config.EnvPrefix+"_CONFIG", flagConfigPath); err != nil {
			return err
		}
	}

	v := viper.New()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	resolved, err := config.Resolve(v)
	if err != nil {
		return err
	}
	if flagNoCache {
		resolved.Ledger.UseCache = false
	}
	resolved.Ledger.Path = expandPath(resolved.Ledger.Path)
	if err := resolved.Validate(); err != nil {
		return err
	}
	cfg = resolved
	logger = newLogger(cfg.General.LogLevel)
	return nil
}

var flagKeys = map[string]string{
	"ledger":    "ledger.path",
	"log-level": "general.log_level",
}

// bindFlags binds the explicitly set flags to their config keys so unset
// flags do not shadow env or file values.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

func newLogger(level string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "bpace",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	}
	return l
}

// loadLedger is the shared ledger loading path used by all commands.
// Uses the SQLite cache when enabled for fast subsequent runs.
func loadLedger(ctx context.Context) (*pipeline.LoadResult, error) {
	path := cfg.Ledger.Path
	if path == "" {
		return nil, errNoLedger
	}
	opts := cfg.LedgerOptions()

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Reading %s...\n", path)
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
	}

	if cfg.Ledger.UseCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			logger.Warn("cache unavailable, doing full parse", "err", err)
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.LoadWithCache(ctx, path, opts, cache, logger, progressFn)
			if err != nil {
				return nil, err
			}
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "\r  %d cached + %d parsed, %s rows    \n",
					cr.CacheHits, cr.Reparsed, cli.FormatNumber(int64(cr.RowsKept)))
			}
			return &cr.LoadResult, nil
		}
	}

	result, err := pipeline.Load(ctx, path, opts, logger, progressFn)
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "\r  Parsed %d files, %s rows    \n",
			result.TotalFiles, cli.FormatNumber(int64(result.RowsKept)))
	}
	return result, nil
}

// loadSession loads the configured ledger into a fresh session.
func loadSession(ctx context.Context) (*session.State, error) {
	res, err := loadLedger(ctx)
	if err != nil {
		return nil, err
	}
	st := session.New()
	st.ReplaceLedger(res, cfg.Ledger.Path)
	return st, nil
}

func openTemplates() (*templates.Store, error) {
	return templates.Open(cfg.TemplatesPath())
}

func expandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
