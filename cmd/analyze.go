package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bpace/internal/cli"
	"github.com/theirongolddev/bpace/internal/session"
)

var (
	flagTemplate string
	flagAsOf     string
	flagJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Pace each category's spend against its budget",
	RunE:  runAnalyze,
}

func init() {
	addAnalyzeFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// addAnalyzeFlags is shared by analyze and the bare root command.
func addAnalyzeFlags(c *cobra.Command) {
	c.Flags().StringVarP(&flagTemplate, "template", "t", "", "Budget template to analyze against (default: budget.default_template)")
	c.Flags().StringVar(&flagAsOf, "as-of", "", "Evaluate as of this date (YYYY-MM-DD) instead of now")
	c.Flags().BoolVar(&flagJSON, "json", false, "Print the report as JSON")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	now, err := parseAsOf(flagAsOf, time.Now())
	if err != nil {
		return err
	}

	st, err := loadSession(cmd.Context())
	if err != nil {
		return err
	}

	name := flagTemplate
	if name == "" {
		name = cfg.Budget.DefaultTemplate
	}
	if name != "" {
		if err := applyNamedTemplate(st, name); err != nil {
			return err
		}
	}

	report, err := st.Analyze(flagYear, now)
	if err != nil {
		return err
	}

	if flagJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println()
	fmt.Print(cli.RenderReport(report, cfg.Labels()))
	if name == "" {
		fmt.Println(cli.Muted("  No budget template selected; every category with spend is unbudgeted."))
	}
	fmt.Println()
	return nil
}

func applyNamedTemplate(st *session.State, name string) error {
	tpl, err := openTemplates()
	if err != nil {
		return err
	}
	m, err := tpl.Load(name)
	if err != nil {
		return err
	}
	return st.ApplyTemplate(name, m)
}

// parseAsOf parses a YYYY-MM-DD date in local time. Empty returns fallback.
func parseAsOf(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD", s)
	}
	return t, nil
}
