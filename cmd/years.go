package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bpace/internal/cli"
	"github.com/theirongolddev/bpace/internal/pipeline"
)

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List the years in the ledger with total spend",
	RunE:  runYears,
}

func init() {
	rootCmd.AddCommand(yearsCmd)
}

func runYears(cmd *cobra.Command, _ []string) error {
	res, err := loadLedger(cmd.Context())
	if err != nil {
		return err
	}

	summaries := pipeline.SummarizeYears(res.Spending)
	if len(summaries) == 0 {
		fmt.Println("\n  No rows in the ledger.")
		return nil
	}

	l := cfg.Labels()
	expenses := make([]float64, len(summaries))
	rows := make([][]string, 0, len(summaries))
	for i, s := range summaries {
		expenses[i] = s.Expenses
		rows = append(rows, []string{
			s.Year,
			l.FormatMoney(s.Expenses),
			l.FormatMoney(s.Income),
			l.FormatMoney(s.Net),
			cli.FormatNumber(int64(s.Categories)),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(l.SpendingByYear))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Year", "Expenses", "Income", "Net", "Categories"},
		Rows:    rows,
	}))
	if len(expenses) > 1 {
		fmt.Printf("  %s  %s\n", cli.Muted("Expenses"), cli.RenderSparkline(expenses))
	}
	fmt.Println()
	return nil
}
