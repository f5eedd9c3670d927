package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bpace/internal/cli"
	"github.com/theirongolddev/bpace/internal/pipeline"
)

var flagCategoryFilter string

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories with spend for a year",
	RunE:  runCategories,
}

func init() {
	categoriesCmd.Flags().StringVarP(&flagCategoryFilter, "filter", "f", "", "Only categories containing this text")
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	res, err := loadLedger(cmd.Context())
	if err != nil {
		return err
	}

	year := flagYear
	if year == "" {
		year = pipeline.LatestYear(res.Spending)
	}
	if _, ok := res.Spending[year]; !ok {
		return fmt.Errorf("year %s not in ledger (have %v)", year, res.Spending.Years())
	}

	totals := pipeline.CategoryTotals(res.Spending, year)
	if flagCategoryFilter != "" {
		totals = pipeline.FilterCategories(totals, flagCategoryFilter)
	}

	l := cfg.Labels()
	rows := make([][]string, 0, len(totals)+2)
	var sum float64
	for _, t := range totals {
		sum += t.Amount
		rows = append(rows, []string{t.Category, l.FormatMoney(t.Amount)})
	}
	rows = append(rows, []string{"---"}, []string{"Total", l.FormatMoney(sum)})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("%s · %s (%d)", l.Category, year, len(totals)),
		Headers: []string{l.Category, "Net"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}
