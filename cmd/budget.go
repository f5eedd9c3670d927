package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bpace/internal/budget"
	"github.com/theirongolddev/bpace/internal/cli"
	"github.com/theirongolddev/bpace/internal/templates"
)

var (
	flagBudgetTemplate string
	flagBudgetMerge    bool
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show or edit the budgets of a template",
	Long: `Edit a template's category budgets. Each edit loads the template,
applies the change and saves it back. When a ledger is configured, categories
it does not contain are rejected.`,
}

var budgetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the template's budgets",
	Args:  cobra.NoArgs,
	RunE:  runBudgetShow,
}

var budgetSetCmd = &cobra.Command{
	Use:     "set CATEGORY=AMOUNT...",
	Short:   "Set one or more category budgets",
	Example: "  bpace budget set --template 2024 Groceries=12000 'Eating out=3,600'",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runBudgetSet,
}

var budgetUnsetCmd = &cobra.Command{
	Use:   "unset CATEGORY...",
	Short: "Remove category budgets",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBudgetUnset,
}

var budgetImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import budgets from a JSON, TOML or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetImport,
}

func init() {
	budgetCmd.PersistentFlags().StringVarP(&flagBudgetTemplate, "template", "t", "", "Template to edit (default: budget.default_template)")
	budgetImportCmd.Flags().BoolVar(&flagBudgetMerge, "merge", false, "Merge into the existing budgets instead of replacing them")

	budgetCmd.AddCommand(budgetShowCmd, budgetSetCmd, budgetUnsetCmd, budgetImportCmd)
	rootCmd.AddCommand(budgetCmd)
}

func budgetTemplateName() (string, error) {
	if flagBudgetTemplate != "" {
		return flagBudgetTemplate, nil
	}
	if cfg.Budget.DefaultTemplate != "" {
		return cfg.Budget.DefaultTemplate, nil
	}
	return "", errors.New("no template: pass --template or set budget.default_template")
}

// loadOrEmpty returns the named template, or an empty mapping if it does not
// exist yet.
func loadOrEmpty(tpl *templates.Store, name string) (budget.Mapping, error) {
	m, err := tpl.Load(name)
	if errors.Is(err, templates.ErrNotFound) {
		return budget.Mapping{}, nil
	}
	return m, err
}

// knownCategories returns the ledger's categories, or nil when no ledger is
// configured so any category is accepted.
func knownCategories(cmd *cobra.Command) ([]string, error) {
	if cfg.Ledger.Path == "" {
		return nil, nil
	}
	res, err := loadLedger(cmd.Context())
	if err != nil {
		return nil, err
	}
	return res.Spending.Categories(), nil
}

func runBudgetShow(_ *cobra.Command, _ []string) error {
	name, err := budgetTemplateName()
	if err != nil {
		return err
	}
	tpl, err := openTemplates()
	if err != nil {
		return err
	}
	m, err := tpl.Load(name)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(renderMapping(name, m))
	fmt.Println()
	return nil
}

func runBudgetSet(cmd *cobra.Command, args []string) error {
	name, err := budgetTemplateName()
	if err != nil {
		return err
	}
	known, err := knownCategories(cmd)
	if err != nil {
		return err
	}
	tpl, err := openTemplates()
	if err != nil {
		return err
	}
	m, err := loadOrEmpty(tpl, name)
	if err != nil {
		return err
	}

	for _, arg := range args {
		cat, amount, err := budget.ParseAssignment(arg)
		if err != nil {
			return err
		}
		if err := m.Set(cat, amount, known); err != nil {
			return err
		}
	}

	if err := tpl.Save(name, m); err != nil {
		return err
	}
	fmt.Printf("  Updated %d budget(s) in %s\n", len(args), name)
	return nil
}

func runBudgetUnset(_ *cobra.Command, args []string) error {
	name, err := budgetTemplateName()
	if err != nil {
		return err
	}
	tpl, err := openTemplates()
	if err != nil {
		return err
	}
	m, err := tpl.Load(name)
	if err != nil {
		return err
	}

	removed := 0
	for _, cat := range args {
		if _, ok := m[cat]; !ok {
			fmt.Fprintln(os.Stderr, cli.Warn(fmt.Sprintf("  %s has no budget in %s", cat, name)))
			continue
		}
		delete(m, cat)
		removed++
	}

	if err := tpl.Save(name, m); err != nil {
		return err
	}
	fmt.Printf("  Removed %d budget(s) from %s\n", removed, name)
	return nil
}

func runBudgetImport(cmd *cobra.Command, args []string) error {
	name, err := budgetTemplateName()
	if err != nil {
		return err
	}
	imported, err := budget.ReadFile(expandPath(args[0]))
	if err != nil {
		return err
	}
	known, err := knownCategories(cmd)
	if err != nil {
		return err
	}
	if err := imported.Validate(known); err != nil {
		return err
	}
	imported, err = imported.Normalized()
	if err != nil {
		return err
	}

	tpl, err := openTemplates()
	if err != nil {
		return err
	}
	m := imported
	if flagBudgetMerge {
		if m, err = loadOrEmpty(tpl, name); err != nil {
			return err
		}
		for cat, amount := range imported {
			m[cat] = amount
		}
	}

	if err := tpl.Save(name, m); err != nil {
		return err
	}
	fmt.Printf("  Imported %d budget(s) into %s\n", len(imported), name)
	return nil
}

func renderMapping(name string, m budget.Mapping) string {
	l := cfg.Labels()
	rows := make([][]string, 0, len(m)+2)
	for _, cat := range m.Categories() {
		rows = append(rows, []string{cat, l.FormatMoney(m[cat])})
	}
	rows = append(rows, []string{"---"}, []string{"Total", l.FormatMoney(m.Total())})

	return cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("%s (%d)", name, len(m)),
		Headers: []string{l.Category, l.Budget},
		Rows:    rows,
	})
}
