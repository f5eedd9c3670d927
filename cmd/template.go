package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bpace/internal/budget"
	"github.com/theirongolddev/bpace/internal/cli"
)

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"templates"},
	Short:   "Manage named budget templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplateList,
}

var templateShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a template's budgets",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateShow,
}

var templateSaveCmd = &cobra.Command{
	Use:     "save NAME CATEGORY=AMOUNT...",
	Short:   "Create or replace a template from assignments",
	Example: "  bpace template save lean Groceries=9000 Rent=60000",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runTemplateSave,
}

var templateDeleteCmd = &cobra.Command{
	Use:     "delete NAME",
	Aliases: []string{"rm"},
	Short:   "Delete a template",
	Args:    cobra.ExactArgs(1),
	RunE:    runTemplateDelete,
}

var templateCopyCmd = &cobra.Command{
	Use:   "copy SRC DST",
	Short: "Copy a template, overwriting DST",
	Args:  cobra.ExactArgs(2),
	RunE:  runTemplateCopy,
}

func init() {
	templateCmd.AddCommand(templateListCmd, templateShowCmd, templateSaveCmd, templateDeleteCmd, templateCopyCmd)
	rootCmd.AddCommand(templateCmd)
}

func runTemplateList(_ *cobra.Command, _ []string) error {
	tpl, err := openTemplates()
	if err != nil {
		return err
	}
	names, err := tpl.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Printf("\n  No templates in %s\n\n", tpl.Path())
		return nil
	}

	l := cfg.Labels()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		m, err := tpl.Load(name)
		if err != nil {
			return err
		}
		marker := ""
		if name == cfg.Budget.DefaultTemplate {
			marker = "default"
		}
		rows = append(rows, []string{name, fmt.Sprintf("%d", len(m)), l.FormatMoney(m.Total()), marker})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Template", "Categories", l.Budget, ""},
		Rows:    rows,
	}))
	fmt.Println(cli.Muted("  " + tpl.Path()))
	fmt.Println()
	return nil
}

func runTemplateShow(_ *cobra.Command, args []string) error {
	tpl, err := openTemplates()
	if err != nil {
		return err
	}
	m, err := tpl.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(renderMapping(args[0], m))
	fmt.Println()
	return nil
}

func runTemplateSave(cmd *cobra.Command, args []string) error {
	name := args[0]
	known, err := knownCategories(cmd)
	if err != nil {
		return err
	}

	m := budget.Mapping{}
	for _, arg := range args[1:] {
		cat, amount, err := budget.ParseAssignment(arg)
		if err != nil {
			return err
		}
		if err := m.Set(cat, amount, known); err != nil {
			return err
		}
	}

	tpl, err := openTemplates()
	if err != nil {
		return err
	}
	if err := tpl.Save(name, m); err != nil {
		return err
	}
	fmt.Printf("  Saved %s (%d categories)\n", name, len(m))
	return nil
}

func runTemplateDelete(_ *cobra.Command, args []string) error {
	tpl, err := openTemplates()
	if err != nil {
		return err
	}
	if err := tpl.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s\n", args[0])
	return nil
}

func runTemplateCopy(_ *cobra.Command, args []string) error {
	tpl, err := openTemplates()
	if err != nil {
		return err
	}
	if err := tpl.Copy(args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("  Copied %s to %s\n", args[0], args[1])
	return nil
}
