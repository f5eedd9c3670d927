package tui

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bpace/internal/budget"
	"github.com/theirongolddev/bpace/internal/pacing"
	"github.com/theirongolddev/bpace/internal/tui/components"
	"github.com/theirongolddev/bpace/internal/tui/theme"
)

// budgetsState tracks the Budget Setup tab.
type budgetsState struct {
	cursor  int
	editing bool
	input   textinput.Model
}

// budgetRow is one editable line: a ledger category or a budgeted key.
type budgetRow struct {
	Category  string
	Budget    float64
	HasBudget bool
	Spent     float64
}

// budgetRows lists ledger categories plus any budgeted category the ledger
// does not contain, sorted by name. Spent is for the selected year.
func (a App) budgetRows() []budgetRow {
	budgets := a.state.Budgets()
	seen := make(map[string]bool)
	var names []string
	for _, c := range a.state.Categories() {
		seen[c] = true
		names = append(names, c)
	}
	for _, c := range budgets.Categories() {
		if !seen[c] {
			names = append(names, c)
		}
	}
	sort.Strings(names)

	year := a.state.Spending()[a.year]
	rows := make([]budgetRow, len(names))
	for i, c := range names {
		amount, ok := budgets[c]
		rows[i] = budgetRow{
			Category:  c,
			Budget:    amount,
			HasBudget: ok,
			Spent:     math.Abs(year[c]),
		}
	}
	return rows
}

func (a App) updateBudgetsKey(key string) (App, tea.Cmd, bool) {
	rows := a.budgetRows()
	switch key {
	case "j", "down":
		a.budgets.cursor = clampIndex(a.budgets.cursor+1, len(rows))
	case "k", "up":
		a.budgets.cursor = clampIndex(a.budgets.cursor-1, len(rows))
	case "g", "home":
		a.budgets.cursor = 0
	case "G", "end":
		a.budgets.cursor = clampIndex(len(rows)-1, len(rows))
	case "enter", "e":
		if len(rows) == 0 {
			return a, nil, true
		}
		row := rows[a.budgets.cursor]
		ti := textinput.New()
		ti.Placeholder = "1200 (empty clears)"
		ti.CharLimit = 20
		ti.Width = 14
		if row.HasBudget {
			ti.SetValue(strconv.FormatFloat(row.Budget, 'f', -1, 64))
		}
		ti.Focus()
		a.budgets.input = ti
		a.budgets.editing = true
		return a, ti.Cursor.BlinkCmd(), true
	case "x", "delete", "backspace":
		if len(rows) == 0 {
			return a, nil, true
		}
		cat := rows[a.budgets.cursor].Category
		a.state.ClearBudget(cat)
		a.setInfo("Cleared budget for %s", cat)
		// The row disappears when the category is not in the ledger.
		a.budgets.cursor = clampIndex(a.budgets.cursor, len(a.budgetRows()))
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateBudgetInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.budgets.editing = false
		rows := a.budgetRows()
		if len(rows) == 0 {
			return a, nil
		}
		cat := rows[a.budgets.cursor].Category
		if err := a.commitBudget(cat, a.budgets.input.Value()); err != nil {
			a.setError(err)
			return a, nil
		}
		a.setInfo("%s: %s", cat, a.labels.FormatMoney(a.state.Budgets()[cat]))
		return a, nil
	case "esc":
		a.budgets.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.budgets.input, cmd = a.budgets.input.Update(msg)
	return a, cmd
}

// commitBudget applies an edited amount. An empty value clears the budget.
func (a *App) commitBudget(category, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		a.state.ClearBudget(category)
		return nil
	}
	_, amount, err := budget.ParseAssignment(category + "=" + raw)
	if err != nil {
		return err
	}
	return a.state.SetBudget(category, amount)
}

func (a App) renderBudgetsTab(cw, h int) string {
	t := theme.Active
	rows := a.budgetRows()
	if len(rows) == 0 && !a.state.HasLedger() {
		return a.noLedgerCard(cw)
	}

	innerW := components.CardInnerWidth(cw)
	moneyW := 14
	catW := max(innerW-2-3*moneyW-3, 12)

	headerStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("  %-*s %*s %*s %*s",
		catW, a.labels.Category, moneyW, a.labels.Budget, moneyW, a.labels.Spent, moneyW, a.labels.Expected)))
	body.WriteString("\n")

	progress := a.yearProgress()
	listH := max(h-8, 3)
	start, end := window(a.budgets.cursor, len(rows), listH)
	for i := start; i < end; i++ {
		r := rows[i]
		budgetTxt, expectedTxt := "-", "-"
		if r.HasBudget {
			budgetTxt = a.labels.FormatMoney(r.Budget)
			expectedTxt = a.labels.FormatMoney(r.Budget * progress)
		}
		name := fmt.Sprintf("%-*s ", catW, truncStr(r.Category, catW))
		cells := fmt.Sprintf("%*s %*s %*s", moneyW, budgetTxt, moneyW, a.labels.FormatMoney(r.Spent), moneyW, expectedTxt)

		if i != a.budgets.cursor {
			style := rowStyle
			if !r.HasBudget {
				style = dimStyle
			}
			body.WriteString(rowStyle.Render("  "+name) + style.Render(cells))
			body.WriteString("\n")
			continue
		}

		line := markerStyle.Render("▸ ") + selStyle.Render(name)
		if a.budgets.editing {
			line += a.budgets.input.View()
		} else {
			line += selStyle.Render(cells)
		}
		if pad := innerW - lipgloss.Width(line); pad > 0 {
			line += lipgloss.NewStyle().Background(t.SurfaceHover).Render(strings.Repeat(" ", pad))
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	if end-start < len(rows) {
		body.WriteString(dimStyle.Render(fmt.Sprintf("  %d-%d / %d", start+1, end, len(rows))))
		body.WriteString("\n")
	}

	budgets := a.state.Budgets()
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(fmt.Sprintf("%s: %s  ·  %d categories budgeted",
		a.labels.Budget, a.labels.FormatMoney(budgets.Total()), len(budgets))))
	body.WriteString("\n")
	body.WriteString(dimStyle.Render("[j/k] navigate  [Enter] edit  [x] clear  [ ] year  [t] templates"))

	title := a.labels.CategoryBudgets
	if a.year != "" {
		title += " · " + a.year
	}
	return components.ContentCard(title, body.String(), cw)
}

// yearProgress is the year-progress fraction of the selected year.
func (a App) yearProgress() float64 {
	year, err := strconv.Atoi(a.year)
	if err != nil {
		return 0
	}
	progress, _ := pacing.ProgressFor(year, a.now())
	return progress
}
