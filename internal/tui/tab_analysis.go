package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bpace/internal/cli"
	"github.com/theirongolddev/bpace/internal/model"
	"github.com/theirongolddev/bpace/internal/pipeline"
	"github.com/theirongolddev/bpace/internal/tui/components"
	"github.com/theirongolddev/bpace/internal/tui/theme"
)

// analysisState tracks the Analysis tab.
type analysisState struct {
	scroll int
}

var lanes = []model.Lane{model.LaneOver, model.LaneOnTrack, model.LaneUnder}

func (a App) updateAnalysisKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.analysis.scroll++
	case "k", "up":
		a.analysis.scroll = max(0, a.analysis.scroll-1)
	case "g", "home":
		a.analysis.scroll = 0
	case "ctrl+d":
		a.analysis.scroll += max(a.height/2, 1)
	case "ctrl+u":
		a.analysis.scroll = max(0, a.analysis.scroll-max(a.height/2, 1))
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderAnalysisTab(cw, h int) string {
	if !a.state.HasLedger() {
		return a.noLedgerCard(cw)
	}
	report, err := a.state.Analyze(a.year, a.now())
	if err != nil {
		t := theme.Active
		errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		return components.ContentCard(a.labels.TabAnalysis, errStyle.Render(err.Error()), cw)
	}

	var b strings.Builder
	b.WriteString(a.renderProgressCard(report, cw))
	b.WriteString("\n")
	b.WriteString(a.renderTotals(report, cw))
	b.WriteString("\n")
	b.WriteString(a.renderLanes(report, cw))
	b.WriteString("\n")
	b.WriteString(a.renderYearChart(cw))

	// Scrolling drops lines from the top, stopping once the bottom is visible.
	lines := strings.Split(b.String(), "\n")
	scroll := min(a.analysis.scroll, max(len(lines)-h, 0))
	return strings.Join(lines[scroll:], "\n")
}

func (a App) renderProgressCard(r model.Report, cw int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	innerW := components.CardInnerWidth(cw)
	label := a.labels.YearProgress + " "
	barW := max(innerW-lipgloss.Width(label)-8, 10)

	body := mutedStyle.Render(label) + components.ProgressBar(r.Progress, barW) + "\n" +
		mutedStyle.Render(fmt.Sprintf(a.labels.YearCompleted, a.labels.FormatPercent(r.Progress)))
	if r.CurrentMonth > 0 {
		body += spaceStyle.Render("  ·  ") + mutedStyle.Render(cli.FormatMonth(r.CurrentMonth))
	}
	return components.FocusedCard(fmt.Sprintf(a.labels.AnalysisFor, r.Year), body, cw)
}

func (a App) renderTotals(r model.Report, cw int) string {
	t := theme.Active
	counts := r.CountByStatus()
	over := counts[model.OverBudget] + counts[model.UnbudgetedSpending]

	spentNote := ""
	if r.TotalBudget > 0 {
		spentNote = cli.FormatPct(r.TotalSpent / r.TotalBudget * 100)
	}
	spentColor := t.Green
	if r.TotalSpent > r.TotalExpected*1.1 {
		spentColor = t.Red
	}
	overColor := t.Green
	if over > 0 {
		overColor = t.Red
	}

	metrics := []components.Metric{
		{Label: a.labels.Budget, Value: a.labels.FormatMoney(r.TotalBudget)},
		{Label: a.labels.Expected, Value: a.labels.FormatMoney(r.TotalExpected)},
		{Label: a.labels.Spent, Value: a.labels.FormatMoney(r.TotalSpent), Note: spentNote, Color: spentColor},
		{
			Label: a.labels.LaneOver,
			Value: fmt.Sprintf("%d", over),
			Note:  fmt.Sprintf("%d %s · %d %s", counts[model.OnTrack], a.labels.StatusOnTrack, counts[model.UnderSpending], a.labels.StatusUnder),
			Color: overColor,
		},
	}
	if a.isCompactLayout() {
		return components.MetricCardRow(metrics[:2], cw) + "\n" + components.MetricCardRow(metrics[2:], cw)
	}
	return components.MetricCardRow(metrics, cw)
}

// renderLanes renders the three status columns side by side, or stacked on
// narrow terminals.
func (a App) renderLanes(r model.Report, cw int) string {
	t := theme.Active
	if len(r.Results) == 0 {
		style := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return components.ContentCard(a.labels.CategoryBudgets, style.Render(a.labels.NoActivity), cw)
	}

	if a.isCompactLayout() {
		cards := make([]string, len(lanes))
		for i, lane := range lanes {
			cards[i] = a.renderLane(lane, r.ByLane(lane), cw)
		}
		return strings.Join(cards, "\n")
	}

	widths := components.LayoutRow(cw, len(lanes))
	cards := make([]string, len(lanes))
	for i, lane := range lanes {
		cards[i] = a.renderLane(lane, r.ByLane(lane), widths[i])
	}
	return components.CardRow(cards)
}

func (a App) renderLane(lane model.Lane, results []model.CategoryResult, outerW int) string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.ForLane(lane)).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	innerW := components.CardInnerWidth(outerW)
	labelW := max(innerW/3, 8)
	barW := max(innerW-labelW-6, 4)

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", a.labels.LaneTitle(lane), len(results))))
	if len(results) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("-"))
	}
	for _, c := range results {
		b.WriteString("\n")
		b.WriteString(components.LabeledBudgetBar(c.Category, c, labelW, barW))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(truncStr(fmt.Sprintf("  %s %s / %s · %s",
			a.labels.Spent, a.labels.FormatMoney(c.Spent), a.labels.FormatMoney(c.Budget),
			cli.VarianceCell(c, a.labels)), innerW)))
		if c.Status == model.UnbudgetedSpending {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render("  " + a.labels.StatusUnbudgeted))
		}
		if c.Projection != nil {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render(truncStr(fmt.Sprintf("  %s %s · %s %s",
				a.labels.MonthlyAverage, a.labels.FormatMoney(c.Projection.MonthlyAverage),
				a.labels.Projection, cli.ProjectionCell(c, a.labels)), innerW)))
		}
	}
	return components.ContentCard("", b.String(), outerW)
}

func (a App) renderYearChart(cw int) string {
	t := theme.Active
	summaries := pipeline.SummarizeYears(a.state.Spending())
	if len(summaries) == 0 {
		return ""
	}

	values := make([]float64, len(summaries))
	labels := make([]string, len(summaries))
	for i, s := range summaries {
		values[i] = s.Expenses
		labels[i] = s.Year
	}
	chart := components.ColumnChart(values, labels, t.Blue, components.CardInnerWidth(cw), 6)
	return components.ContentCard(a.labels.SpendingByYear, chart, cw)
}
