package cli

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/bpace/internal/locale"
	"github.com/theirongolddev/bpace/internal/model"
)

const barWidth = 10

// RenderReport renders a full pacing analysis: year progress followed by
// one table per lane.
func RenderReport(r model.Report, l locale.Labels) string {
	var b strings.Builder

	b.WriteString(RenderTitle(fmt.Sprintf(l.AnalysisFor, r.Year)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  %s  %s\n", headerStyle.Render(l.YearProgress), RenderProgressBar(r.Progress, 30))
	fmt.Fprintf(&b, "  %s\n\n", mutedStyle.Render(fmt.Sprintf(l.YearCompleted, FormatPercent(r.Progress))))

	if len(r.Results) == 0 {
		b.WriteString("  " + mutedStyle.Render(l.NoActivity) + "\n")
		return b.String()
	}

	for _, lane := range []model.Lane{model.LaneOver, model.LaneOnTrack, model.LaneUnder} {
		results := r.ByLane(lane)
		if len(results) == 0 {
			continue
		}
		b.WriteString(RenderTable(laneTable(lane, results, l)))
		b.WriteString("\n")
	}

	b.WriteString(RenderTable(Table{
		Headers: []string{"", l.Budget, l.Spent, l.Expected},
		Rows: [][]string{{
			"Total",
			l.FormatMoney(r.TotalBudget),
			l.FormatMoney(r.TotalSpent),
			l.FormatMoney(r.TotalExpected),
		}},
	}))
	return b.String()
}

func laneTable(lane model.Lane, results []model.CategoryResult, l locale.Labels) Table {
	t := Table{
		Title:   fmt.Sprintf("%s %s (%d)", StatusIcon(results[0].Status), l.LaneTitle(lane), len(results)),
		Headers: []string{l.Category, l.Budget, l.Spent, l.Expected, l.OverBy + " / " + l.UnderBy, "%", "", l.Projection},
	}
	for _, c := range results {
		t.Rows = append(t.Rows, []string{
			c.Category,
			l.FormatMoney(c.Budget),
			l.FormatMoney(c.Spent),
			l.FormatMoney(c.Expected),
			VarianceCell(c, l),
			FormatPct(c.SpentPercent),
			RenderBudgetBar(c, barWidth),
			ProjectionCell(c, l),
		})
	}
	return t
}

// VarianceCell renders "Over by ₪300" or "-" when the category has no budget.
func VarianceCell(c model.CategoryResult, l locale.Labels) string {
	if !c.HasVariance {
		return "-"
	}
	label, amount := l.VarianceLabel(c.Variance)
	return label + " " + l.FormatMoney(amount)
}

// ProjectionCell renders "₪2,400 (Within budget)" or "-" when not available.
func ProjectionCell(c model.CategoryResult, l locale.Labels) string {
	if c.Projection == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)",
		l.FormatMoney(c.Projection.YearlyProjection),
		l.VerdictName(c.Projection.Verdict(c.Budget)))
}
