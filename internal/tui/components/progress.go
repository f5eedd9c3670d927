package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bpace/internal/model"
	"github.com/theirongolddev/bpace/internal/tui/theme"
)

// ProgressBar renders a 0-1 fraction as a block bar followed by a percent.
// Used for loader progress and year progress.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	filledStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.1f%%", pct*100))
}

// BudgetBar renders a category's capped spend percent in its status color.
func BudgetBar(r model.CategoryResult, width int) string {
	t := theme.Active
	if width < 4 {
		width = 4
	}
	color := string(t.ForStatus(r.Status))

	bar := progress.New(
		progress.WithSolidFill(color),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	return bar.ViewAs(clamp01(r.BarPercent / 100))
}

// LabeledBudgetBar renders a category label, its bar and the uncapped
// spend percent on one line.
func LabeledBudgetBar(label string, r model.CategoryResult, labelW, barW int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.ForStatus(r.Status)).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	pct := "   -"
	if r.Budget > 0 {
		pct = fmt.Sprintf("%3.0f%%", r.SpentPercent)
	}

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) +
		spaceStyle.Render(" ") +
		BudgetBar(r, barW) +
		spaceStyle.Render(" ") +
		pctStyle.Render(pct)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
