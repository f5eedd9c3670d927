package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bpace/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  string // shortcut shown after the name when inactive
}

// NewTabs builds the three dashboard tabs from localized names.
func NewTabs(setup, analysis, templates string) []Tab {
	return []Tab{
		{Name: setup, Key: "b"},
		{Name: analysis, Key: "a"},
		{Name: templates, Key: "t"},
	}
}

// TabVisualWidth returns the rendered width of a tab, including padding and
// the shortcut hint shown on inactive tabs.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active {
		w += lipgloss.Width("[" + tab.Key + "]")
	}
	return w
}

// RenderTabBar renders a single-row tab bar padded to width.
func RenderTabBar(tabs []Tab, activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, 1)
	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)
	sepStyle := lipgloss.NewStyle().
		Foreground(t.Border).
		Background(t.Surface)

	var b strings.Builder
	for i, tab := range tabs {
		if i > 0 {
			b.WriteString(sepStyle.Render("│"))
		}
		if i == activeIdx {
			b.WriteString(activeStyle.Render(tab.Name))
			continue
		}
		// The hint sits inside the right padding so widths match TabVisualWidth.
		b.WriteString(inactiveStyle.PaddingRight(0).Render(tab.Name))
		b.WriteString(keyStyle.Render("[" + tab.Key + "]"))
		b.WriteString(lipgloss.NewStyle().Background(t.Surface).Render(" "))
	}

	row := lipgloss.NewStyle().Background(t.Surface).Width(width)
	return row.Render(b.String())
}

// TabIdxByKey returns the tab index for a shortcut key, or -1.
func TabIdxByKey(tabs []Tab, key string) int {
	for i, tab := range tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
