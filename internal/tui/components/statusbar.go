package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bpace/internal/tui/theme"
)

// StatusLine is the content of the bottom bar.
type StatusLine struct {
	Message string // last action result, shown on the left
	IsError bool
	Info    string // ledger summary, shown on the right
}

// RenderStatusBar renders the bottom status bar. Errors are shown in red in
// place of the key hints.
func RenderStatusBar(width int, s StatusLine) string {
	t := theme.Active

	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	infoStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	left := hintStyle.Render(" [?]help  [q]uit")
	switch {
	case s.IsError && s.Message != "":
		left = errStyle.Render(" ✗ " + s.Message)
	case s.Message != "":
		left = msgStyle.Render(" " + s.Message)
	}
	right := ""
	if s.Info != "" {
		right = infoStyle.Render(s.Info + " ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		// Drop the info before truncating the message.
		right = ""
		padding = width - lipgloss.Width(left)
	}
	if padding < 0 {
		padding = 0
	}
	gap := lipgloss.NewStyle().Background(t.Surface).Width(padding).Render("")

	return lipgloss.NewStyle().MaxWidth(width).Render(left + gap + right)
}
