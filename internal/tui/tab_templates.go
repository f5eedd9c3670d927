package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bpace/internal/budget"
	"github.com/theirongolddev/bpace/internal/tui/components"
	"github.com/theirongolddev/bpace/internal/tui/theme"
)

var errNoStore = errors.New("template store unavailable")

// templatesState tracks the Templates tab.
type templatesState struct {
	names      []string
	cursor     int
	preview    budget.Mapping
	previewErr error

	naming        bool
	input         textinput.Model
	confirmDelete bool
}

// refreshTemplates re-reads the template names and the selected preview.
func (a *App) refreshTemplates() {
	if a.store == nil {
		a.tmpl.names = nil
		return
	}
	names, err := a.store.List()
	if err != nil {
		a.setError(err)
		names = nil
	}
	a.tmpl.names = names
	a.tmpl.cursor = clampIndex(a.tmpl.cursor, len(names))
	a.loadPreview()
}

func (a *App) loadPreview() {
	a.tmpl.preview, a.tmpl.previewErr = nil, nil
	if a.store == nil || len(a.tmpl.names) == 0 {
		return
	}
	a.tmpl.preview, a.tmpl.previewErr = a.store.Load(a.tmpl.names[a.tmpl.cursor])
}

func (a App) selectedTemplate() string {
	if len(a.tmpl.names) == 0 {
		return ""
	}
	return a.tmpl.names[a.tmpl.cursor]
}

// applyTemplate loads name from the store and makes it the active mapping.
// On failure the active budgets are unchanged.
func (a *App) applyTemplate(name string) {
	if a.store == nil {
		a.setError(errNoStore)
		return
	}
	m, err := a.store.Load(name)
	if err != nil {
		a.setError(fmt.Errorf("loading template %q: %w", name, err))
		return
	}
	if err := a.state.ApplyTemplate(name, m); err != nil {
		a.setError(err)
		return
	}
	a.setInfo("Loaded template %s (%d categories)", name, len(m))
}

// saveTemplate stores the active budgets under name.
func (a *App) saveTemplate(name string) {
	if a.store == nil {
		a.setError(errNoStore)
		return
	}
	name = strings.TrimSpace(name)
	if err := a.store.Save(name, a.state.SnapshotBudgets()); err != nil {
		a.setError(fmt.Errorf("saving template: %w", err))
		return
	}
	a.state.SetTemplateName(name)
	a.refreshTemplates()
	for i, n := range a.tmpl.names {
		if n == name {
			a.tmpl.cursor = i
		}
	}
	a.loadPreview()
	a.setInfo("Saved template %s", name)
}

func (a *App) deleteTemplate(name string) {
	if a.store == nil {
		a.setError(errNoStore)
		return
	}
	if err := a.store.Delete(name); err != nil {
		a.setError(fmt.Errorf("deleting template %q: %w", name, err))
		return
	}
	if a.state.Template() == name {
		a.state.SetTemplateName("")
	}
	a.refreshTemplates()
	a.setInfo("Deleted template %s", name)
}

func (a App) updateTemplatesKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.tmpl.cursor = clampIndex(a.tmpl.cursor+1, len(a.tmpl.names))
		a.loadPreview()
	case "k", "up":
		a.tmpl.cursor = clampIndex(a.tmpl.cursor-1, len(a.tmpl.names))
		a.loadPreview()
	case "enter":
		if name := a.selectedTemplate(); name != "" {
			a.applyTemplate(name)
		}
	case "s", "n":
		ti := textinput.New()
		ti.Placeholder = a.labels.TemplateName
		ti.CharLimit = 64
		ti.Width = 30
		ti.SetValue(a.state.Template())
		ti.Focus()
		a.tmpl.input = ti
		a.tmpl.naming = true
		return a, ti.Cursor.BlinkCmd(), true
	case "d":
		if a.selectedTemplate() != "" {
			a.tmpl.confirmDelete = true
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateTemplateNameInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.tmpl.naming = false
		a.saveTemplate(a.tmpl.input.Value())
		return a, nil
	case "esc":
		a.tmpl.naming = false
		return a, nil
	}

	var cmd tea.Cmd
	a.tmpl.input, cmd = a.tmpl.input.Update(msg)
	return a, cmd
}

func (a App) updateTemplateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	a.tmpl.confirmDelete = false
	if key == "y" || key == "Y" {
		a.deleteTemplate(a.selectedTemplate())
	}
	return a, nil
}

func (a App) renderTemplatesTab(cw int) string {
	t := theme.Active
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover)
	activeStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)

	widths := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		widths = []int{cw, cw}
	}
	listInner := components.CardInnerWidth(widths[0])

	var list strings.Builder
	if len(a.tmpl.names) == 0 {
		list.WriteString(mutedStyle.Render(a.labels.NoTemplates))
		list.WriteString("\n")
	}
	for i, name := range a.tmpl.names {
		active := "  "
		if name == a.state.Template() {
			active = "● "
		}
		if i == a.tmpl.cursor {
			line := markerStyle.Render("▸ ") + selStyle.Render(active+truncStr(name, listInner-4))
			if pad := listInner - lipgloss.Width(line); pad > 0 {
				line += lipgloss.NewStyle().Background(t.SurfaceHover).Render(strings.Repeat(" ", pad))
			}
			list.WriteString(line)
		} else {
			list.WriteString(rowStyle.Render("  ") + activeStyle.Render(active) + rowStyle.Render(truncStr(name, listInner-4)))
		}
		list.WriteString("\n")
	}

	list.WriteString("\n")
	switch {
	case a.tmpl.naming:
		list.WriteString(mutedStyle.Render(a.labels.TemplateName+": ") + a.tmpl.input.View())
	case a.tmpl.confirmDelete:
		list.WriteString(warnStyle.Render(fmt.Sprintf("Delete %q? [y/N]", a.selectedTemplate())))
	default:
		list.WriteString(dimStyle.Render("[Enter] load  [s] save current  [d] delete"))
	}

	listCard := components.ContentCard(a.labels.TabTemplates, list.String(), widths[0])
	previewCard := a.renderTemplatePreview(widths[1])

	if a.isCompactLayout() {
		return listCard + "\n" + previewCard
	}
	return components.CardRow([]string{listCard, previewCard})
}

func (a App) renderTemplatePreview(outerW int) string {
	t := theme.Active
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	name := a.selectedTemplate()
	if name == "" {
		return components.ContentCard(a.labels.CategoryBudgets, mutedStyle.Render("-"), outerW)
	}
	if a.tmpl.previewErr != nil {
		return components.ContentCard(name, errStyle.Render(a.tmpl.previewErr.Error()), outerW)
	}

	innerW := components.CardInnerWidth(outerW)
	moneyW := 12
	catW := max(innerW-moneyW-1, 8)
	known := make(map[string]bool)
	for _, c := range a.state.Categories() {
		known[c] = true
	}

	var b strings.Builder
	for _, cat := range a.tmpl.preview.Categories() {
		style := rowStyle
		if a.state.HasLedger() && !known[cat] {
			// Would be rejected on load against this ledger.
			style = errStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%-*s %*s", catW, truncStr(cat, catW), moneyW, a.labels.FormatMoney(a.tmpl.preview[cat]))))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s %*s", catW, a.labels.Budget, moneyW, a.labels.FormatMoney(a.tmpl.preview.Total()))))

	return components.ContentCard(name, b.String(), outerW)
}
