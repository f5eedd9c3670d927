// Package tui provides the interactive Bubble Tea dashboard for bpace.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/theirongolddev/bpace/internal/cli"
	"github.com/theirongolddev/bpace/internal/config"
	"github.com/theirongolddev/bpace/internal/ledger"
	"github.com/theirongolddev/bpace/internal/locale"
	"github.com/theirongolddev/bpace/internal/pipeline"
	"github.com/theirongolddev/bpace/internal/session"
	"github.com/theirongolddev/bpace/internal/store"
	"github.com/theirongolddev/bpace/internal/templates"
	"github.com/theirongolddev/bpace/internal/tui/components"
	"github.com/theirongolddev/bpace/internal/tui/theme"
)

// LedgerLoadedMsg is sent when a ledger load finishes, successfully or not.
type LedgerLoadedMsg struct {
	Result    *pipeline.LoadResult
	Source    string
	CacheHits int
	LoadTime  time.Duration
	Err       error
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// Options configures a new App.
type Options struct {
	Config     config.Config
	Templates  *templates.Store
	Logger     *log.Logger
	LedgerPath string
	Year       string
	Template   string // applied after the first successful load
	UseCache   bool
	NeedSetup  bool
	Now        func() time.Time
}

const (
	tabBudgets = iota
	tabAnalysis
	tabTemplates
)

// App is the root Bubble Tea model.
type App struct {
	state  *session.State
	store  *templates.Store
	cfg    config.Config
	labels locale.Labels
	logger *log.Logger
	now    func() time.Time
	tabs   []components.Tab

	ledgerPath      string
	useCache        bool
	year            string
	pendingTemplate string

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	status    components.StatusLine

	// Per-tab state
	budgets  budgetsState
	analysis analysisState
	tmpl     templatesState

	// Ledger path prompt
	enteringPath bool
	pathInput    textinput.Model

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues

	// Loading: channel-based progress subscription
	loading     bool
	loadTime    time.Duration
	cacheHits   int
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// NewApp creates a new TUI app model over a fresh session.
func NewApp(opts Options) App {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	pendingTemplate := opts.Template
	if pendingTemplate == "" {
		pendingTemplate = opts.Config.Budget.DefaultTemplate
	}

	a := App{
		state:           session.New(),
		store:           opts.Templates,
		cfg:             opts.Config,
		logger:          logger,
		now:             now,
		ledgerPath:      opts.LedgerPath,
		useCache:        opts.UseCache,
		year:            opts.Year,
		pendingTemplate: pendingTemplate,
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
	}
	a.applyConfig(opts.Config)
	a.refreshTemplates()

	if opts.NeedSetup {
		a.setupForm = newSetupForm(opts.Config, &a.setupVals)
	} else {
		a.loading = a.ledgerPath != ""
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion}
	switch {
	case a.setupForm != nil:
		cmds = append(cmds, a.setupForm.Init())
	case a.loading:
		cmds = append(cmds, a.spinner.Tick, a.loadCmd())
	}
	return tea.Batch(cmds...)
}

func (a *App) applyConfig(cfg config.Config) {
	a.cfg = cfg
	a.labels = cfg.Labels()
	a.tabs = components.NewTabs(a.labels.TabSetup, a.labels.TabAnalysis, a.labels.TabTemplates)
	theme.SetActive(cfg.Appearance.Theme)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.setupForm != nil || a.showHelp || a.inputActive() {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case LedgerLoadedMsg:
		return a.ledgerLoaded(msg), nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// First-run setup wizard intercepts all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	switch {
	case a.enteringPath:
		return a.updatePathInput(msg)
	case a.budgets.editing:
		return a.updateBudgetInput(msg)
	case a.tmpl.naming:
		return a.updateTemplateNameInput(msg)
	case a.tmpl.confirmDelete:
		return a.updateTemplateDeleteConfirm(key)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if key == "q" {
		return a, tea.Quit
	}
	if a.loading && !a.state.HasLedger() {
		return a, nil
	}

	// Per-tab bindings take precedence over globals.
	var (
		cmd     tea.Cmd
		handled bool
	)
	switch a.activeTab {
	case tabBudgets:
		a, cmd, handled = a.updateBudgetsKey(key)
	case tabAnalysis:
		a, cmd, handled = a.updateAnalysisKey(key)
	case tabTemplates:
		a, cmd, handled = a.updateTemplatesKey(key)
	}
	if handled {
		return a, cmd
	}

	switch key {
	case "left", "shift+tab":
		a.switchTab((a.activeTab - 1 + len(a.tabs)) % len(a.tabs))
	case "right", "tab":
		a.switchTab((a.activeTab + 1) % len(a.tabs))
	case "[":
		a.stepYear(-1)
	case "]":
		a.stepYear(1)
	case "r":
		if a.ledgerPath != "" && !a.loading {
			return a.startLoad()
		}
	case "l":
		if !a.loading {
			return a.startPathInput()
		}
	default:
		if idx := components.TabIdxByKey(a.tabs, key); idx >= 0 {
			a.switchTab(idx)
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	delta := 0
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		delta = -1
	case tea.MouseButtonWheelDown:
		delta = 1
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.switchTab(tab)
			}
		}
		return a, nil
	default:
		return a, nil
	}

	switch a.activeTab {
	case tabBudgets:
		a.budgets.cursor = clampIndex(a.budgets.cursor+delta, len(a.budgetRows()))
	case tabAnalysis:
		a.analysis.scroll = max(0, a.analysis.scroll+delta)
	case tabTemplates:
		a.tmpl.cursor = clampIndex(a.tmpl.cursor+delta, len(a.tmpl.names))
		a.loadPreview()
	}
	return a, nil
}

func (a *App) switchTab(idx int) {
	a.activeTab = idx
	if idx == tabTemplates {
		a.refreshTemplates()
	}
}

// stepYear moves the selected year by delta within the ledger's years.
func (a *App) stepYear(delta int) {
	years := a.state.Years()
	if len(years) == 0 {
		return
	}
	idx := len(years) - 1
	for i, y := range years {
		if y == a.year {
			idx = i
			break
		}
	}
	a.year = years[clampIndex(idx+delta, len(years))]
	a.analysis.scroll = 0
}

func (a App) inputActive() bool {
	return a.enteringPath || a.budgets.editing || a.tmpl.naming
}

func (a *App) setInfo(format string, args ...any) {
	a.status = components.StatusLine{Message: fmt.Sprintf(format, args...)}
}

func (a *App) setError(err error) {
	a.status = components.StatusLine{Message: err.Error(), IsError: true}
}

// ─── Ledger loading ─────────────────────────────────────────────

func (a App) startLoad() (tea.Model, tea.Cmd) {
	a.loading = true
	a.progress, a.progressMax = 0, 0
	a.setInfo("Loading %s…", a.ledgerPath)
	return a, tea.Batch(a.spinner.Tick, a.loadCmd())
}

func (a App) loadCmd() tea.Cmd {
	req := loadRequest{
		path:     a.ledgerPath,
		opts:     a.cfg.LedgerOptions(),
		useCache: a.useCache,
		logger:   a.logger,
	}
	return loadLedgerCmd(req, a.loadSub)
}

// ledgerLoaded swaps the new aggregation into the session. A failed load
// leaves the previous ledger in place.
func (a App) ledgerLoaded(msg LedgerLoadedMsg) App {
	a.loading = false
	if msg.Err != nil {
		a.logger.Error("ledger load failed", "path", msg.Source, "err", msg.Err)
		a.setError(msg.Err)
		return a
	}

	a.state.ReplaceLedger(msg.Result, msg.Source)
	a.loadTime = msg.LoadTime
	a.cacheHits = msg.CacheHits
	if !a.state.HasYear(a.year) {
		a.year = a.state.LatestYear()
	}
	a.budgets.cursor = clampIndex(a.budgets.cursor, len(a.budgetRows()))
	a.setInfo("Loaded %s rows from %d file(s) in %.1fs",
		cli.FormatNumber(int64(msg.Result.RowsKept)), msg.Result.TotalFiles, msg.LoadTime.Seconds())

	if name := a.pendingTemplate; name != "" {
		a.pendingTemplate = ""
		a.applyTemplate(name)
	}
	return a
}

type loadRequest struct {
	path     string
	opts     ledger.Options
	useCache bool
	logger   *log.Logger
}

// loadLedgerCmd starts the loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final LedgerLoadedMsg through sub.
func loadLedgerCmd(req loadRequest, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			ctx := context.Background()

			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			if req.useCache {
				cache, err := store.Open(pipeline.CachePath())
				if err == nil {
					cr, loadErr := pipeline.LoadWithCache(ctx, req.path, req.opts, cache, req.logger, progressFn)
					_ = cache.Close()
					if loadErr == nil {
						sub <- LedgerLoadedMsg{
							Result:    &cr.LoadResult,
							Source:    req.path,
							CacheHits: cr.CacheHits,
							LoadTime:  time.Since(start),
						}
						return
					}
					sub <- LedgerLoadedMsg{Source: req.path, Err: loadErr, LoadTime: time.Since(start)}
					return
				}
				req.logger.Warn("cache unavailable", "err", err)
			}

			res, err := pipeline.Load(ctx, req.path, req.opts, req.logger, progressFn)
			sub <- LedgerLoadedMsg{Result: res, Source: req.path, Err: err, LoadTime: time.Since(start)}
		}()

		// Block until the first message (either ProgressMsg or LedgerLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// ─── Ledger path prompt ─────────────────────────────────────────

func (a App) startPathInput() (tea.Model, tea.Cmd) {
	ti := textinput.New()
	ti.Placeholder = "~/exports/ledger.csv"
	ti.CharLimit = 512
	ti.Width = 60
	ti.SetValue(a.ledgerPath)
	ti.Focus()
	a.pathInput = ti
	a.enteringPath = true
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updatePathInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if a.loading {
			return a, nil
		}
		a.enteringPath = false
		path := expandHome(strings.TrimSpace(a.pathInput.Value()))
		if path == "" {
			return a, nil
		}
		a.ledgerPath = path
		return a.startLoad()
	case "esc":
		a.enteringPath = false
		return a, nil
	}

	var cmd tea.Cmd
	a.pathInput, cmd = a.pathInput.Update(msg)
	return a, cmd
}

// ─── Views ──────────────────────────────────────────────────────

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.loading && !a.state.HasLedger() {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  bpace needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ bpace"))
	b.WriteString(subtitleStyle.Render(" · " + a.labels.Title))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := min(max(a.width-30, 20), 40)
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing ledger files\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Reading " + a.ledgerPath))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

type binding struct{ key, desc string }

var helpSections = []struct {
	title    string
	bindings []binding
}{
	{"Navigation", []binding{
		{"b a t", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"[ ]", "Previous / Next year"},
		{"j k", "Navigate lists / scroll"},
	}},
	{"Budgets", []binding{
		{"Enter", "Edit category budget"},
		{"x", "Clear category budget"},
	}},
	{"Templates", []binding{
		{"Enter", "Load template"},
		{"s", "Save budgets as template"},
		{"d", "Delete template"},
	}},
	{"Ledger", []binding{
		{"l", "Open ledger file or directory"},
		{"r", "Reload ledger"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}},
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Blue).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range helpSections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + context row (template, year, source)
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	ctx := pillStyle.Render(" ")
	if a.year != "" {
		ctx += accentStyle.Render(a.year)
	} else {
		ctx += pillStyle.Render("-")
	}
	if name := a.state.Template(); name != "" {
		ctx += pillStyle.Render(" │ ") + accentStyle.Render(name)
	}
	if src := a.state.Source(); src != "" {
		ctx += pillStyle.Render(" │ " + src)
	}
	if a.enteringPath {
		ctx = pillStyle.Render(" Ledger path: ") + a.pathInput.View()
	}
	header := components.RenderTabBar(a.tabs, a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(ctx)

	// 2. Status bar
	statusBar := components.RenderStatusBar(w, components.StatusLine{
		Message: a.status.Message,
		IsError: a.status.IsError,
		Info:    a.statusInfo(),
	})

	// 3. Content zone height
	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabBudgets:
		content = a.renderBudgetsTab(cw, contentH)
	case tabAnalysis:
		content = a.renderAnalysisTab(cw, contentH)
	case tabTemplates:
		content = a.renderTemplatesTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines, full-width background
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusInfo() string {
	if a.loading {
		return a.spinner.View() + " loading"
	}
	if !a.state.HasLedger() {
		return ""
	}
	info := fmt.Sprintf("%d categories · %.1fs", len(a.state.Categories()), a.loadTime.Seconds())
	if a.cacheHits > 0 {
		info += fmt.Sprintf(" · %d cached", a.cacheHits)
	}
	return info
}

// noLedgerCard is shown by tabs that need ledger data.
func (a App) noLedgerCard(cw int) string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	return components.ContentCard(a.labels.Title, style.Render(a.labels.NoLedger), cw)
}

// ─── Helpers ────────────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range a.tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// window returns the [start, end) slice bounds that keep cursor visible in
// a list of n rows shown height at a time.
func window(cursor, n, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := cursor - height/2
	start = max(0, min(start, n-height))
	return start, start + height
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
