// Package session holds the application state shared by the CLI, TUI and
// HTTP server: the loaded ledger aggregation and the active budget mapping.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/bpace/internal/budget"
	"github.com/theirongolddev/bpace/internal/model"
	"github.com/theirongolddev/bpace/internal/pacing"
	"github.com/theirongolddev/bpace/internal/pipeline"
)

var (
	// ErrNoLedger is returned when an operation needs a loaded ledger.
	ErrNoLedger = errors.New("no ledger loaded")
	// ErrUnknownYear is returned when analyzing a year the ledger lacks.
	ErrUnknownYear = errors.New("year not in ledger")
)

// State is one user's working session. It is not safe for concurrent use;
// callers that share it must lock around it.
type State struct {
	spending   model.SpendingByYear
	categories []string
	years      []string
	source     string

	budgets  budget.Mapping
	template string
}

// New returns an empty session.
func New() *State {
	return &State{budgets: budget.Mapping{}}
}

// ReplaceLedger swaps in a new aggregation wholesale.
func (s *State) ReplaceLedger(res *pipeline.LoadResult, source string) {
	s.spending = res.Spending
	if s.spending == nil {
		s.spending = model.SpendingByYear{}
	}
	s.categories = s.spending.Categories()
	s.years = s.spending.Years()
	s.source = source
}

// HasLedger reports whether a ledger has been loaded.
func (s *State) HasLedger() bool { return s.spending != nil }

// Source describes where the current ledger came from.
func (s *State) Source() string { return s.source }

// Spending returns the current aggregation.
func (s *State) Spending() model.SpendingByYear { return s.spending }

// Categories returns the known categories across all years.
func (s *State) Categories() []string { return append([]string(nil), s.categories...) }

// Years returns the ledger years, oldest first.
func (s *State) Years() []string { return append([]string(nil), s.years...) }

// LatestYear returns the most recent ledger year, or "" when none.
func (s *State) LatestYear() string {
	if len(s.years) == 0 {
		return ""
	}
	return s.years[len(s.years)-1]
}

// HasYear reports whether the ledger contains year.
func (s *State) HasYear(year string) bool {
	_, ok := s.spending[year]
	return ok
}

// known returns the validation set for budget keys, or nil when no ledger
// is loaded and keys cannot be checked.
func (s *State) known() []string {
	if !s.HasLedger() {
		return nil
	}
	return s.categories
}

// Budgets returns the active mapping. The result must not be modified.
func (s *State) Budgets() budget.Mapping { return s.budgets }

// Template returns the name of the template last applied or saved, if any.
func (s *State) Template() string { return s.template }

// SetTemplateName records the active template name without changing budgets.
func (s *State) SetTemplateName(name string) { s.template = name }

// SetBudget assigns one category budget.
func (s *State) SetBudget(category string, amount float64) error {
	return s.budgets.Set(category, amount, s.known())
}

// ClearBudget removes a category's budget.
func (s *State) ClearBudget(category string) {
	delete(s.budgets, category)
}

// ApplyTemplate replaces the active mapping with m. On validation failure
// the active mapping is left unchanged.
func (s *State) ApplyTemplate(name string, m budget.Mapping) error {
	norm, err := m.Normalized()
	if err != nil {
		return fmt.Errorf("template %q: %w", name, err)
	}
	if err := norm.Validate(s.known()); err != nil {
		return fmt.Errorf("template %q: %w", name, err)
	}
	s.budgets = norm
	s.template = name
	return nil
}

// SnapshotBudgets returns an independent copy of the active mapping for saving.
func (s *State) SnapshotBudgets() budget.Mapping { return s.budgets.Clone() }

// Analyze runs the pacing analysis for year against the active budgets.
// An empty year selects the latest. Budget keys the ledger does not know
// are ignored. Past years are paced as complete and future years as not
// started; see pacing.ProgressFor.
func (s *State) Analyze(year string, now time.Time) (model.Report, error) {
	return s.analyze(year, s.budgets, now)
}

// AnalyzeWith runs the analysis against an explicit mapping without touching
// the active budgets. The mapping is validated like ApplyTemplate.
func (s *State) AnalyzeWith(year string, m budget.Mapping, now time.Time) (model.Report, error) {
	if !s.HasLedger() {
		return model.Report{}, ErrNoLedger
	}
	norm, err := m.Normalized()
	if err != nil {
		return model.Report{}, err
	}
	if err := norm.Validate(s.categories); err != nil {
		return model.Report{}, err
	}
	return s.analyze(year, norm, now)
}

func (s *State) analyze(year string, budgets budget.Mapping, now time.Time) (model.Report, error) {
	if !s.HasLedger() {
		return model.Report{}, ErrNoLedger
	}
	if year == "" {
		year = s.LatestYear()
	}
	if !s.HasYear(year) {
		return model.Report{}, fmt.Errorf("%w: %s (have %v)", ErrUnknownYear, year, s.years)
	}
	return pacing.Analyze(pacing.Input{
		Year:       year,
		Spending:   s.spending[year],
		Budgets:    budgets,
		Categories: s.categories,
		Now:        now,
	}), nil
}
