package model

import (
	"fmt"
	"time"
)

// Status is the pacing state of a single budget category.
type Status int

const (
	NoActivity Status = iota
	OnTrack
	UnderSpending
	OverBudget
	UnbudgetedSpending
)

// Lane groups statuses into the three analysis columns.
type Lane int

const (
	LaneOver Lane = iota
	LaneOnTrack
	LaneUnder
)

var statusKeys = map[Status]string{
	NoActivity:         "no_activity",
	OnTrack:            "on_track",
	UnderSpending:      "under_spending",
	OverBudget:         "over_budget",
	UnbudgetedSpending: "unbudgeted",
}

// String returns the stable key used in JSON output and logs.
func (s Status) String() string {
	if k, ok := statusKeys[s]; ok {
		return k
	}
	return "unknown"
}

// MarshalText lets Status serialize as its key.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status key.
func (s *Status) UnmarshalText(b []byte) error {
	for st, k := range statusKeys {
		if k == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// Lane returns the analysis column a status is shown in.
// Unbudgeted spending sits with over-budget categories.
func (s Status) Lane() Lane {
	switch s {
	case OverBudget, UnbudgetedSpending:
		return LaneOver
	case UnderSpending:
		return LaneUnder
	default:
		return LaneOnTrack
	}
}

// Projection holds the month-to-date extrapolation for one category.
type Projection struct {
	MonthlyAverage   float64 `json:"monthly_average"`
	YearlyProjection float64 `json:"yearly_projection"`
}

// ProjectionVerdict compares a projection against the budget. Informational only.
type ProjectionVerdict int

const (
	ProjectionWithinBudget ProjectionVerdict = iota
	ProjectionOverBudget
	ProjectionNoBudget
)

// Verdict reports whether the yearly projection exceeds budget.
func (p Projection) Verdict(budget float64) ProjectionVerdict {
	if budget <= 0 {
		return ProjectionNoBudget
	}
	if p.YearlyProjection > budget {
		return ProjectionOverBudget
	}
	return ProjectionWithinBudget
}

// CategoryResult is the classification of one category for one year.
type CategoryResult struct {
	Category     string      `json:"category"`
	Budget       float64     `json:"budget"`
	Spent        float64     `json:"spent"`
	Expected     float64     `json:"expected"`
	Status       Status      `json:"status"`
	Variance     float64     `json:"variance"`
	HasVariance  bool        `json:"has_variance"`
	SpentPercent float64     `json:"spent_percent"`
	BarPercent   float64     `json:"bar_percent"`
	Projection   *Projection `json:"projection,omitempty"`
}

// Report is a full pacing analysis of one ledger year.
type Report struct {
	Year          string           `json:"year"`
	AsOf          time.Time        `json:"as_of"`
	Progress      float64          `json:"progress"`
	CurrentMonth  int              `json:"current_month"`
	Results       []CategoryResult `json:"results"`
	TotalBudget   float64          `json:"total_budget"`
	TotalSpent    float64          `json:"total_spent"`
	TotalExpected float64          `json:"total_expected"`
}

// ByLane returns the results that belong to the given column.
func (r Report) ByLane(l Lane) []CategoryResult {
	var out []CategoryResult
	for _, c := range r.Results {
		if c.Status.Lane() == l {
			out = append(out, c)
		}
	}
	return out
}

// CountByStatus tallies results per status.
func (r Report) CountByStatus() map[Status]int {
	counts := make(map[Status]int)
	for _, c := range r.Results {
		counts[c.Status]++
	}
	return counts
}
