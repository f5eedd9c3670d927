package pacing

import (
	"testing"
	"time"

	"github.com/theirongolddev/bpace/internal/model"
)

func TestAnalyze_GatesAndOrders(t *testing.T) {
	now := time.Date(2025, time.July, 2, 12, 0, 0, 0, time.UTC)
	in := Input{
		Year: "2025",
		Spending: model.YearlySpending{
			"Groceries": -5000,
			"Dining":    -100,
			"Travel":    -9000,
			"Gifts":     -40,
		},
		Budgets: map[string]float64{
			"Groceries": 10000,
			"Dining":    -2400, // sign is bookkeeping
			"Travel":    6000,
		},
		Categories: []string{"Dining", "Gifts", "Groceries", "Insurance", "Travel"},
		Now:        now,
	}

	r := Analyze(in)

	if r.CurrentMonth != 7 {
		t.Errorf("CurrentMonth = %d, want 7", r.CurrentMonth)
	}
	if len(r.Results) != 4 {
		t.Fatalf("len(Results) = %d, want 4 (Insurance has no activity)", len(r.Results))
	}

	want := []struct {
		cat    string
		status model.Status
	}{
		{"Gifts", model.UnbudgetedSpending},
		{"Travel", model.OverBudget},
		{"Groceries", model.OnTrack},
		{"Dining", model.UnderSpending},
	}
	for i, w := range want {
		got := r.Results[i]
		if got.Category != w.cat || got.Status != w.status {
			t.Errorf("Results[%d] = %s/%s, want %s/%s", i, got.Category, got.Status, w.cat, w.status)
		}
	}

	for _, res := range r.Results {
		if res.Budget < 0 || res.Spent < 0 {
			t.Errorf("%s has negative magnitude: budget=%v spent=%v", res.Category, res.Budget, res.Spent)
		}
		if res.Projection == nil {
			t.Errorf("%s missing projection in July", res.Category)
		}
	}
}

func TestAnalyze_ProjectionDoesNotChangeStatus(t *testing.T) {
	// Spend matches pace exactly, but a projection can still disagree with budget.
	now := time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)
	progress := YearProgress(now)
	in := Input{
		Year:       "2025",
		Spending:   model.YearlySpending{"Rent": -12000 * progress},
		Budgets:    map[string]float64{"Rent": 12000},
		Categories: []string{"Rent"},
		Now:        now,
	}

	r := Analyze(in)
	if len(r.Results) != 1 {
		t.Fatalf("len(Results) = %d, want 1", len(r.Results))
	}
	res := r.Results[0]
	if res.Status != model.OnTrack {
		t.Fatalf("Status = %s, want on_track", res.Status)
	}
	if res.Projection == nil {
		t.Fatal("Projection missing in February")
	}
}

func TestAnalyze_FirstMonthHasNoProjection(t *testing.T) {
	now := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	r := Analyze(Input{
		Year:       "2025",
		Spending:   model.YearlySpending{"Fuel": -300},
		Budgets:    map[string]float64{"Fuel": 3600},
		Categories: []string{"Fuel"},
		Now:        now,
	})
	if r.Results[0].Projection != nil {
		t.Fatalf("Projection = %+v, want nil in January", r.Results[0].Projection)
	}
}

func TestAnalyze_PastYearIsComplete(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	r := Analyze(Input{
		Year:       "2024",
		Spending:   model.YearlySpending{"Fuel": -3600},
		Budgets:    map[string]float64{"Fuel": 3600},
		Categories: []string{"Fuel"},
		Now:        now,
	})
	if r.Progress != 1 || r.CurrentMonth != 12 {
		t.Fatalf("past year progress = (%v, %d), want (1, 12)", r.Progress, r.CurrentMonth)
	}
	if r.Results[0].Status != model.OnTrack {
		t.Fatalf("Status = %s, want on_track", r.Results[0].Status)
	}
	if r.TotalBudget != 3600 || r.TotalSpent != 3600 {
		t.Fatalf("totals = %v/%v, want 3600/3600", r.TotalBudget, r.TotalSpent)
	}
}

func TestAnalyze_FutureYearNotStarted(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	r := Analyze(Input{
		Year:       "2026",
		Spending:   model.YearlySpending{},
		Budgets:    map[string]float64{"Fuel": 3600},
		Categories: []string{"Fuel"},
		Now:        now,
	})
	if r.Progress != 0 || r.CurrentMonth != 0 {
		t.Fatalf("future year progress = (%v, %d), want (0, 0)", r.Progress, r.CurrentMonth)
	}
	if len(r.Results) != 1 {
		t.Fatalf("len(Results) = %d, want 1", len(r.Results))
	}
	if got := r.Results[0]; got.Expected != 0 || got.Projection != nil {
		t.Errorf("Fuel expected = %v projection = %v, want 0 and none", got.Expected, got.Projection)
	}
}
