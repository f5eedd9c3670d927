package session

import (
	"errors"
	"testing"
	"time"

	"github.com/theirongolddev/bpace/internal/budget"
	"github.com/theirongolddev/bpace/internal/model"
	"github.com/theirongolddev/bpace/internal/pipeline"
)

func loaded(t *testing.T) *State {
	t.Helper()
	s := New()
	s.ReplaceLedger(&pipeline.LoadResult{Spending: model.SpendingByYear{
		"2024": {"Fuel": -1000},
		"2025": {"Fuel": -500, "Food": -2000},
	}}, "test.csv")
	return s
}

func TestNew_Empty(t *testing.T) {
	s := New()
	if s.HasLedger() {
		t.Error("new session has ledger")
	}
	if _, err := s.Analyze("", time.Now()); !errors.Is(err, ErrNoLedger) {
		t.Errorf("Analyze on empty session err = %v, want ErrNoLedger", err)
	}
	// Without a ledger keys cannot be validated, so any category is accepted.
	if err := s.SetBudget("Anything", 10); err != nil {
		t.Errorf("SetBudget without ledger: %v", err)
	}
}

func TestReplaceLedger_Wholesale(t *testing.T) {
	s := loaded(t)
	if got := s.LatestYear(); got != "2025" {
		t.Errorf("LatestYear = %q, want 2025", got)
	}

	s.ReplaceLedger(&pipeline.LoadResult{Spending: model.SpendingByYear{
		"2023": {"Rent": -100},
	}}, "other.csv")

	if s.HasYear("2025") {
		t.Error("old year survived ReplaceLedger")
	}
	cats := s.Categories()
	if len(cats) != 1 || cats[0] != "Rent" {
		t.Errorf("Categories = %v, want [Rent]", cats)
	}
	if s.Source() != "other.csv" {
		t.Errorf("Source = %q, want other.csv", s.Source())
	}
}

func TestApplyTemplate_FailureLeavesBudgets(t *testing.T) {
	s := loaded(t)
	if err := s.SetBudget("Fuel", 1200); err != nil {
		t.Fatal(err)
	}

	err := s.ApplyTemplate("bad", budget.Mapping{"Fuel": 1, "Unknown": 5})
	var unk *budget.UnknownCategoryError
	if !errors.As(err, &unk) {
		t.Fatalf("ApplyTemplate err = %v, want *UnknownCategoryError", err)
	}
	if s.Budgets()["Fuel"] != 1200 || len(s.Budgets()) != 1 {
		t.Errorf("budgets changed after failed apply: %v", s.Budgets())
	}
	if s.Template() != "" {
		t.Errorf("Template = %q, want empty", s.Template())
	}
}

func TestApplyTemplate_ReplacesWholesale(t *testing.T) {
	s := loaded(t)
	if err := s.SetBudget("Fuel", 1200); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyTemplate("family", budget.Mapping{"Food": -4000}); err != nil {
		t.Fatalf("ApplyTemplate: %v", err)
	}
	b := s.Budgets()
	if _, ok := b["Fuel"]; ok {
		t.Error("Fuel survived wholesale apply")
	}
	if b["Food"] != 4000 {
		t.Errorf("Food = %v, want 4000", b["Food"])
	}
	if s.Template() != "family" {
		t.Errorf("Template = %q, want family", s.Template())
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := loaded(t)
	if err := s.SetBudget("Fuel", 1200); err != nil {
		t.Fatal(err)
	}
	snap := s.SnapshotBudgets()
	snap["Fuel"] = 1
	if s.Budgets()["Fuel"] != 1200 {
		t.Error("snapshot aliases active budgets")
	}
	s.ClearBudget("Fuel")
	if snap["Fuel"] != 1 {
		t.Error("ClearBudget affected snapshot")
	}
}

func TestAnalyze(t *testing.T) {
	s := loaded(t)
	if err := s.SetBudget("Food", 4000); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, time.July, 2, 12, 0, 0, 0, time.UTC)

	r, err := s.Analyze("", now)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Year != "2025" {
		t.Errorf("Year = %q, want latest 2025", r.Year)
	}
	if len(r.Results) != 2 {
		t.Fatalf("Results = %+v, want Food and Fuel", r.Results)
	}
	if r.Results[0].Category != "Fuel" || r.Results[0].Status != model.UnbudgetedSpending {
		t.Errorf("first result = %s/%s, want Fuel/unbudgeted", r.Results[0].Category, r.Results[0].Status)
	}

	if _, err := s.Analyze("1999", now); !errors.Is(err, ErrUnknownYear) {
		t.Errorf("Analyze(1999) err = %v, want ErrUnknownYear", err)
	}
}

func TestAnalyzeWith_LeavesActiveBudgets(t *testing.T) {
	s := loaded(t)
	if err := s.SetBudget("Food", 4000); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, time.July, 2, 12, 0, 0, 0, time.UTC)

	r, err := s.AnalyzeWith("2025", budget.Mapping{"Fuel": 1000}, now)
	if err != nil {
		t.Fatalf("AnalyzeWith: %v", err)
	}
	for _, res := range r.Results {
		if res.Category == "Food" && res.Status != model.UnbudgetedSpending {
			t.Errorf("Food status = %s, want unbudgeted under explicit mapping", res.Status)
		}
	}
	if s.Budgets()["Food"] != 4000 {
		t.Error("AnalyzeWith changed active budgets")
	}

	var unk *budget.UnknownCategoryError
	if _, err := s.AnalyzeWith("2025", budget.Mapping{"Nope": 1}, now); !errors.As(err, &unk) {
		t.Errorf("AnalyzeWith(unknown) err = %v, want *UnknownCategoryError", err)
	}
}
