package pacing

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/theirongolddev/bpace/internal/model"
)

// Input is everything needed to analyze one year.
type Input struct {
	Year       string
	Spending   model.YearlySpending
	Budgets    map[string]float64
	Categories []string
	Now        time.Time
}

// Analyze classifies every known category with activity in the selected year.
// Categories with neither budget nor spend are skipped.
//
// Progress and month come from ProgressFor: the current year is paced by
// now, a past year is evaluated as complete (progress 1, month 12) and a
// future year as not started (progress 0, no projection).
func Analyze(in Input) model.Report {
	year, err := strconv.Atoi(in.Year)
	if err != nil {
		year = in.Now.Year()
	}
	progress, month := ProgressFor(year, in.Now)

	report := model.Report{
		Year:         in.Year,
		AsOf:         in.Now,
		Progress:     progress,
		CurrentMonth: month,
	}

	for _, cat := range in.Categories {
		budget := math.Abs(in.Budgets[cat])
		spent := math.Abs(in.Spending[cat])

		r := Classify(budget, spent, progress)
		if r.Status == model.NoActivity {
			continue
		}
		r.Category = cat
		if p, ok := Project(spent, month); ok {
			r.Projection = &p
		}

		report.TotalBudget += r.Budget
		report.TotalSpent += r.Spent
		report.TotalExpected += r.Expected
		report.Results = append(report.Results, r)
	}

	sort.SliceStable(report.Results, func(i, j int) bool {
		li, lj := report.Results[i].Status.Lane(), report.Results[j].Status.Lane()
		if li != lj {
			return li < lj
		}
		return report.Results[i].Category < report.Results[j].Category
	})

	return report
}
