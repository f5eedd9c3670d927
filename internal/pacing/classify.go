package pacing

import "github.com/theirongolddev/bpace/internal/model"

// Tolerance band around expected spend.
const (
	OverBand  = 1.1
	UnderBand = 0.9
)

// Classify assigns a pacing status to one category.
// budget and spent must be non-negative; progress must be in [0, 1].
func Classify(budget, spent, progress float64) model.CategoryResult {
	r := model.CategoryResult{
		Budget:   budget,
		Spent:    spent,
		Expected: budget * progress,
	}

	if budget == 0 {
		if spent > 0 {
			r.Status = model.UnbudgetedSpending
			r.Variance = -spent
			r.HasVariance = true
			r.SpentPercent = 100
		} else {
			r.Status = model.NoActivity
		}
		r.BarPercent = r.SpentPercent
		return r
	}

	switch {
	case spent > r.Expected*OverBand:
		r.Status = model.OverBudget
	case spent < r.Expected*UnderBand:
		r.Status = model.UnderSpending
	default:
		r.Status = model.OnTrack
	}

	r.Variance = r.Expected - spent
	r.HasVariance = true
	r.SpentPercent = spent / budget * 100
	r.BarPercent = r.SpentPercent
	if r.BarPercent > 100 {
		r.BarPercent = 100
	}
	return r
}
