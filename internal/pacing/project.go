package pacing

import "github.com/theirongolddev/bpace/internal/model"

// Project extrapolates year-end spend from the month-to-date average.
// One month of data is too noisy, so month <= 1 reports not available.
func Project(spent float64, currentMonth int) (model.Projection, bool) {
	if currentMonth <= 1 {
		return model.Projection{}, false
	}
	avg := spent / float64(currentMonth)
	return model.Projection{
		MonthlyAverage:   avg,
		YearlyProjection: avg * 12,
	}, true
}
