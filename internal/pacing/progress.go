// Package pacing classifies category spend against pro-rated annual budgets.
package pacing

import "time"

// yearLength is the fixed year used for progress: 365.25 days.
const yearLength = 365.25 * 24 * time.Hour

// YearProgress returns the elapsed fraction of now's calendar year, in [0, 1].
func YearProgress(now time.Time) float64 {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	p := now.Sub(start).Seconds() / yearLength.Seconds()
	if p > 1 {
		return 1
	}
	return p
}

// ProgressFor returns year progress and the current month for a selected year.
// Past years are complete; future years have not started.
func ProgressFor(year int, now time.Time) (float64, int) {
	switch {
	case year < now.Year():
		return 1, 12
	case year > now.Year():
		return 0, 0
	default:
		return YearProgress(now), int(now.Month())
	}
}
