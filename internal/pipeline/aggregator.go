// Package pipeline orchestrates ledger loading, caching, and spend summaries.
package pipeline

import (
	"strings"

	"github.com/theirongolddev/bpace/internal/model"
)

// SummarizeYears computes one overview row per ledger year, oldest first.
// Expenses and income are reported as magnitudes.
func SummarizeYears(s model.SpendingByYear) []model.YearSummary {
	years := s.Years()
	out := make([]model.YearSummary, 0, len(years))
	for _, y := range years {
		ys := s[y]
		sum := model.YearSummary{Year: y, Categories: len(ys)}
		for _, amt := range ys {
			sum.Net += amt
			if amt < 0 {
				sum.Expenses -= amt
			} else {
				sum.Income += amt
			}
		}
		out = append(out, sum)
	}
	return out
}

// CategoryTotals lists a year's categories by absolute spend, largest first.
// An unknown year yields nil.
func CategoryTotals(s model.SpendingByYear, year string) []model.CategoryTotal {
	ys, ok := s[year]
	if !ok {
		return nil
	}
	return ys.Sorted()
}

// FilterCategories returns totals whose category contains substr (case-insensitive).
func FilterCategories(totals []model.CategoryTotal, substr string) []model.CategoryTotal {
	if substr == "" {
		return totals
	}
	var out []model.CategoryTotal
	for _, t := range totals {
		if containsIgnoreCase(t.Category, substr) {
			out = append(out, t)
		}
	}
	return out
}

// LatestYear returns the most recent year in the ledger, or "" when empty.
func LatestYear(s model.SpendingByYear) string {
	years := s.Years()
	if len(years) == 0 {
		return ""
	}
	return years[len(years)-1]
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
