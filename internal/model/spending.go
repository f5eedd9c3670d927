// Package model defines the data types shared across bpace packages.
package model

import "sort"

// YearlySpending maps category to signed total for one calendar year.
// Negative amounts are expenses by ledger convention.
type YearlySpending map[string]float64

// SpendingByYear maps a four-digit year to that year's category totals.
type SpendingByYear map[string]YearlySpending

// Years returns the years present, oldest first.
func (s SpendingByYear) Years() []string {
	years := make([]string, 0, len(s))
	for y := range s {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// Categories returns the union of categories across all years, sorted.
func (s SpendingByYear) Categories() []string {
	seen := make(map[string]struct{})
	for _, ys := range s {
		for c := range ys {
			seen[c] = struct{}{}
		}
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// Merge adds other's totals into s.
func (s SpendingByYear) Merge(other SpendingByYear) {
	for year, ys := range other {
		dst, ok := s[year]
		if !ok {
			dst = make(YearlySpending, len(ys))
			s[year] = dst
		}
		for cat, amt := range ys {
			dst[cat] += amt
		}
	}
}

// Total returns the signed sum of all categories.
func (y YearlySpending) Total() float64 {
	var t float64
	for _, v := range y {
		t += v
	}
	return t
}

// CategoryTotal is one row of a per-category spend listing.
type CategoryTotal struct {
	Category string
	Amount   float64
}

// Sorted returns the categories ordered by absolute spend, largest first.
func (y YearlySpending) Sorted() []CategoryTotal {
	out := make([]CategoryTotal, 0, len(y))
	for c, a := range y {
		out = append(out, CategoryTotal{Category: c, Amount: a})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := abs(out[i].Amount), abs(out[j].Amount)
		if ai != aj {
			return ai > aj
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// YearSummary is one row of the per-year ledger overview.
type YearSummary struct {
	Year       string  `json:"year"`
	Net        float64 `json:"net"`
	Expenses   float64 `json:"expenses"`
	Income     float64 `json:"income"`
	Categories int     `json:"categories"`
}
