// Package budget holds the category-to-budget mapping and its validation rules.
package budget

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrInvalidAmount is returned for NaN or infinite budget amounts.
var ErrInvalidAmount = errors.New("invalid budget amount")

// maxSuggestions caps the "did you mean" list.
const maxSuggestions = 3

// Mapping is the active category -> annual budget table.
// Amounts are stored as non-negative magnitudes.
type Mapping map[string]float64

// UnknownCategoryError reports a budget key that is not in the ledger.
type UnknownCategoryError struct {
	Category    string
	Suggestions []string
}

func (e *UnknownCategoryError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown category %q", e.Category)
	}
	return fmt.Sprintf("unknown category %q (did you mean %s?)",
		e.Category, strings.Join(quoteAll(e.Suggestions), ", "))
}

// Normalize converts a user-supplied amount to the stored magnitude.
func Normalize(amount float64) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return math.Abs(amount), nil
}

// Clone returns an independent copy.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Categories returns the mapped categories in sorted order.
func (m Mapping) Categories() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Total sums all budgets.
func (m Mapping) Total() float64 {
	var sum float64
	for _, v := range m {
		sum += v
	}
	return sum
}

// Set assigns a budget to a category. When known is non-nil the category
// must be one of its entries.
func (m Mapping) Set(category string, amount float64, known []string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return errors.New("empty category")
	}
	if known != nil && !contains(known, category) {
		return &UnknownCategoryError{Category: category, Suggestions: Suggest(category, known)}
	}
	v, err := Normalize(amount)
	if err != nil {
		return fmt.Errorf("category %q: %w", category, err)
	}
	m[category] = v
	return nil
}

// Validate reports every key of m that is not in known, joined into one error.
// It also normalizes amounts, rejecting NaN and Inf.
func (m Mapping) Validate(known []string) error {
	var errs []error
	for _, cat := range m.Categories() {
		if known != nil && !contains(known, cat) {
			errs = append(errs, &UnknownCategoryError{Category: cat, Suggestions: Suggest(cat, known)})
			continue
		}
		if _, err := Normalize(m[cat]); err != nil {
			errs = append(errs, fmt.Errorf("category %q: %w", cat, err))
		}
	}
	return errors.Join(errs...)
}

// Normalized returns a copy of m with every amount made non-negative.
func (m Mapping) Normalized() (Mapping, error) {
	out := make(Mapping, len(m))
	for k, v := range m {
		n, err := Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", k, err)
		}
		out[strings.TrimSpace(k)] = n
	}
	return out, nil
}

// Suggest ranks known categories by edit distance to category.
func Suggest(category string, known []string) []string {
	type scored struct {
		name string
		dist int
	}
	limit := max(2, len([]rune(category))/2)

	var cands []scored
	for _, k := range known {
		d := levenshtein.ComputeDistance(strings.ToLower(category), strings.ToLower(k))
		if d <= limit {
			cands = append(cands, scored{k, d})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].name < cands[j].name
	})

	var out []string
	for i := 0; i < len(cands) && i < maxSuggestions; i++ {
		out = append(out, cands[i].name)
	}
	return out
}

// ParseAssignment parses a CLI argument of the form "Category=1200".
// The category may itself contain '='; the amount follows the last one.
func ParseAssignment(s string) (string, float64, error) {
	i := strings.LastIndex(s, "=")
	if i <= 0 {
		return "", 0, fmt.Errorf("expected CATEGORY=AMOUNT, got %q", s)
	}
	cat := strings.TrimSpace(s[:i])
	raw := strings.ReplaceAll(strings.TrimSpace(s[i+1:]), ",", "")
	if cat == "" {
		return "", 0, fmt.Errorf("empty category in %q", s)
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("parse amount in %q: %w", s, err)
	}
	amount, err = Normalize(amount)
	if err != nil {
		return "", 0, err
	}
	return cat, amount, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strconv.Quote(s)
	}
	return out
}
