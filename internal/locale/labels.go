// Package locale provides presentation labels and currency formatting.
package locale

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/bpace/internal/model"
)

// Labels is the full set of user-facing strings for one locale.
type Labels struct {
	Lang string
	RTL  bool

	Title         string
	TabSetup      string
	TabAnalysis   string
	TabTemplates  string
	AnalysisFor   string // format with year
	YearProgress  string
	YearCompleted string // format with percent

	Budget         string
	Spent          string
	Expected       string
	OverBy         string
	UnderBy        string
	MonthlyAverage string
	Projection     string
	Category       string
	Status         string

	LaneOver    string
	LaneOnTrack string
	LaneUnder   string

	StatusOver       string
	StatusOnTrack    string
	StatusUnder      string
	StatusUnbudgeted string
	StatusNone       string

	VerdictOver   string
	VerdictWithin string
	VerdictNone   string

	TemplateName    string
	SaveTemplate    string
	LoadTemplate    string
	NoTemplates     string
	NoActivity      string
	CategoryBudgets string
	SpendingByYear  string
	NoLedger        string

	currency  string
	thousands string
}

// StatusName returns the localized name of a status.
func (l Labels) StatusName(s model.Status) string {
	switch s {
	case model.OverBudget:
		return l.StatusOver
	case model.OnTrack:
		return l.StatusOnTrack
	case model.UnderSpending:
		return l.StatusUnder
	case model.UnbudgetedSpending:
		return l.StatusUnbudgeted
	default:
		return l.StatusNone
	}
}

// LaneTitle returns the column heading for a lane.
func (l Labels) LaneTitle(lane model.Lane) string {
	switch lane {
	case model.LaneOver:
		return l.LaneOver
	case model.LaneUnder:
		return l.LaneUnder
	default:
		return l.LaneOnTrack
	}
}

// VerdictName returns the localized projection verdict.
func (l Labels) VerdictName(v model.ProjectionVerdict) string {
	switch v {
	case model.ProjectionOverBudget:
		return l.VerdictOver
	case model.ProjectionWithinBudget:
		return l.VerdictWithin
	default:
		return l.VerdictNone
	}
}

// VarianceLabel returns "over by" or "under by" and the magnitude to show.
func (l Labels) VarianceLabel(variance float64) (string, float64) {
	if variance < 0 {
		return l.OverBy, -variance
	}
	return l.UnderBy, variance
}

// Currency returns the configured currency symbol.
func (l Labels) Currency() string { return l.currency }

// FormatMoney renders an amount with the currency symbol, thousands
// separators and no decimals: 1234.5 -> "₪1,235".
func (l Labels) FormatMoney(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	s := GroupDigits(strconv.FormatInt(n, 10), l.thousands)
	if neg {
		return "-" + l.currency + s
	}
	return l.currency + s
}

// FormatPercent renders a 0..1 fraction with one decimal.
func (l Labels) FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// GroupDigits inserts sep between every three digits of an unsigned
// decimal string: ("1234567", ",") -> "1,234,567".
func GroupDigits(s, sep string) string {
	if len(s) <= 3 || sep == "" {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
