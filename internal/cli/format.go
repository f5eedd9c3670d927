// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/bpace/internal/locale"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return locale.GroupDigits(strconv.FormatInt(n, 10), ",")
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatPct formats a value already on the 0-100 scale, no decimals.
func FormatPct(p float64) string {
	return fmt.Sprintf("%.0f%%", p)
}

// FormatMonth returns a 3-letter month abbreviation for 1-12.
func FormatMonth(m int) string {
	months := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	if m >= 1 && m <= 12 {
		return months[m-1]
	}
	return "-"
}
