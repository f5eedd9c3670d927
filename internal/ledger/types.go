package ledger

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/bpace/internal/model"
)

// Format identifies the on-disk layout of a ledger export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Columns names the three header cells the aggregator reads.
type Columns struct {
	Month    string
	Category string
	Amount   string
}

// Options controls column resolution and row filtering.
type Options struct {
	Columns  Columns
	Excluded []string
}

// DefaultExcluded are the non-cashflow and fixed-income buckets of the
// reference Hebrew ledger export.
var DefaultExcluded = []string{
	"הכנסות לא תזרימיות",
	"הוצאות לא תזרימיות",
	"הכנסות קבועות",
	"הכנסות משתנות",
}

// DefaultColumns are the Hebrew headers of the reference export.
var DefaultColumns = Columns{
	Month:    "שייך לתזרים חודש",
	Category: "קטגוריה בתזרים",
	Amount:   "סכום",
}

// DefaultOptions returns the reference export's layout.
func DefaultOptions() Options {
	return Options{
		Columns:  DefaultColumns,
		Excluded: append([]string(nil), DefaultExcluded...),
	}
}

// Fingerprint identifies the options that affect aggregation output.
// A cached aggregation is only valid for the fingerprint it was built with.
func (o Options) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "m=%s|c=%s|a=%s|x=", o.Columns.Month, o.Columns.Category, o.Columns.Amount)
	b.WriteString(strings.Join(sortedCopy(o.Excluded), ","))
	return b.String()
}

// DiscoveredFile is a ledger export found by Scan.
type DiscoveredFile struct {
	Path   string
	Format Format
}

// FileResult is the aggregation of one ledger file.
type FileResult struct {
	Path         string
	Spending     model.SpendingByYear
	RowsRead     int
	RowsKept     int
	RowsExcluded int
}

// IngestionError reports malformed or unreadable ledger input.
// Line is 1-based; zero means the error is not tied to a row.
type IngestionError struct {
	Path   string
	Line   int
	Reason string
	Err    error
}

func (e *IngestionError) Error() string {
	var b strings.Builder
	b.WriteString("ingest ")
	b.WriteString(e.Path)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *IngestionError) Unwrap() error { return e.Err }
