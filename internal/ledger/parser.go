// Package ledger discovers ledger exports and aggregates them into per-year
// category totals.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/bpace/internal/model"
)

const bom = "\uFEFF"

// row is one data record with its 1-based source line.
type row struct {
	line   int
	fields []string
}

// ParseFile reads and aggregates a single discovered ledger file.
func ParseFile(df DiscoveredFile, opts Options) (FileResult, error) {
	switch df.Format {
	case FormatXLSX:
		return parseXLSX(df.Path, opts)
	default:
		f, err := os.Open(df.Path)
		if err != nil {
			return FileResult{}, &IngestionError{Path: df.Path, Reason: "cannot open ledger", Err: err}
		}
		defer func() { _ = f.Close() }()
		return ParseCSV(f, df.Path, opts)
	}
}

// ParseCSV aggregates a CSV ledger read from r. name is used in errors.
func ParseCSV(r io.Reader, name string, opts Options) (FileResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return FileResult{}, &IngestionError{Path: name, Reason: "empty ledger"}
	}
	if err != nil {
		return FileResult{}, &IngestionError{Path: name, Line: 1, Reason: "reading header", Err: err}
	}

	var rows []row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return FileResult{}, &IngestionError{Path: name, Line: line, Reason: "malformed row", Err: err}
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, row{line: line, fields: rec})
	}

	return aggregate(name, header, rows, opts)
}

func parseXLSX(path string, opts Options) (FileResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return FileResult{}, &IngestionError{Path: path, Reason: "cannot open workbook", Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return FileResult{}, &IngestionError{Path: path, Reason: "workbook has no sheets"}
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return FileResult{}, &IngestionError{Path: path, Reason: "reading sheet " + sheets[0], Err: err}
	}
	if len(records) == 0 {
		return FileResult{}, &IngestionError{Path: path, Reason: "empty ledger"}
	}

	rows := make([]row, 0, len(records)-1)
	for i, rec := range records[1:] {
		rows = append(rows, row{line: i + 2, fields: rec})
	}
	return aggregate(path, records[0], rows, opts)
}

// aggregate resolves columns against header and sums amounts per year and
// category. Any malformed month fails the whole table.
func aggregate(name string, header []string, rows []row, opts Options) (FileResult, error) {
	monthIdx, catIdx, amtIdx, err := resolveColumns(name, header, opts.Columns)
	if err != nil {
		return FileResult{}, err
	}

	excluded := make(map[string]struct{}, len(opts.Excluded))
	for _, c := range opts.Excluded {
		excluded[strings.TrimSpace(c)] = struct{}{}
	}

	sums := make(map[string]map[string]decimal.Decimal)
	res := FileResult{Path: name}

	for _, r := range rows {
		if blank(r.fields) {
			continue
		}
		res.RowsRead++

		cat := strings.TrimSpace(field(r.fields, catIdx))
		if cat == "" {
			res.RowsExcluded++
			continue
		}
		if _, skip := excluded[cat]; skip {
			res.RowsExcluded++
			continue
		}

		month := strings.TrimSpace(field(r.fields, monthIdx))
		year, ok := yearOf(month)
		if !ok {
			return FileResult{}, &IngestionError{
				Path:   name,
				Line:   r.line,
				Reason: fmt.Sprintf("unparseable month %q", month),
			}
		}

		byCat := sums[year]
		if byCat == nil {
			byCat = make(map[string]decimal.Decimal)
			sums[year] = byCat
		}
		byCat[cat] = byCat[cat].Add(parseAmount(field(r.fields, amtIdx)))
		res.RowsKept++
	}

	res.Spending = make(model.SpendingByYear, len(sums))
	for year, byCat := range sums {
		ys := make(model.YearlySpending, len(byCat))
		for cat, d := range byCat {
			ys[cat] = d.InexactFloat64()
		}
		res.Spending[year] = ys
	}
	return res, nil
}

func resolveColumns(name string, header []string, cols Columns) (month, cat, amt int, err error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	lookup := func(col string) int {
		i, ok := index[strings.TrimSpace(col)]
		if !ok {
			missing = append(missing, col)
			return -1
		}
		return i
	}
	month = lookup(cols.Month)
	cat = lookup(cols.Category)
	amt = lookup(cols.Amount)

	if len(missing) > 0 {
		return 0, 0, 0, &IngestionError{
			Path:   name,
			Line:   1,
			Reason: "missing required column " + strings.Join(quote(missing), ", "),
		}
	}
	return month, cat, amt, nil
}

// yearOf validates a "YYYY-MM..." posting month and returns the year.
func yearOf(month string) (string, bool) {
	if len(month) < 7 || month[4] != '-' {
		return "", false
	}
	for i := 0; i < 4; i++ {
		if month[i] < '0' || month[i] > '9' {
			return "", false
		}
	}
	mm := month[5:7]
	if mm[0] < '0' || mm[0] > '1' || mm[1] < '0' || mm[1] > '9' {
		return "", false
	}
	if mm == "00" || mm > "12" {
		return "", false
	}
	return month[:4], true
}

// parseAmount reads a ledger amount; anything non-numeric counts as zero.
func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func quote(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
