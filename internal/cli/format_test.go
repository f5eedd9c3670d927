package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/bpace/internal/locale"
	"github.com/theirongolddev/bpace/internal/model"
	"github.com/theirongolddev/bpace/internal/pacing"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercentAndMonth(t *testing.T) {
	if got := FormatPercent(0.5); got != "50.0%" {
		t.Errorf("FormatPercent(0.5) = %q", got)
	}
	if got := FormatPct(83.4); got != "83%" {
		t.Errorf("FormatPct(83.4) = %q", got)
	}
	if got := FormatMonth(7); got != "Jul" {
		t.Errorf("FormatMonth(7) = %q", got)
	}
	if got := FormatMonth(0); got != "-" {
		t.Errorf("FormatMonth(0) = %q", got)
	}
}

func TestRenderTable_AlignsWideRunes(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"קטגוריה", "סכום"},
		Rows:    [][]string{{"מזון", "₪1,200"}, {"Fuel", "₪80"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("table has %d lines, want 6:\n%s", len(lines), out)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 1}); got != "▁█" {
		t.Errorf("RenderSparkline = %q, want ▁█", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("RenderSparkline(nil) not empty")
	}
}

func TestRenderReport(t *testing.T) {
	now := time.Date(2025, time.July, 2, 12, 0, 0, 0, time.UTC)
	r := pacing.Analyze(pacing.Input{
		Year:       "2025",
		Spending:   model.YearlySpending{"Fuel": -9000, "Food": -100, "Gifts": -40},
		Budgets:    map[string]float64{"Fuel": 6000, "Food": 2400},
		Categories: []string{"Food", "Fuel", "Gifts", "Idle"},
		Now:        now,
	})
	l := locale.New("en").Build()

	out := RenderReport(r, l)
	for _, want := range []string{"Budget Analysis for 2025", "Over Budget", "Under Spending", "Fuel", "Gifts", "Food"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(out, "Idle") {
		t.Error("report lists category with no activity")
	}
	if strings.Contains(out, "On Track (") {
		t.Error("report renders empty on-track lane")
	}
}

func TestProjectionCell(t *testing.T) {
	l := locale.New("en").Build()
	c := model.CategoryResult{Budget: 2000, Projection: &model.Projection{YearlyProjection: 2400}}
	if got := ProjectionCell(c, l); got != "₪2,400 (Over budget)" {
		t.Errorf("ProjectionCell = %q", got)
	}
	c.Projection = nil
	if got := ProjectionCell(c, l); got != "-" {
		t.Errorf("ProjectionCell(nil) = %q", got)
	}
}
