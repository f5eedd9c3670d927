package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/bpace/internal/ledger"
)

// writeBenchLedger writes files CSVs of rows rows each spread over 40 categories.
func writeBenchLedger(b *testing.B, files, rows int) string {
	b.Helper()
	dir := b.TempDir()
	for f := 0; f < files; f++ {
		var sb strings.Builder
		sb.WriteString("Month,Category,Amount\n")
		for r := 0; r < rows; r++ {
			fmt.Fprintf(&sb, "%d-%02d,Category %02d,-%d.%02d\n", 2020+f%5, r%12+1, r%40, r%500, r%100)
		}
		path := filepath.Join(dir, fmt.Sprintf("ledger-%03d.csv", f))
		if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
			b.Fatal(err)
		}
	}
	return dir
}

func BenchmarkLoad(b *testing.B) {
	dir := writeBenchLedger(b, 8, 5000)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Load(ctx, dir, opts, nil, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseFile(b *testing.B) {
	dir := writeBenchLedger(b, 1, 20000)
	files, err := ledger.Scan(dir)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ledger.ParseFile(files[0], opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSummarizeYears(b *testing.B) {
	dir := writeBenchLedger(b, 5, 2000)
	res, err := Load(context.Background(), dir, opts, nil, nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = SummarizeYears(res.Spending)
	}
}
