package pipeline

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/bpace/internal/ledger"
	"github.com/theirongolddev/bpace/internal/model"
)

// LoadResult holds the output of the full ledger loading pipeline.
type LoadResult struct {
	Spending     model.SpendingByYear
	Files        []string
	TotalFiles   int
	RowsRead     int
	RowsKept     int
	RowsExcluded int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every ledger file under path and merges them into
// one aggregation. Any failing file fails the whole load.
func Load(ctx context.Context, path string, opts ledger.Options, logger *log.Logger, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := discover(path)
	if err != nil {
		return nil, err
	}

	results, err := parseAll(ctx, files, opts, logger, func(n int) {
		if progressFn != nil {
			progressFn(n, len(files))
		}
	})
	if err != nil {
		return nil, err
	}

	result := &LoadResult{Spending: make(model.SpendingByYear), TotalFiles: len(files)}
	for _, r := range results {
		result.add(r)
	}
	return result, nil
}

// LoadReader aggregates a single CSV ledger from r, e.g. an upload body.
func LoadReader(r io.Reader, name string, opts ledger.Options) (*LoadResult, error) {
	fr, err := ledger.ParseCSV(r, name, opts)
	if err != nil {
		return nil, err
	}
	result := &LoadResult{Spending: make(model.SpendingByYear), TotalFiles: 1}
	result.add(fr)
	return result, nil
}

func (r *LoadResult) add(fr ledger.FileResult) {
	r.Spending.Merge(fr.Spending)
	r.Files = append(r.Files, fr.Path)
	r.RowsRead += fr.RowsRead
	r.RowsKept += fr.RowsKept
	r.RowsExcluded += fr.RowsExcluded
}

func discover(path string) ([]ledger.DiscoveredFile, error) {
	files, err := ledger.Scan(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &ledger.IngestionError{Path: path, Reason: "no .csv or .xlsx ledger files found"}
	}
	return files, nil
}

// parseAll parses files on a bounded errgroup. The first error cancels the rest.
func parseAll(ctx context.Context, files []ledger.DiscoveredFile, opts ledger.Options, logger *log.Logger, done func(int)) ([]ledger.FileResult, error) {
	logger = orDiscard(logger)
	results := make([]ledger.FileResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	var processed atomic.Int64

	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fr, err := ledger.ParseFile(f, opts)
			if err != nil {
				return err
			}
			logger.Debug("parsed ledger file", "path", f.Path, "rows", fr.RowsRead, "kept", fr.RowsKept)
			results[i] = fr
			done(int(processed.Add(1)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	return results, nil
}
