package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/theirongolddev/bpace/internal/ledger"
	"github.com/theirongolddev/bpace/internal/model"
	"github.com/theirongolddev/bpace/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
}

// LoadWithCache discovers, diffs against cache, parses only changed files,
// and returns the combined result. Cache read failures fall back to an
// uncached load; write failures are logged and otherwise ignored.
func LoadWithCache(ctx context.Context, path string, opts ledger.Options, cache *store.Cache, logger *log.Logger, progressFn ProgressFunc) (*CachedLoadResult, error) {
	logger = orDiscard(logger)

	files, err := discover(path)
	if err != nil {
		return nil, err
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		logger.Warn("cache unreadable, loading without cache", "err", err)
		res, err := Load(ctx, path, opts, logger, progressFn)
		if err != nil {
			return nil, err
		}
		return &CachedLoadResult{LoadResult: *res, Reparsed: res.TotalFiles}, nil
	}

	fingerprint := opts.Fingerprint()
	result := &CachedLoadResult{
		LoadResult: LoadResult{Spending: make(model.SpendingByYear), TotalFiles: len(files)},
	}

	// Diff: partition into cached and changed
	var toReparse []ledger.DiscoveredFile
	stats := make(map[string]os.FileInfo, len(files))
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			return nil, &ledger.IngestionError{Path: f.Path, Reason: "cannot stat ledger", Err: err}
		}
		stats[f.Path] = info

		cached, ok := tracked[f.Path]
		if ok && cached.Matches(info.ModTime().UnixNano(), info.Size(), fingerprint) {
			fr, err := cache.LoadFile(f.Path)
			if err == nil {
				result.add(fr)
				result.CacheHits++
				continue
			}
			logger.Warn("cached entry unreadable, reparsing", "path", f.Path, "err", err)
		}
		toReparse = append(toReparse, f)
	}
	result.Reparsed = len(toReparse)

	parsed, err := parseAll(ctx, toReparse, opts, logger, func(n int) {
		if progressFn != nil {
			progressFn(n+result.CacheHits, result.TotalFiles)
		}
	})
	if err != nil {
		return nil, err
	}

	for i, fr := range parsed {
		result.add(fr)
		info := stats[toReparse[i].Path]
		if _, err := cache.SaveFile(fr, info.ModTime().UnixNano(), info.Size(), fingerprint); err != nil {
			logger.Warn("caching ledger file failed", "path", fr.Path, "err", err)
		}
	}

	logger.Debug("ledger loaded", "files", result.TotalFiles, "cache_hits", result.CacheHits, "reparsed", result.Reparsed)
	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "bpace")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "bpace")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "ledger.db")
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}
