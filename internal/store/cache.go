// Package store provides a SQLite-backed cache of per-file ledger aggregations.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/theirongolddev/bpace/internal/ledger"
	"github.com/theirongolddev/bpace/internal/model"
)

// ErrNotCached is returned by LoadFile for a path with no cache entry.
var ErrNotCached = errors.New("file not cached")

// Cache provides SQLite-backed aggregation caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path and applies
// any pending migrations.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked identity of a ledger file.
type FileInfo struct {
	MtimeNs     int64
	SizeBytes   int64
	Fingerprint string
	ImportID    string
}

// Matches reports whether a cached entry is still valid for the given file state.
func (fi FileInfo) Matches(mtimeNs, size int64, fingerprint string) bool {
	return fi.MtimeNs == mtimeNs && fi.SizeBytes == size && fi.Fingerprint == fingerprint
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes, fingerprint, import_id FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes, &fi.Fingerprint, &fi.ImportID); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces the cached aggregation of one file and returns the
// import id assigned to it.
func (c *Cache) SaveFile(res ledger.FileResult, mtimeNs, sizeBytes int64, fingerprint string) (string, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	importID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	if _, err := tx.Exec("DELETE FROM file_totals WHERE file_path = ?", res.Path); err != nil {
		return "", err
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker
		(file_path, mtime_ns, size_bytes, fingerprint, import_id,
		 rows_read, rows_kept, rows_excluded, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Path, mtimeNs, sizeBytes, fingerprint, importID,
		res.RowsRead, res.RowsKept, res.RowsExcluded, now,
	)
	if err != nil {
		return "", err
	}

	stmt, err := tx.Prepare(`INSERT INTO file_totals (file_path, year, category, amount) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer func() { _ = stmt.Close() }()

	for year, ys := range res.Spending {
		for cat, amt := range ys {
			if _, err := stmt.Exec(res.Path, year, cat, amt); err != nil {
				return "", err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return importID, nil
}

// LoadFile reads a cached aggregation back.
func (c *Cache) LoadFile(path string) (ledger.FileResult, error) {
	res := ledger.FileResult{Path: path, Spending: make(model.SpendingByYear)}

	err := c.db.QueryRow(`SELECT rows_read, rows_kept, rows_excluded
		FROM file_tracker WHERE file_path = ?`, path).
		Scan(&res.RowsRead, &res.RowsKept, &res.RowsExcluded)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.FileResult{}, ErrNotCached
	}
	if err != nil {
		return ledger.FileResult{}, err
	}

	rows, err := c.db.Query("SELECT year, category, amount FROM file_totals WHERE file_path = ?", path)
	if err != nil {
		return ledger.FileResult{}, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var year, cat string
		var amt float64
		if err := rows.Scan(&year, &cat, &amt); err != nil {
			return ledger.FileResult{}, err
		}
		ys := res.Spending[year]
		if ys == nil {
			ys = make(model.YearlySpending)
			res.Spending[year] = ys
		}
		ys[cat] = amt
	}
	return res, rows.Err()
}

// DeleteFile removes a file's tracking entry and totals.
func (c *Cache) DeleteFile(path string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM file_totals WHERE file_path = ?", path); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", path); err != nil {
		return err
	}
	return tx.Commit()
}

// FileCount returns the number of cached files.
func (c *Cache) FileCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM file_tracker").Scan(&count)
	return count, err
}
