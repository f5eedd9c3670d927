package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/bpace/internal/ledger"
	"github.com/theirongolddev/bpace/internal/model"
)

func openCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "bpace.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_SaveLoadRoundTrip(t *testing.T) {
	c := openCache(t)

	res := ledger.FileResult{
		Path: "/data/2025.csv",
		Spending: model.SpendingByYear{
			"2024": {"Groceries": -1300.3},
			"2025": {"Groceries": -50, "Dining": -30.5},
		},
		RowsRead:     7,
		RowsKept:     5,
		RowsExcluded: 2,
	}

	id, err := c.SaveFile(res, 111, 222, "fp1")
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if id == "" {
		t.Error("SaveFile returned empty import id")
	}

	got, err := c.LoadFile(res.Path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.RowsRead != 7 || got.RowsKept != 5 || got.RowsExcluded != 2 {
		t.Errorf("row counts = %d/%d/%d, want 7/5/2", got.RowsRead, got.RowsKept, got.RowsExcluded)
	}
	for year, ys := range res.Spending {
		for cat, amt := range ys {
			if got.Spending[year][cat] != amt {
				t.Errorf("%s/%s = %v, want %v", year, cat, got.Spending[year][cat], amt)
			}
		}
	}

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatalf("GetTrackedFiles: %v", err)
	}
	fi, ok := tracked[res.Path]
	if !ok {
		t.Fatal("file not tracked after SaveFile")
	}
	if !fi.Matches(111, 222, "fp1") {
		t.Errorf("tracked = %+v, want mtime 111 size 222 fp1", fi)
	}
	if fi.Matches(111, 222, "fp2") {
		t.Error("Matches ignored fingerprint")
	}
	if fi.ImportID != id {
		t.Errorf("ImportID = %q, want %q", fi.ImportID, id)
	}
}

func TestCache_SaveReplaces(t *testing.T) {
	c := openCache(t)

	first := ledger.FileResult{Path: "/a.csv", Spending: model.SpendingByYear{"2025": {"Old": -1}}}
	second := ledger.FileResult{Path: "/a.csv", Spending: model.SpendingByYear{"2025": {"New": -2}}}

	if _, err := c.SaveFile(first, 1, 1, "fp"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SaveFile(second, 2, 2, "fp"); err != nil {
		t.Fatal(err)
	}

	got, err := c.LoadFile("/a.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.Spending["2025"]["Old"]; ok {
		t.Error("stale category survived replace")
	}
	if got.Spending["2025"]["New"] != -2 {
		t.Errorf("New = %v, want -2", got.Spending["2025"]["New"])
	}
	if n, _ := c.FileCount(); n != 1 {
		t.Errorf("FileCount = %d, want 1", n)
	}
}

func TestCache_DeleteAndMissing(t *testing.T) {
	c := openCache(t)

	if _, err := c.LoadFile("/missing.csv"); !errors.Is(err, ErrNotCached) {
		t.Errorf("LoadFile(missing) err = %v, want ErrNotCached", err)
	}

	res := ledger.FileResult{Path: "/b.csv", Spending: model.SpendingByYear{"2025": {"X": -3}}}
	if _, err := c.SaveFile(res, 1, 1, "fp"); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteFile("/b.csv"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if _, err := c.LoadFile("/b.csv"); !errors.Is(err, ErrNotCached) {
		t.Errorf("LoadFile after delete err = %v, want ErrNotCached", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bpace.db")
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.SaveFile(ledger.FileResult{Path: "/c.csv"}, 1, 1, "fp"); err != nil {
		t.Fatal(err)
	}
	_ = c.Close()

	c, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = c.Close() }()
	if n, _ := c.FileCount(); n != 1 {
		t.Errorf("FileCount after reopen = %d, want 1", n)
	}
}
