package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestScan_Directory(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "2024.csv"))
	touch(t, filepath.Join(dir, "2025.XLSX"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "~$2025.xlsx"))
	touch(t, filepath.Join(dir, ".hidden", "a.csv"))
	touch(t, filepath.Join(dir, "bank", "b.csv"))
	touch(t, filepath.Join(dir, "bank", "old", "c.csv"))

	files, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{
		filepath.Join(dir, "2024.csv"),
		filepath.Join(dir, "2025.XLSX"),
		filepath.Join(dir, "bank", "b.csv"),
	}
	if len(files) != len(want) {
		t.Fatalf("Scan found %d files (%v), want %d", len(files), files, len(want))
	}
	for i, w := range want {
		if files[i].Path != w {
			t.Errorf("files[%d] = %s, want %s", i, files[i].Path, w)
		}
	}
	if files[1].Format != FormatXLSX {
		t.Errorf("files[1].Format = %s, want xlsx", files[1].Format)
	}
}

func TestScan_SingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	touch(t, path)

	files, err := Scan(path)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 1 || files[0].Format != FormatCSV {
		t.Fatalf("Scan = %v, want one csv", files)
	}
}

func TestScan_Errors(t *testing.T) {
	dir := t.TempDir()
	var ie *IngestionError

	if _, err := Scan(filepath.Join(dir, "missing.csv")); !errors.As(err, &ie) {
		t.Errorf("missing path err = %v, want *IngestionError", err)
	}

	txt := filepath.Join(dir, "a.txt")
	touch(t, txt)
	if _, err := Scan(txt); !errors.As(err, &ie) {
		t.Errorf("unsupported file err = %v, want *IngestionError", err)
	}
}
