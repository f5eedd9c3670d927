package ledger

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scan resolves a ledger path into the export files it names. A file path is
// returned as-is; a directory is searched at the top level and one level of
// subdirectories for .csv and .xlsx files. Hidden entries and Excel lock files
// are skipped.
func Scan(path string) ([]DiscoveredFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &IngestionError{Path: path, Reason: "cannot open ledger", Err: err}
	}
	if !info.IsDir() {
		f, ok := classify(path)
		if !ok {
			return nil, &IngestionError{Path: path, Reason: "unsupported file type " + filepath.Ext(path)}
		}
		return []DiscoveredFile{f}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if p == path {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "~$") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			rel, _ := filepath.Rel(path, p)
			if strings.Count(rel, string(filepath.Separator)) >= 1 {
				return filepath.SkipDir
			}
			return nil
		}
		if f, ok := classify(p); ok {
			files = append(files, f)
		}
		return nil
	})
	if err != nil {
		return nil, &IngestionError{Path: path, Reason: "scanning directory", Err: err}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func classify(path string) (DiscoveredFile, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return DiscoveredFile{Path: path, Format: FormatCSV}, true
	case ".xlsx":
		return DiscoveredFile{Path: path, Format: FormatXLSX}, true
	}
	return DiscoveredFile{}, false
}

func sortedCopy(ss []string) []string {
	out := append([]string(nil), ss...)
	sort.Strings(out)
	return out
}
