// Package templates persists named budget mappings in a single JSON file.
package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/theirongolddev/bpace/internal/budget"
)

var (
	// ErrNotFound is returned when loading or deleting an absent template.
	ErrNotFound = errors.New("template not found")
	// ErrInvalidName is returned for empty template names.
	ErrInvalidName = errors.New("invalid template name")
)

// Store is a file-backed template collection. Safe for concurrent use
// within one process.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns a store backed by path, creating an empty store file if none exists.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.write(map[string]budget.Mapping{}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("opening template store: %w", err)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Save upserts a template.
func (s *Store) Save(name string, m budget.Mapping) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	all[name] = m.Clone()
	return s.write(all)
}

// Load returns a copy of the named template.
func (s *Store) Load(name string) (budget.Mapping, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return nil, err
	}
	m, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if m == nil {
		m = budget.Mapping{}
	}
	return m, nil
}

// Delete removes the named template.
func (s *Store) Delete(name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := all[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(all, name)
	return s.write(all)
}

// List returns all template names, sorted.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for n := range all {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Copy duplicates src under dst, overwriting dst.
func (s *Store) Copy(src, dst string) error {
	m, err := s.Load(src)
	if err != nil {
		return err
	}
	return s.Save(dst, m)
}

func (s *Store) read() (map[string]budget.Mapping, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]budget.Mapping{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading template store: %w", err)
	}
	all := make(map[string]budget.Mapping)
	if len(strings.TrimSpace(string(data))) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parsing template store %s: %w", s.path, err)
	}
	return all, nil
}

// write replaces the store file atomically: temp file, fsync, rename.
func (s *Store) write(all map[string]budget.Mapping) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating template dir: %w", err)
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding templates: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".templates-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing templates: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing templates: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing templates: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing template store: %w", err)
	}
	return nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}
