// Package store persists the per-asset assumed model unit between
// sessions. The backing file is YAML, written atomically.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vitrine3d/vitrine/internal/engine/measure"
)

// UnitStore maps asset URLs to the unit their model coordinates are
// assumed to be in. Created lazily: a missing file is an empty store.
type UnitStore struct {
	path string

	mu    sync.Mutex
	units map[string]measure.Unit
}

// Open loads the store at path, or starts empty when the file does not
// exist yet.
func Open(path string) (*UnitStore, error) {
	s := &UnitStore{
		path:  path,
		units: make(map[string]measure.Unit),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading unit store %s: %w", path, err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding unit store %s: %w", path, err)
	}
	for url, name := range raw {
		if u := measure.Unit(name); u.Valid() {
			s.units[url] = u
		}
	}
	return s, nil
}

// Get returns the assumed unit recorded for url, or fallback when none
// is recorded.
func (s *UnitStore) Get(url string, fallback measure.Unit) measure.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.units[url]; ok {
		return u
	}
	return fallback
}

// Set records the assumed unit for url and saves the store.
func (s *UnitStore) Set(url string, unit measure.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[url] = unit
	return s.save()
}

// save writes to a temp file in the same directory and renames it over
// the store, so a crash never leaves a half-written file.
func (s *UnitStore) save() error {
	raw := make(map[string]string, len(s.units))
	for url, u := range s.units {
		raw[url] = string(u)
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding unit store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating unit store dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".units-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp unit store: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing unit store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing unit store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing unit store %s: %w", s.path, err)
	}
	return nil
}
