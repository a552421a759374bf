package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vitrine3d/vitrine/internal/engine/measure"
)

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "units.yaml"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := s.Get("https://x/a.glb", measure.Meter); got != measure.Meter {
		t.Errorf("Get on empty store = %v, want fallback meter", got)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.yaml")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	const url = "https://assets.example.com/sofa.glb"
	if err := s.Set(url, measure.Centimeter); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := s.Get(url, measure.Meter); got != measure.Centimeter {
		t.Errorf("Get = %v, want cm", got)
	}

	// Reopen from disk.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := s2.Get(url, measure.Meter); got != measure.Centimeter {
		t.Errorf("Get after reopen = %v, want cm", got)
	}
	if got := s2.Get("https://other/b.glb", measure.Meter); got != measure.Meter {
		t.Errorf("Get unknown url = %v, want fallback", got)
	}
}

func TestOpen_SkipsInvalidUnits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.yaml")
	data := "https://x/a.glb: cm\nhttps://x/b.glb: furlong\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := s.Get("https://x/a.glb", measure.Meter); got != measure.Centimeter {
		t.Errorf("valid entry = %v, want cm", got)
	}
	if got := s.Get("https://x/b.glb", measure.Meter); got != measure.Meter {
		t.Errorf("invalid entry = %v, want fallback", got)
	}
}

func TestOpen_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.yaml")
	os.WriteFile(path, []byte("{broken"), 0o644)
	if _, err := Open(path); err == nil {
		t.Error("expected error for malformed store file")
	}
}

func TestSet_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "units.yaml")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Set("u", measure.Millimeter); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("store file not created: %v", err)
	}
}
