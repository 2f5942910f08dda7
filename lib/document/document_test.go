package document

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	if d.Root.Len() != 0 {
		t.Fatalf("expected empty root")
	}
}

func TestLoadEmptyFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if d.Root.Len() != 0 {
		t.Fatalf("expected empty root")
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error loading malformed file")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	d := New()
	d.Root.Set("a", d.Root.Get("a"))
	data, err := d.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Root.Len() != d.Root.Len() {
		t.Fatalf("got %d want %d", loaded.Root.Len(), d.Root.Len())
	}
}

func TestMarkDirtyAdvancesGeneration(t *testing.T) {
	d := New()
	if d.Generation() != 0 {
		t.Fatalf("expected generation 0")
	}
	d.MarkDirty()
	if !d.Dirty() || d.Generation() != 1 {
		t.Fatalf("got dirty=%v generation=%d", d.Dirty(), d.Generation())
	}
	d.ClearDirty()
	if d.Dirty() {
		t.Fatalf("expected not dirty")
	}
}
