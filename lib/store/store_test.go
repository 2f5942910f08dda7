package store

import (
	"testing"

	"github.com/ValentinKolb/apocrypha/lib/document"
	"github.com/ValentinKolb/apocrypha/lib/engine"
)

func TestQueryAssignThenRead(t *testing.T) {
	s := New(document.New(), 0)

	if _, err := s.Query([]string{"a", "=", "1"}, engine.Options{}); err != nil {
		t.Fatal(err)
	}
	lines, err := s.Query([]string{"a"}, engine.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "1" {
		t.Fatalf("got %v", lines)
	}
	if s.Generation() != 1 {
		t.Fatalf("got generation %d", s.Generation())
	}
}

func TestQueryCachesReads(t *testing.T) {
	s := New(document.New(), 0)
	s.Query([]string{"a", "=", "1"}, engine.Options{})

	s.Query([]string{"a"}, engine.Options{})
	if s.cache.Len() != 1 {
		t.Fatalf("expected a cached read")
	}

	// A mutation must clear the cache in full.
	s.Query([]string{"a", "=", "2"}, engine.Options{})
	if s.cache.Len() != 0 {
		t.Fatalf("expected cache cleared after mutation")
	}
}

func TestQueryErrorLeavesDocumentUntouched(t *testing.T) {
	s := New(document.New(), 0)
	s.Query([]string{"a", "=", "1"}, engine.Options{})

	if _, err := s.Query([]string{"a", "-", "x"}, engine.Options{}); err == nil {
		t.Fatalf("expected error removing a missing value")
	}
	if s.Generation() != 1 {
		t.Fatalf("failed mutation must not advance generation, got %d", s.Generation())
	}
}

func TestSnapshotIfDirty(t *testing.T) {
	s := New(document.New(), 0)

	if _, ok, _ := s.SnapshotIfDirty(); ok {
		t.Fatalf("expected clean document to report nothing to flush")
	}

	s.Query([]string{"a", "=", "1"}, engine.Options{})
	data, ok, err := s.SnapshotIfDirty()
	if err != nil || !ok {
		t.Fatalf("got ok=%v err=%v", ok, err)
	}
	if string(data) != `{"a":"1"}` {
		t.Fatalf("got %q", data)
	}

	if _, ok, _ := s.SnapshotIfDirty(); ok {
		t.Fatalf("expected dirty flag cleared after snapshot")
	}
}
