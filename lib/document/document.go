package document

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/apocrypha/lib/datum"
)

// Document is the root of the store: one owning mapping-typed Datum plus
// the write-behind bookkeeping the persistence loop relies on.
type Document struct {
	Root *datum.Datum // always a Mapping

	dirty      bool
	generation uint64
}

// New returns an empty Document - equivalent to starting a fresh database.
func New() *Document {
	return &Document{Root: datum.NewMapping()}
}

// Load reads a Document from a JSON file at path. A missing file yields an
// empty Document (first-run behaviour); an empty file is treated the same
// way. A present-but-malformed file is a startup error - the spec requires
// refusing to start rather than silently discarding data.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("document: reading %s: %w", path, err)
	}
	if len(b) == 0 {
		return New(), nil
	}

	root := datum.NewMapping()
	if err := root.UnmarshalJSON(b); err != nil {
		return nil, fmt.Errorf("document: %s is malformed: %w", path, err)
	}
	if !root.IsMapping() {
		return nil, fmt.Errorf("document: %s does not contain a JSON object at its root", path)
	}
	return &Document{Root: root}, nil
}

// FromJSON builds a Document from raw JSON bytes, as used when restoring a
// Dragonboat snapshot. Unlike Load it never treats its input as a file path.
func FromJSON(data []byte) (*Document, error) {
	if len(data) == 0 {
		return New(), nil
	}
	root := datum.NewMapping()
	if err := root.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("document: malformed snapshot: %w", err)
	}
	if !root.IsMapping() {
		return nil, fmt.Errorf("document: snapshot does not contain a JSON object at its root")
	}
	return &Document{Root: root}, nil
}

// MarkDirty sets the dirty flag and advances the generation counter. Called
// by lib/store after every successful mutating query.
func (d *Document) MarkDirty() {
	d.dirty = true
	d.generation++
}

// Dirty reports whether the document has unflushed mutations.
func (d *Document) Dirty() bool { return d.dirty }

// Generation returns the current write generation - incremented once per
// successful mutating query, used to reason about ordering.
func (d *Document) Generation() uint64 { return d.generation }

// Snapshot serializes the root to JSON bytes. Intended to be called while
// the caller holds the store lock, with the resulting bytes written to disk
// after the lock is released.
func (d *Document) Snapshot() ([]byte, error) {
	return d.Root.MarshalJSON()
}

// ClearDirty resets the dirty flag, called by the persistence loop once a
// snapshot has been taken under the lock.
func (d *Document) ClearDirty() { d.dirty = false }

// SetDirty restores the dirty flag without advancing the generation counter.
// Called by the persistence loop when a flush it already snapshotted fails
// to reach disk, so the next tick retries (spec.md §4.3 step 4) - unlike
// MarkDirty, no new mutation happened here, so the generation counter must
// not move.
func (d *Document) SetDirty() { d.dirty = true }
