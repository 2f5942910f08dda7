package store

import (
	"sync"
	"time"

	"github.com/ValentinKolb/apocrypha/lib/cache"
	"github.com/ValentinKolb/apocrypha/lib/document"
	"github.com/ValentinKolb/apocrypha/lib/engine"
	"github.com/ValentinKolb/apocrypha/metrics"
)

// Store is the sole atomic entry point onto the database: one *document.Document,
// one *cache.Cache, and the single mutex that serializes every query against
// both. Construct one per process (or one per dragonboat shard, in cluster
// mode - see internal/cluster) and share the pointer with every connection
// handler.
type Store struct {
	mu    sync.Mutex
	doc   *document.Document
	cache *cache.Cache
}

// New wraps doc with a cache of the given size. size <= 0 uses
// cache.DefaultMaxEntries.
func New(doc *document.Document, cacheSize int) *Store {
	return &Store{doc: doc, cache: cache.New(cacheSize)}
}

// Query evaluates a single already-tokenized query under the store lock. On
// a successful mutation the document's root is swapped to the engine's new
// tree, the dirty flag and generation counter advance, and the cache is
// cleared in full - per spec, any mutating query clears the cache regardless
// of whether it mutated anything observable (e.g. `--pop` on an absent
// path), so this clears on any query carrying a recognized write operator,
// not only on a literal change to the tree.
func (s *Store) Query(tokens []string, opts engine.Options) ([]string, error) {
	start := time.Now()
	lines, err := s.query(tokens, opts)
	metrics.RecordQuery(time.Since(start), err)
	return lines, err
}

func (s *Store) query(tokens []string, opts engine.Options) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := engine.NormalizeTokens(tokens)
	key := cacheKey(normalized, opts)
	if lines, ok := s.cache.Get(key); ok {
		metrics.RecordCacheLookup(true)
		return lines, nil
	}
	metrics.RecordCacheLookup(false)

	result, err := engine.Evaluate(s.doc.Root, tokens, opts)
	if err != nil {
		for _, t := range normalized {
			switch t {
			case engine.OpAssign, engine.OpAppend, engine.OpRemove, engine.OpSet, engine.OpDel, engine.OpPop:
				s.cache.Clear()
			}
		}
		return nil, err
	}

	if result.Mutated {
		s.doc.Root = result.Root
		s.doc.MarkDirty()
		s.cache.Clear()
		return result.Lines, nil
	}

	if result.Cacheable {
		s.cache.Put(key, result.Lines)
	}
	return result.Lines, nil
}

// cacheKey folds the request-level modifiers into the engine's canonical
// token key, since "a b" with --context and "a b" without it produce
// different output and must not collide in the cache.
func cacheKey(normalized []string, opts engine.Options) string {
	prefix := byte('0')
	if opts.AddContext {
		prefix |= 1
	}
	if opts.Strict {
		prefix |= 2
	}
	return string(prefix) + engine.CanonicalKey(normalized)
}

// SnapshotIfDirty implements persistence.Source: under the store lock, if
// the document has unflushed mutations it serializes the root to JSON,
// clears the dirty flag, and returns the bytes. The lock is released before
// the caller (the persistence loop) writes those bytes to disk, so disk I/O
// never happens while the lock is held.
func (s *Store) SnapshotIfDirty() ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.doc.Dirty() {
		return nil, false, nil
	}
	data, err := s.doc.Snapshot()
	if err != nil {
		return nil, false, NewError(RetCIOError, err.Error())
	}
	s.doc.ClearDirty()
	return data, true, nil
}

// MarkDirty implements persistence.Source: restores the dirty flag after the
// persistence loop fails to write a snapshot it already took, so the next
// tick retries instead of silently losing the flush.
func (s *Store) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.SetDirty()
}

// Generation returns the document's current write generation, used by tests
// to check how many mutations were applied.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Generation()
}

// ForceSnapshot serializes the root regardless of the dirty flag. Used by
// internal/cluster's SaveSnapshot, which must be able to produce a snapshot
// of a never-mutated replica on demand, unlike the write-behind persistence
// loop which only ever flushes when there is something new to write.
func (s *Store) ForceSnapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Snapshot()
}
