package cache

// DefaultMaxEntries is used when a server is not configured with an
// explicit cache size (spec.md §6's cache-size default).
const DefaultMaxEntries = 1024

// entry holds one cached value. Cache keeps entries in a map for O(1) lookup
// plus a FIFO queue of keys for O(1) amortized eviction, modeled after the
// teacher's MapHeap (lib/db/util/mapheap.go). A priority
// heap is overkill here since every entry is evicted in the same order it
// was inserted - there is no notion of recency or cost to weigh.
type entry struct {
	lines []string
}

// Cache is not safe for concurrent use on its own - the store package wraps
// every access in the single process-wide lock the spec requires.
type Cache struct {
	max     int
	entries map[string]entry
	order   []string // FIFO queue of keys, oldest first
}

// New returns an empty cache that evicts its oldest entry once it holds
// more than maxEntries. maxEntries <= 0 means DefaultMaxEntries.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		max:     maxEntries,
		entries: make(map[string]entry),
	}
}

// Get returns the cached lines for key, if present.
func (c *Cache) Get(key string) ([]string, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.lines, true
}

// Put inserts or refreshes the cached lines for key, evicting the oldest
// entry first if the cache is at capacity.
func (c *Cache) Put(key string, lines []string) {
	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = entry{lines: lines}
}

// Clear empties the cache. Called on every mutating query, regardless of
// whether it succeeded.
func (c *Cache) Clear() {
	c.entries = make(map[string]entry)
	c.order = nil
}

// Len reports the number of cached entries.
func (c *Cache) Len() int { return len(c.entries) }
