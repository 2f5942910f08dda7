// Package cache implements the query cache: a bounded map from a canonical
// token sequence to the output lines the engine produced for it. Only
// pure-read queries are inserted. Any mutating query clears the cache in
// full before it acknowledges completion - full invalidation on write is
// the cache's entire correctness argument, so eviction policy for staying
// under the configured size is arbitrary and, here, FIFO.
package cache
