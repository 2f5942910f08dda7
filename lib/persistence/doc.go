// Package persistence implements the write-behind flush loop: a long-lived
// goroutine that periodically snapshots a dirty document to disk.
//
// Modeled on the original Python database's writer thread (original_source's
// database.py _writer method): sleep, check dirty under the lock, snapshot,
// release the lock, write the snapshot to disk outside of it. The loop never
// calls into the query engine - it only needs the dirty signal and a way to
// take a snapshot, both of which lib/store exposes directly so this package
// stays decoupled from lib/engine entirely.
package persistence
