package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ValentinKolb/apocrypha/metrics"
)

// DefaultInterval is the flush interval used when a server is not configured
// with an explicit one (spec.md §4.3's one-second default).
const DefaultInterval = time.Second

// Logger is the minimal leveled-logging surface the loop needs. Satisfied by
// *common.Logger (rpc/common) in production and by testing.T-backed stubs in
// tests.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Source is what the loop pulls a snapshot from. lib/store's *Store
// implements it; the loop never reaches past this interface into the query
// engine or the Datum tree itself.
type Source interface {
	// SnapshotIfDirty takes the process lock, and if the document has
	// unflushed mutations, serializes it to JSON, clears the dirty flag, and
	// returns the bytes with ok=true. Returns ok=false when there was
	// nothing to flush.
	SnapshotIfDirty() (data []byte, ok bool, err error)

	// MarkDirty restores the dirty flag after a snapshot this loop already
	// took failed to reach disk, so the next tick retries instead of losing
	// the flush (spec.md §4.3 step 4, §7's PersistenceError taxonomy).
	MarkDirty()
}

// Loop is the write-behind flush task: on each tick it asks src for a
// snapshot and, if one is due, writes it to path via a temp-file-plus-rename
// so a reader never observes a partial write.
type Loop struct {
	src      Source
	path     string
	interval time.Duration
	log      Logger
}

// New constructs a Loop. interval <= 0 means DefaultInterval.
func New(src Source, path string, interval time.Duration, log Logger) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{src: src, path: path, interval: interval, log: log}
}

// Run blocks, flushing on every tick, until ctx-like stop is closed. A final
// flush is attempted after stop fires regardless of the tick schedule, so a
// graceful shutdown never drops the last batch of writes.
func (l *Loop) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.tick()
		case <-stop:
			l.tick()
			return
		}
	}
}

func (l *Loop) tick() {
	start := time.Now()
	data, ok, err := l.src.SnapshotIfDirty()
	if err != nil {
		metrics.RecordFlush(time.Since(start), err)
		l.log.Errorf("persistence: snapshot failed: %v", err)
		return
	}
	if !ok {
		return
	}
	if err := l.writeAtomic(data); err != nil {
		l.src.MarkDirty()
		metrics.RecordFlush(time.Since(start), err)
		l.log.Errorf("persistence: write to %s failed: %v", l.path, err)
		return
	}
	metrics.RecordFlush(time.Since(start), nil)
	l.log.Infof("persistence: flushed %d bytes to %s", len(data), l.path)
}

// writeAtomic writes data to a temp file in the same directory as l.path,
// fsyncs it, and renames it over l.path - the rename is atomic on the same
// filesystem, so a crash mid-write never leaves a truncated or partial file
// at the target path. Grounded on the original database's _writer, which
// writes to "<path>.tmp" before os.replace-ing over the target.
func (l *Loop) writeAtomic(data []byte) error {
	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("fsyncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Flush performs a single synchronous snapshot-and-write, bypassing the
// ticker. Used by the serve command on shutdown.
func (l *Loop) Flush() error {
	data, ok, err := l.src.SnapshotIfDirty()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := l.writeAtomic(data); err != nil {
		l.src.MarkDirty()
		return err
	}
	return nil
}
