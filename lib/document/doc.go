// Package document holds the Root Document: the single mapping-typed Datum
// that is the entire database, plus the write-behind bookkeeping: a dirty
// flag, which the persistence loop checks before each flush, and a monotonic
// generation counter.
//
// Document itself does no locking - by design, callers (lib/store) hold one
// process-wide lock around every read of or mutation to a Document, so the
// type here is a plain, single-threaded data structure.
package document
