// Package store bundles the Root Document and the Query Cache behind the
// single process-wide lock the spec requires: every query, read or write,
// acquires this lock for the entirety of its evaluation and releases it only
// after the result is fully computed, giving per-query atomicity and a total
// order over observable queries.
//
// This is the "global mutable state, injected as a handle" design note: the
// server and the optional cluster state machine (internal/cluster) are both
// constructed with an explicit *Store rather than reaching for package-level
// variables.
//
// The teacher's version of this package held a pluggable IStore abstraction
// over multiple swappable KVDB backends (see DESIGN.md's "Deleted teacher
// modules" for lib/db, dstore, and lstore, all superseded once Apocrypha's
// value model became a recursive Datum tree rather than a flat byte-slice
// key space). What survives from it is the shape: a typed Error with a
// RetCode, used here for the handful of store-level failures (as opposed to
// query syntax/semantic errors, which the engine package reports as plain
// errors, matching the original Python database's ValueError-per-bad-query
// convention).
package store
