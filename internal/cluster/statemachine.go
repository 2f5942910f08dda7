package cluster

import (
	"fmt"
	"io"

	"github.com/ValentinKolb/apocrypha/internal/cluster/internal"
	"github.com/ValentinKolb/apocrypha/lib/document"
	"github.com/ValentinKolb/apocrypha/lib/engine"
	"github.com/ValentinKolb/apocrypha/lib/store"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

// QueryResult is what Lookup returns for a read-only query routed through
// Dragonboat's linearizable-read path (NodeHost.SyncRead never leaves the
// process, so this never needs to be serialized).
type QueryResult struct {
	Lines []string
	Err   string
}

// StateMachine replicates an Apocrypha document across a Dragonboat shard.
// Every replica keeps its own *store.Store; writes arrive through the raft
// log via Update, reads can either go through Update too (for linearizable
// reads across the whole shard) or through Lookup on a single replica's
// local state when eventual consistency is acceptable. Grounded on the
// teacher's KVStateMachine (lib/store/dstore/statemachine.go), simplified to
// a single store.Store instead of a pluggable db.KVDB.
type StateMachine struct {
	replicaID uint64
	shardID   uint64
	store     *store.Store
}

// Factory returns a dragonboat state machine constructor bound to newDoc,
// which is invoked once per shard replica to produce that replica's starting
// document (normally document.New, or a loader that reads a seed file).
func Factory(newDoc func() *document.Document, cacheSize int) func(shardID, replicaID uint64) sm.IStateMachine {
	return func(shardID, replicaID uint64) sm.IStateMachine {
		return &StateMachine{
			replicaID: replicaID,
			shardID:   shardID,
			store:     store.New(newDoc(), cacheSize),
		}
	}
}

// Update applies one replicated query to the local store.
func (fsm *StateMachine) Update(entry sm.Entry) (sm.Result, error) {
	if len(entry.Cmd) == 0 {
		return sm.Result{Value: uint64(store.RetCBadArchive), Data: []byte("empty command")}, nil
	}

	var cmd internal.Command
	if err := cmd.Deserialize(entry.Cmd); err != nil {
		return sm.Result{Value: uint64(store.RetCBadArchive), Data: []byte(err.Error())}, nil
	}

	lines, err := fsm.store.Query(cmd.Tokens, engine.Options{AddContext: cmd.AddContext, Strict: cmd.Strict})
	if err != nil {
		return sm.Result{Value: uint64(store.RetCIOError), Data: []byte(err.Error())}, nil
	}
	return sm.Result{Value: uint64(store.RetCSuccess), Data: []byte(joinLines(lines))}, nil
}

// Lookup serves a read-only query from this replica's local state without
// going through the raft log.
func (fsm *StateMachine) Lookup(i interface{}) (interface{}, error) {
	cmd, ok := i.(internal.Command)
	if !ok {
		return nil, fmt.Errorf("cluster: invalid lookup type %T", i)
	}
	lines, err := fsm.store.Query(cmd.Tokens, engine.Options{AddContext: cmd.AddContext, Strict: cmd.Strict})
	if err != nil {
		return QueryResult{Err: err.Error()}, nil
	}
	return QueryResult{Lines: lines}, nil
}

// PrepareSnapshot is a no-op: the store's document is small enough that a
// fuzzy, not-prepared snapshot is acceptable, matching the teacher's dstore.
func (fsm *StateMachine) PrepareSnapshot() (interface{}, error) {
	return nil, nil
}

// SaveSnapshot writes the current document as JSON, reusing the exact
// on-disk format lib/persistence uses for single-node mode.
func (fsm *StateMachine) SaveSnapshot(w io.Writer, _ sm.ISnapshotFileCollection, _ <-chan struct{}) error {
	data, _, err := fsm.store.SnapshotIfDirty()
	if err != nil {
		return err
	}
	if data == nil {
		// Nothing dirty: snapshot the current (clean) state directly so a
		// freshly started, never-mutated replica still produces a valid
		// snapshot on demand.
		data, err = fsm.store.ForceSnapshot()
		if err != nil {
			return err
		}
	}
	_, err = w.Write(data)
	return err
}

// RecoverFromSnapshot replaces the local document with one read from r.
func (fsm *StateMachine) RecoverFromSnapshot(r io.Reader, _ []sm.SnapshotFile, _ <-chan struct{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	doc, err := document.FromJSON(data)
	if err != nil {
		return err
	}
	fsm.store = store.New(doc, 0)
	return nil
}

// Close performs no cleanup: the store holds no file handles or goroutines
// of its own.
func (fsm *StateMachine) Close() error {
	return nil
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
