// Package cluster adapts the Query Engine to Dragonboat's IStateMachine
// interface, giving Apocrypha an optional multi-node mode built on RAFT
// consensus - grounded on the teacher's dstore package (lib/store/dstore),
// which does the same for its KVDB backends.
//
// This is explicitly a secondary mode: spec.md scopes clustering out except
// where it touches the core engine's interface, and the default `serve`
// command never constructs a cluster.StateMachine. When --cluster is passed, every
// query still funnels through the same store.Store and engine.Evaluate used
// in single-node mode; Dragonboat only adds log replication and snapshotting
// around that existing entry point; it does not change Apocrypha's query
// semantics.
package cluster
