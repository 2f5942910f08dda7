// Package tcp implements Apocrypha's default transport: a plain TCP listener
// that reads one length-prefixed request frame at a time per connection,
// evaluates it against a *store.Store, and writes back a length-prefixed
// response frame.
//
// Grounded on the teacher's rpc/transport/tcp + rpc/transport/base, which
// built a pooled, pipelined, shard-routing transport on top of a generic
// connector abstraction. Apocrypha needs none of that: there is one backend
// (a single *store.Store, or one per Dragonboat shard in cluster mode), no
// request pipelining within a connection (the client is a one-shot CLI or a
// script, never an async multiplexing driver), and handling is already
// bottlenecked by the store's own lock - so the connector/base-transport
// split collapses into this one package.
package tcp
