// Package unix implements Apocrypha's transport over a Unix domain socket,
// for clients running on the same host as the server. Same framing and
// request/response contract as rpc/transport/tcp, only the listener and
// dialer differ.
//
// Grounded on the teacher's rpc/transport/unix, which plugged a
// serverConnector/clientConnector pair into the shared rpc/transport/base
// pooled-pipelined transport. Apocrypha collapsed base+tcp into one package
// (see rpc/transport/tcp's doc comment), so this package mirrors that
// collapse rather than plugging into a connector abstraction that no longer
// exists.
package unix
