// Package serve implements the "apocrypha serve" subcommand: it wires a
// store.Store, a persistence.Loop, and a tcp.Server together (plus, with
// --cluster, a Dragonboat replica in place of the plain store.Store) and
// runs until an interrupt or terminate signal triggers a graceful shutdown.
package serve
