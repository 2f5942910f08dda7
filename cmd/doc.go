// Package cmd implements the command-line interface for Apocrypha. It
// provides a hierarchical command structure with operations for running the
// server and sending one-shot queries to it.
//
// The package is organized into subpackages:
//
//   - serve: starts the Apocrypha server (store, persistence loop, TCP
//     transport, optional Dragonboat cluster mode, optional metrics)
//   - query: sends a single query to a running server and prints the result
//   - util: shared flag/config wiring (internal use)
//
// See apocrypha -help for the full command list.
package cmd
