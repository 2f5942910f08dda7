// Package query implements the "apocrypha query" subcommand: a one-shot
// client that dials a running server, sends a single tokenized request, and
// prints the response lines.
package query
