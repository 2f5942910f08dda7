// Package rpc is the communication layer between an Apocrypha client and
// server: a fixed, spec-literal wire protocol rather than the pluggable
// transport/serializer framework the teacher built for its multi-interface
// KV/lock RPC system.
//
// The package is organized into subpackages:
//
//   - common: ServerConfig/ClientConfig, the leveled Logger, and
//     request.go's -c/-s request-flag parsing.
//
//   - transport: the length-prefixed frame format and token/line codecs
//     every concrete transport shares.
//
//   - transport/tcp, transport/unix: the two concrete transports, chosen
//     by the serve/query commands via --socket.
package rpc
