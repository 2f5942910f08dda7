// Package common holds the pieces every transport and command shares:
// ServerConfig/ClientConfig, a small leveled Logger (plus a Dragonboat
// logger.ILogger adapter for cluster mode), and request.go's parsing of the
// -c/-s request-level flags off the front of a token list.
package common
