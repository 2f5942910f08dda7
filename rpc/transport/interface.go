package transport

import "github.com/ValentinKolb/apocrypha/rpc/common"

// HandleFunc processes one request frame's payload and returns the response
// frame's payload. Unlike the teacher's ServerHandleFunc, it carries no
// shardID - Apocrypha's single-node server has exactly one store to route
// to, and cluster mode (internal/cluster) routes at the Dragonboat layer
// instead of at this one.
type HandleFunc func(req []byte) (resp []byte)

// Client is the interface a concrete transport's dialer returns, used by the
// query command to stay agnostic of which transport it dialed.
type Client interface {
	// Send writes req as one frame and returns the response frame's payload.
	Send(req []byte) ([]byte, error)
	Close() error
}

// Server is the interface a concrete transport (tcp or unix) implements.
type Server interface {
	// RegisterHandler sets the function invoked for each request frame.
	RegisterHandler(handler HandleFunc)
	// Serve blocks, accepting connections per config until the listener is
	// closed or Shutdown is called.
	Serve(config common.ServerConfig) error
	// Shutdown stops accepting new connections and waits for in-flight ones
	// to finish.
	Shutdown() error
	// ConnectionCount reports the number of currently open connections, for
	// the metrics package's open-connections gauge.
	ConnectionCount() int
}
