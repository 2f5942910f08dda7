package tcp

import (
	"fmt"
	"net"
	"time"

	"github.com/ValentinKolb/apocrypha/rpc/common"
	"github.com/ValentinKolb/apocrypha/rpc/transport"
)

// Client is a single TCP connection to an Apocrypha server, used by the CLI
// for its one-shot query/response exchanges. Grounded on the teacher's
// rpc/transport/base client, stripped of connection pooling, round robin,
// and retry/backoff: those exist in the teacher to spread load and survive
// individual node failures across a RAFT cluster's multiple endpoints; the
// CLI talks to exactly one server address per invocation and exits after one
// exchange, so there is nothing to pool or round-robin over.
type Client struct {
	conn   net.Conn
	config common.ClientConfig
}

// Dial connects to the server at config.Addr().
func Dial(config common.ClientConfig) (*Client, error) {
	conn, err := net.DialTimeout("tcp", config.Addr(), config.Timeout())
	if err != nil {
		return nil, fmt.Errorf("tcp: dial %s: %w", config.Addr(), err)
	}
	return &Client{conn: conn, config: config}, nil
}

// Send writes req as one frame and returns the response frame's payload.
func (c *Client) Send(req []byte) ([]byte, error) {
	if timeout := c.config.Timeout(); timeout > 0 {
		c.conn.SetDeadline(time.Now().Add(timeout))
	}
	if err := transport.WriteFrame(c.conn, req); err != nil {
		return nil, fmt.Errorf("tcp: write request: %w", err)
	}
	resp, err := transport.ReadFrame(c.conn)
	if err != nil {
		return nil, fmt.Errorf("tcp: read response: %w", err)
	}
	return resp, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
