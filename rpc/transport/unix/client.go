package unix

import (
	"fmt"
	"net"
	"time"

	"github.com/ValentinKolb/apocrypha/rpc/common"
	"github.com/ValentinKolb/apocrypha/rpc/transport"
)

// Client is a single Unix-domain-socket connection to an Apocrypha server.
// config.ClientConfig's Host/Port are unused here; SocketPath carries the
// path instead, set via common.ClientConfig.SocketPath.
type Client struct {
	conn   net.Conn
	config common.ClientConfig
}

// Dial connects to the server listening on config.SocketPath.
func Dial(config common.ClientConfig) (*Client, error) {
	conn, err := net.DialTimeout("unix", config.SocketPath, config.Timeout())
	if err != nil {
		return nil, fmt.Errorf("unix: dial %s: %w", config.SocketPath, err)
	}
	return &Client{conn: conn, config: config}, nil
}

// Send writes req as one frame and returns the response frame's payload.
func (c *Client) Send(req []byte) ([]byte, error) {
	if timeout := c.config.Timeout(); timeout > 0 {
		c.conn.SetDeadline(time.Now().Add(timeout))
	}
	if err := transport.WriteFrame(c.conn, req); err != nil {
		return nil, fmt.Errorf("unix: write request: %w", err)
	}
	resp, err := transport.ReadFrame(c.conn)
	if err != nil {
		return nil, fmt.Errorf("unix: read response: %w", err)
	}
	return resp, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
