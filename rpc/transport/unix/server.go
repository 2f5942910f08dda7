package unix

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/ValentinKolb/apocrypha/rpc/common"
	"github.com/ValentinKolb/apocrypha/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// Server listens on a Unix domain socket at config.SocketPath. Identical
// accept/handle loop to tcp.Server; only Serve's net.Listen call and the
// stale-socket cleanup differ, so see that package's doc comment for the
// framing and sequencing rationale.
type Server struct {
	handler transport.HandleFunc
	log     *common.Logger

	mu       sync.Mutex
	listener net.Listener
	path     string
	wg       sync.WaitGroup

	conns *xsync.MapOf[net.Conn, struct{}]
}

// New constructs a Server that logs through log.
func New(log *common.Logger) *Server {
	return &Server{
		log:   log,
		conns: xsync.NewMapOf[net.Conn, struct{}](),
	}
}

func (s *Server) RegisterHandler(handler transport.HandleFunc) {
	s.handler = handler
}

// Serve listens on config.SocketPath and blocks, accepting connections until
// Shutdown is called. A stale socket file left behind by a previous,
// uncleanly terminated process is removed first, matching the teacher's
// serverConnector.Listen.
func (s *Server) Serve(config common.ServerConfig) error {
	if config.SocketPath == "" {
		return fmt.Errorf("unix: SocketPath is required")
	}
	if err := os.RemoveAll(config.SocketPath); err != nil {
		return fmt.Errorf("unix: removing stale socket %s: %w", config.SocketPath, err)
	}

	ln, err := net.Listen("unix", config.SocketPath)
	if err != nil {
		return fmt.Errorf("unix: listen on %s: %w", config.SocketPath, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.path = config.SocketPath
	s.mu.Unlock()

	s.log.Infof("listening on unix:%s", config.SocketPath)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Errorf("accept: %v", err)
			continue
		}
		s.conns.Store(conn, struct{}{})
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// ConnectionCount reports the number of currently open connections, read by
// the metrics package.
func (s *Server) ConnectionCount() int {
	return s.conns.Size()
}

// Shutdown closes the listener, waits for in-flight connections to finish
// their current request, and removes the socket file.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	ln := s.listener
	path := s.path
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	err := ln.Close()
	// An expired read deadline ends each connection's wait for its next
	// request; a request already being handled still gets its response.
	s.conns.Range(func(conn net.Conn, _ struct{}) bool {
		_ = conn.SetReadDeadline(time.Now())
		return true
	})
	s.wg.Wait()
	if path != "" {
		_ = os.RemoveAll(path)
	}
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() {
		conn.Close()
		s.conns.Delete(conn)
		s.wg.Done()
	}()

	for {
		req, err := transport.ReadFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Debugf("connection: read frame: %v", err)
			}
			return
		}

		start := time.Now()
		resp := s.handler(req)
		s.log.Debugf("connection: handled request in %s", time.Since(start))

		if err := transport.WriteFrame(conn, resp); err != nil {
			s.log.Errorf("connection: write frame: %v", err)
			return
		}
	}
}
