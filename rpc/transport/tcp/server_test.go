package tcp

import (
	"net"
	"testing"
	"time"

	"github.com/ValentinKolb/apocrypha/rpc/common"
	"github.com/ValentinKolb/apocrypha/rpc/transport"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("finding a free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestServeEchoesHandlerResponse(t *testing.T) {
	port := freePort(t)
	log := common.New("test", common.LevelError)
	srv := New(log)
	srv.RegisterHandler(func(req []byte) []byte {
		return append([]byte("echo:"), req...)
	})

	cfg := common.ServerConfig{Host: "127.0.0.1", Port: port}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(cfg) }()

	deadline := time.Now().Add(2 * time.Second)
	var conn net.Conn
	var err error
	for time.Now().Before(deadline) {
		conn, err = net.Dial("tcp", cfg.Addr())
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dialing server: %v", err)
	}
	defer conn.Close()

	if err := transport.WriteFrame(conn, []byte("ping")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	resp, err := transport.ReadFrame(conn)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(resp) != "echo:ping" {
		t.Fatalf("got %q", resp)
	}

	if got := srv.ConnectionCount(); got != 1 {
		t.Fatalf("ConnectionCount: got %d, want 1", got)
	}

	if err := srv.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := <-serveErr; err != nil {
		t.Fatalf("Serve: %v", err)
	}
}

func TestClientSendRoundTrip(t *testing.T) {
	port := freePort(t)
	log := common.New("test", common.LevelError)
	srv := New(log)
	srv.RegisterHandler(func(req []byte) []byte {
		return []byte("got:" + string(req))
	})

	cfg := common.ServerConfig{Host: "127.0.0.1", Port: port}
	go srv.Serve(cfg)
	defer srv.Shutdown()

	clientCfg := common.ClientConfig{Host: "127.0.0.1", Port: port, TimeoutSecond: 2}

	var client *Client
	var err error
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		client, err = Dial(clientCfg)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	resp, err := client.Send([]byte("hello"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if string(resp) != "got:hello" {
		t.Fatalf("got %q", resp)
	}
}
