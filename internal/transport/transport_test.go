package transport

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoHandler copies every byte back to the peer.
func echoHandler(conn net.Conn) {
	defer conn.Close()
	io.Copy(conn, conn)
}

// serveInBackground runs the endpoint's accept loop until cancel is
// called, then waits for it to return cleanly.
func serveInBackground(t *testing.T, ep Endpoint, handle Handler) (cancel func()) {
	t.Helper()

	ctx, stop := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, ep.Serve(ctx, handle))
	}()

	return func() {
		stop()
		wg.Wait()
	}
}

func TestTCPEndpoint(t *testing.T) {
	ep, err := ListenTCP("127.0.0.1:0")
	require.NoError(t, err)

	cancel := serveInBackground(t, ep, echoHandler)
	defer cancel()

	conn, err := net.Dial("tcp", ep.Addr())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)

	buf := make([]byte, 4)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
}

func TestTCPEndpoint_BindFailure(t *testing.T) {
	first, err := ListenTCP("127.0.0.1:0")
	require.NoError(t, err)
	defer first.Close()

	_, err = ListenTCP(first.Addr())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind tcp")
}

func TestUnixEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "X0")

	// A stale socket from a dead server must not block the bind
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	ep, err := ListenUnix(path)
	require.NoError(t, err)
	assert.Equal(t, path, ep.Addr())

	cancel := serveInBackground(t, ep, echoHandler)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)

	_, err = conn.Write([]byte("hello"))
	require.NoError(t, err)

	buf := make([]byte, 5)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	conn.Close()
	cancel()

	// Closing the listener unlinks the socket
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWSEndpoint(t *testing.T) {
	ep, err := ListenWS("127.0.0.1:0")
	require.NoError(t, err)

	cancel := serveInBackground(t, ep, echoHandler)
	defer cancel()

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+ep.Addr()+"/connect", nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, []byte("ping")))

	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), msg)
}

func TestWSStream_ReadSpansMessages(t *testing.T) {
	ep, err := ListenWS("127.0.0.1:0")
	require.NoError(t, err)

	// Reads four bytes regardless of message framing, then echoes them
	// back in one message.
	handler := func(conn net.Conn) {
		defer conn.Close()

		buf := make([]byte, 4)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		conn.Write(buf)
	}

	cancel := serveInBackground(t, ep, handler)
	defer cancel()

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+ep.Addr()+"/connect", nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, []byte("pi")))
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, []byte("ng")))

	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), msg)
}

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		host   string
		want   bool
	}{
		{"no origin header", "", "example.com:8080", true},
		{"localhost", "http://localhost:3000", "example.com:8080", true},
		{"loopback", "http://127.0.0.1:3000", "example.com:8080", true},
		{"same host", "https://example.com:8080", "example.com:8080", true},
		{"foreign host", "https://evil.test", "example.com:8080", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAllowedOrigin(tt.origin, tt.host))
		})
	}
}
