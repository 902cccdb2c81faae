package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rcarmo/xds/internal/logging"
)

const (
	webSocketReadBufferSize  = 8192
	webSocketWriteBufferSize = 8192 * 2
)

// WSEndpoint bridges WebSocket clients onto the protocol byte stream.
// Browsers connect to ws://<addr>/connect and speak the wire format in
// binary messages; message boundaries carry no meaning.
type WSEndpoint struct {
	server   *http.Server
	listener net.Listener
	handle   Handler
}

// ListenWS binds the HTTP listener that carries the WebSocket bridge.
func ListenWS(addr string) (*WSEndpoint, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind websocket %s: %w", addr, err)
	}

	e := &WSEndpoint{listener: l}

	mux := http.NewServeMux()
	mux.HandleFunc("/connect", e.connect)

	e.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return e, nil
}

// Name implements Endpoint.
func (e *WSEndpoint) Name() string { return "websocket" }

// Addr implements Endpoint.
func (e *WSEndpoint) Addr() string { return e.listener.Addr().String() }

// Serve implements Endpoint.
func (e *WSEndpoint) Serve(ctx context.Context, handle Handler) error {
	e.handle = handle

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			e.server.Close()
		case <-done:
		}
	}()

	err := e.server.Serve(e.listener)
	if errors.Is(err, http.ErrServerClosed) || ctx.Err() != nil {
		return nil
	}

	return err
}

// Close implements Endpoint.
func (e *WSEndpoint) Close() error { return e.server.Close() }

func (e *WSEndpoint) connect(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  webSocketReadBufferSize,
		WriteBufferSize: webSocketWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return isAllowedOrigin(r.Header.Get("Origin"), r.Host)
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade from %s: %v", r.RemoteAddr, err)

		return
	}

	logging.Debug("websocket: accepted %s", wsConn.RemoteAddr())

	// The handler owns the connection from here and closes it.
	e.handle(newWSStream(wsConn))
}

// isAllowedOrigin accepts non-browser clients (no Origin header),
// requests from the listener's own host, and localhost origins.
func isAllowedOrigin(origin, host string) bool {
	if origin == "" {
		return true
	}

	normalized := strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://")
	normalized = strings.TrimSuffix(normalized, "/")

	if strings.HasPrefix(normalized, "localhost") || strings.HasPrefix(normalized, "127.0.0.1") {
		return true
	}

	return normalized == host
}

// wsStream adapts a WebSocket connection to net.Conn. Reads drain
// binary messages in order; writes emit one binary message per call.
type wsStream struct {
	ws     *websocket.Conn
	reader io.Reader
}

func newWSStream(ws *websocket.Conn) *wsStream {
	return &wsStream{ws: ws}
}

func (c *wsStream) Read(p []byte) (int, error) {
	for {
		if c.reader == nil {
			msgType, r, err := c.ws.NextReader()
			if err != nil {
				return 0, translateCloseError(err)
			}

			if msgType != websocket.BinaryMessage {
				continue
			}

			c.reader = r
		}

		n, err := c.reader.Read(p)
		if err == io.EOF {
			// Message exhausted, move on to the next one
			c.reader = nil
			if n == 0 {
				continue
			}

			return n, nil
		}

		return n, err
	}
}

func (c *wsStream) Write(p []byte) (int, error) {
	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, translateCloseError(err)
	}

	return len(p), nil
}

func (c *wsStream) Close() error { return c.ws.Close() }

func (c *wsStream) LocalAddr() net.Addr  { return c.ws.LocalAddr() }
func (c *wsStream) RemoteAddr() net.Addr { return c.ws.RemoteAddr() }

func (c *wsStream) SetDeadline(t time.Time) error {
	if err := c.ws.SetReadDeadline(t); err != nil {
		return err
	}

	return c.ws.SetWriteDeadline(t)
}

func (c *wsStream) SetReadDeadline(t time.Time) error  { return c.ws.SetReadDeadline(t) }
func (c *wsStream) SetWriteDeadline(t time.Time) error { return c.ws.SetWriteDeadline(t) }

// translateCloseError maps clean WebSocket shutdown onto io.EOF so the
// read loop treats it like any other disconnect.
func translateCloseError(err error) error {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return io.EOF
	}

	return err
}
