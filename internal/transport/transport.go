// Package transport provides the listeners a display server accepts
// clients on: TCP, Unix socket, and a WebSocket bridge. Every endpoint
// binds at construction so misconfigured addresses surface before the
// server starts serving, then hands accepted byte streams to a single
// connection handler.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rcarmo/xds/internal/logging"
)

// Handler consumes one accepted client connection. It owns the
// connection and must close it.
type Handler func(conn net.Conn)

// Endpoint is one way clients reach the display.
type Endpoint interface {
	// Name identifies the endpoint in logs.
	Name() string

	// Addr returns the bound listen address.
	Addr() string

	// Serve accepts clients and hands each one to handle until ctx is
	// cancelled or the listener fails.
	Serve(ctx context.Context, handle Handler) error

	// Close unblocks Serve.
	Close() error
}

// serveListener runs the shared accept loop. Cancelling ctx closes the
// listener, which unblocks Accept.
func serveListener(ctx context.Context, l net.Listener, name string, handle Handler) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			l.Close()
		case <-done:
		}
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("listener %s closed: %w", name, err)
			}

			// A single failed accept does not take the listener down.
			logging.Warn("%s: accept: %v", name, err)
			continue
		}

		logging.Debug("%s: accepted %s", name, conn.RemoteAddr())
		go handle(conn)
	}
}
