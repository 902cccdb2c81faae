package transport

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// UnixEndpoint accepts clients on the display's Unix socket.
type UnixEndpoint struct {
	listener net.Listener
	path     string
}

// ListenUnix binds the Unix socket endpoint. A stale socket left by a
// previous run is removed before binding; the parent directory is
// created if missing. The socket is world-connectable, matching the
// convention for shared socket directories.
func ListenUnix(path string) (*UnixEndpoint, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return nil, fmt.Errorf("create socket dir for %s: %w", path, err)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove stale socket %s: %w", path, err)
	}

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("bind unix %s: %w", path, err)
	}

	if err := os.Chmod(path, 0o777); err != nil {
		l.Close()
		return nil, fmt.Errorf("chmod socket %s: %w", path, err)
	}

	return &UnixEndpoint{listener: l, path: path}, nil
}

// Name implements Endpoint.
func (e *UnixEndpoint) Name() string { return "unix" }

// Addr implements Endpoint.
func (e *UnixEndpoint) Addr() string { return e.path }

// Serve implements Endpoint.
func (e *UnixEndpoint) Serve(ctx context.Context, handle Handler) error {
	return serveListener(ctx, e.listener, e.Name(), handle)
}

// Close implements Endpoint. The listener unlinks the socket file.
func (e *UnixEndpoint) Close() error { return e.listener.Close() }
