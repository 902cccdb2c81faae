package transport

import (
	"context"
	"fmt"
	"net"
)

// TCPEndpoint accepts clients on the display's conventional TCP port.
type TCPEndpoint struct {
	listener net.Listener
}

// ListenTCP binds the TCP endpoint. The address is host:port, with the
// port already resolved from the display number.
func ListenTCP(addr string) (*TCPEndpoint, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind tcp %s: %w", addr, err)
	}

	return &TCPEndpoint{listener: l}, nil
}

// Name implements Endpoint.
func (e *TCPEndpoint) Name() string { return "tcp" }

// Addr implements Endpoint.
func (e *TCPEndpoint) Addr() string { return e.listener.Addr().String() }

// Serve implements Endpoint.
func (e *TCPEndpoint) Serve(ctx context.Context, handle Handler) error {
	return serveListener(ctx, e.listener, e.Name(), handle)
}

// Close implements Endpoint.
func (e *TCPEndpoint) Close() error { return e.listener.Close() }
