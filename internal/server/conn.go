package server

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/rcarmo/xds/internal/logging"
	"github.com/rcarmo/xds/internal/protocol/wire"
	"github.com/rcarmo/xds/internal/protocol/xproto"
)

const (
	readBufferSize   = 64 * 1024
	requestHeaderLen = 4
)

// client is one accepted connection. The byte order and emitter are
// populated during the handshake; everything after speaks that order.
type client struct {
	id     uint32
	conn   net.Conn
	reader *bufio.Reader
	order  binary.ByteOrder
	emit   *emitter
	seq    sequencer
	remote string
}

// handleConn owns one accepted connection for its whole life: handshake,
// request loop, teardown. It is the handler every transport endpoint
// feeds connections into.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	c := &client{
		id:     s.nextClientID.Add(1),
		conn:   conn,
		reader: bufio.NewReaderSize(conn, readBufferSize),
		remote: conn.RemoteAddr().String(),
	}

	// Unblock the read loop when the server shuts down.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	if err := s.setup(c); err != nil {
		logging.Warn("server: handshake with %s failed: %v", c.remote, err)
		return
	}

	s.metrics.ConnOpened()
	s.syncResourceGauges()
	logging.Info("server: client %d connected from %s", c.id, c.remote)

	defer func() {
		released := s.registry.ReleaseAll(c.id)
		s.active.Add(-1)
		s.metrics.ConnClosed()
		s.syncResourceGauges()
		logging.Info("server: client %d disconnected, released %d resources", c.id, released)
	}()

	if err := s.serveRequests(ctx, c); err != nil {
		logging.Warn("server: client %d: %v", c.id, err)
	}
}

// serveRequests runs the post-handshake request loop until the peer
// disconnects or a framing violation forces the connection closed.
func (s *Server) serveRequests(ctx context.Context, c *client) error {
	header := make([]byte, requestHeaderLen)

	for {
		if _, err := io.ReadFull(c.reader, header); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read request header: %w", err)
		}

		units := int(c.order.Uint16(header[2:4]))
		if units == 0 {
			return fmt.Errorf("opcode %d declares zero length: %w", header[0], wire.ErrMalformed)
		}

		frame := make([]byte, units*4)
		copy(frame, header)
		if _, err := io.ReadFull(c.reader, frame[requestHeaderLen:]); err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read request body: %w", err)
		}

		req, _, err := xproto.DecodeRequest(frame, c.order)
		if err != nil {
			return fmt.Errorf("opcode %d: %w", frame[0], err)
		}

		seq := c.seq.next()
		out := s.dispatch(ctx, c, req)

		if err := c.emit.sendBatch(seq, out.reply, out.err, out.events); err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("write response: %w", err)
		}
	}
}
