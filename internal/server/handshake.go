package server

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/rcarmo/xds/internal/logging"
	"github.com/rcarmo/xds/internal/protocol/wire"
	"github.com/rcarmo/xds/internal/protocol/xproto"
)

// Handshake failure labels for the metrics counter.
const (
	failRead        = "read"
	failOrderMarker = "order_marker"
	failVersion     = "version"
	failAuth        = "auth"
	failLimit       = "client_limit"
	failSlots       = "id_slots"
)

// setup runs the handshake: read the setup request, negotiate the byte
// order, screen the client, grant its resource-id range, and send the
// acceptance. On refusal the failure reply has already been written and
// the returned error says why. On success the connection holds a client
// slot and an id range; teardown releases both.
func (s *Server) setup(c *client) error {
	if d := s.cfg.Transport.HandshakeTimeout; d > 0 {
		_ = c.conn.SetDeadline(time.Now().Add(d))
		defer func() { _ = c.conn.SetDeadline(time.Time{}) }()
	}

	req, order, err := xproto.ReadSetupRequest(c.reader)
	if err != nil {
		if errors.Is(err, wire.ErrUnknownOrderMarker) {
			// No byte order was negotiated, so the refusal is encoded
			// big-endian by convention.
			s.refuse(c, binary.BigEndian, "unsupported byte-order marker", failOrderMarker)
			return err
		}

		s.metrics.HandshakeFailed(failRead)
		return fmt.Errorf("read setup request: %w", err)
	}

	c.order = order
	c.emit = newEmitter(c.conn, order)

	if req.ProtocolMajor != xproto.ProtocolMajor {
		reason := fmt.Sprintf("protocol version %d.%d not supported", req.ProtocolMajor, req.ProtocolMinor)
		s.refuse(c, order, reason, failVersion)
		return errors.New(reason)
	}

	if err := s.policy.Authorize(req.AuthName, req.AuthData); err != nil {
		s.refuse(c, order, "authorization failed", failAuth)
		return err
	}

	if !s.admitOne() {
		s.refuse(c, order, "maximum number of clients reached", failLimit)
		return fmt.Errorf("connection limit %d reached", s.cfg.Transport.MaxConnections)
	}

	rng, err := s.registry.GrantRange(c.id)
	if err != nil {
		s.active.Add(-1)
		s.refuse(c, order, "maximum number of clients reached", failSlots)
		return fmt.Errorf("grant resource-id range: %w", err)
	}

	accept := &xproto.SetupSuccess{
		ProtocolMajor:  xproto.ProtocolMajor,
		ProtocolMinor:  xproto.ProtocolMinor,
		ResourceIDBase: rng.Base,
		ResourceIDMask: rng.Mask,
		RootWindow:     uint32(s.registry.Root()),
		Vendor:         s.cfg.Display.Vendor,
	}

	if err := c.emit.sendRaw(accept.Serialize(order)); err != nil {
		s.registry.ReleaseAll(c.id)
		s.active.Add(-1)
		return fmt.Errorf("write setup reply: %w", err)
	}

	return nil
}

// refuse answers the handshake with a failure reply. The caller tears the
// connection down afterwards.
func (s *Server) refuse(c *client, order binary.ByteOrder, reason, label string) {
	s.metrics.HandshakeFailed(label)

	failure := &xproto.SetupFailure{
		ProtocolMajor: xproto.ProtocolMajor,
		ProtocolMinor: xproto.ProtocolMinor,
		Reason:        reason,
	}

	if _, err := c.conn.Write(failure.Serialize(order)); err != nil {
		logging.Debug("server: refusal reply to %s: %v", c.remote, err)
	}
}

// admitOne reserves a connection slot, failing once the configured limit
// is reached. Nonpositive limits admit everyone.
func (s *Server) admitOne() bool {
	limit := int32(s.cfg.Transport.MaxConnections)

	for {
		n := s.active.Load()
		if limit > 0 && n >= limit {
			return false
		}
		if s.active.CompareAndSwap(n, n+1) {
			return true
		}
	}
}
