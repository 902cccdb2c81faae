package xproto

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rcarmo/xds/internal/protocol/wire"
)

// ProtocolMajor is the protocol generation this server speaks. A setup
// request with any other major version is refused; minor versions are
// tolerated.
const (
	ProtocolMajor uint16 = 11
	ProtocolMinor uint16 = 0
)

// Setup reply status byte.
const (
	SetupStatusFailure uint8 = 0
	SetupStatusSuccess uint8 = 1
)

const setupRequestFixedLen = 12

// SetupRequest is the first frame on every connection. Its leading byte is
// the byte-order marker; all integers that follow, on this and every later
// frame, use that order.
type SetupRequest struct {
	OrderMarker   uint8
	ProtocolMajor uint16
	ProtocolMinor uint16
	AuthName      string
	AuthData      []byte
}

// ReadSetupRequest consumes the setup request from the stream and resolves
// the negotiated byte order. An unrecognized order marker is returned as
// wire.ErrUnknownOrderMarker with the fixed header already consumed, so the
// caller can still emit a failure reply (encoded big-endian by convention).
func ReadSetupRequest(r io.Reader) (*SetupRequest, binary.ByteOrder, error) {
	fixed := make([]byte, setupRequestFixedLen)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, nil, err
	}

	order, err := wire.Order(fixed[0])
	if err != nil {
		return nil, nil, err
	}

	req := &SetupRequest{
		OrderMarker:   fixed[0],
		ProtocolMajor: order.Uint16(fixed[2:4]),
		ProtocolMinor: order.Uint16(fixed[4:6]),
	}

	nameLen := int(order.Uint16(fixed[6:8]))
	dataLen := int(order.Uint16(fixed[8:10]))

	name, err := wire.ReadPadded(r, nameLen)
	if err != nil {
		return nil, nil, fmt.Errorf("auth name: %w", err)
	}
	req.AuthName = string(name)

	if req.AuthData, err = wire.ReadPadded(r, dataLen); err != nil {
		return nil, nil, fmt.Errorf("auth data: %w", err)
	}

	return req, order, nil
}

// Serialize encodes the setup request. The byte order is taken from the
// request's own marker so the encoded header is self-describing.
func (req *SetupRequest) Serialize() ([]byte, error) {
	order, err := wire.Order(req.OrderMarker)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)

	buf.WriteByte(req.OrderMarker)
	buf.WriteByte(0) // padding
	_ = binary.Write(buf, order, req.ProtocolMajor)
	_ = binary.Write(buf, order, req.ProtocolMinor)
	_ = binary.Write(buf, order, uint16(len(req.AuthName))) // #nosec G115
	_ = binary.Write(buf, order, uint16(len(req.AuthData))) // #nosec G115
	_ = binary.Write(buf, order, uint16(0))                 // padding

	_ = wire.WritePadded(buf, []byte(req.AuthName))
	_ = wire.WritePadded(buf, req.AuthData)

	return buf.Bytes(), nil
}

// SetupSuccess is the handshake acceptance reply carrying the connection's
// resource-id grant, the root window, and vendor metadata.
type SetupSuccess struct {
	ProtocolMajor  uint16
	ProtocolMinor  uint16
	ResourceIDBase uint32
	ResourceIDMask uint32
	RootWindow     uint32
	Vendor         string
}

// Serialize encodes the success reply in the negotiated byte order.
func (rep *SetupSuccess) Serialize(order binary.ByteOrder) []byte {
	vendorPadded := wire.PaddedLen(len(rep.Vendor))
	replyLength := (16 + vendorPadded) / 4

	buf := new(bytes.Buffer)

	buf.WriteByte(SetupStatusSuccess)
	buf.WriteByte(0) // padding
	_ = binary.Write(buf, order, rep.ProtocolMajor)
	_ = binary.Write(buf, order, rep.ProtocolMinor)
	_ = binary.Write(buf, order, uint16(replyLength)) // #nosec G115
	_ = binary.Write(buf, order, rep.ResourceIDBase)
	_ = binary.Write(buf, order, rep.ResourceIDMask)
	_ = binary.Write(buf, order, uint16(len(rep.Vendor))) // #nosec G115
	_ = binary.Write(buf, order, uint16(0))               // padding
	_ = binary.Write(buf, order, rep.RootWindow)
	_ = wire.WritePadded(buf, []byte(rep.Vendor))

	return buf.Bytes()
}

// Deserialize decodes the variable part of a success reply. The caller has
// consumed the 8-byte prologue and hands over its fields.
func (rep *SetupSuccess) Deserialize(r io.Reader, order binary.ByteOrder) error {
	var vendorLen, pad uint16

	for _, field := range []any{&rep.ResourceIDBase, &rep.ResourceIDMask, &vendorLen, &pad, &rep.RootWindow} {
		if err := binary.Read(r, order, field); err != nil {
			return err
		}
	}

	vendor, err := wire.ReadString(r, int(vendorLen))
	if err != nil {
		return err
	}
	rep.Vendor = vendor

	return nil
}

// SetupFailure is the handshake refusal reply. The connection closes after
// it is written.
type SetupFailure struct {
	ProtocolMajor uint16
	ProtocolMinor uint16
	Reason        string
}

// Serialize encodes the failure reply.
func (rep *SetupFailure) Serialize(order binary.ByteOrder) []byte {
	reason := rep.Reason
	if len(reason) > 255 {
		reason = reason[:255]
	}

	buf := new(bytes.Buffer)

	buf.WriteByte(SetupStatusFailure)
	buf.WriteByte(uint8(len(reason))) // #nosec G115
	_ = binary.Write(buf, order, rep.ProtocolMajor)
	_ = binary.Write(buf, order, rep.ProtocolMinor)
	_ = binary.Write(buf, order, uint16(wire.PaddedLen(len(reason))/4)) // #nosec G115
	_ = wire.WritePadded(buf, []byte(reason))

	return buf.Bytes()
}

// SetupReply is the decoded form of either handshake outcome, as seen by a
// client.
type SetupReply struct {
	Status  uint8
	Success *SetupSuccess
	Failure *SetupFailure
}

// ReadSetupReply decodes a setup reply from the stream.
func ReadSetupReply(r io.Reader, order binary.ByteOrder) (*SetupReply, error) {
	prologue := make([]byte, 8)
	if _, err := io.ReadFull(r, prologue); err != nil {
		return nil, err
	}

	reply := &SetupReply{Status: prologue[0]}
	major := order.Uint16(prologue[2:4])
	minor := order.Uint16(prologue[4:6])

	rest := make([]byte, int(order.Uint16(prologue[6:8]))*4)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, err
	}
	body := bytes.NewReader(rest)

	switch reply.Status {
	case SetupStatusSuccess:
		reply.Success = &SetupSuccess{ProtocolMajor: major, ProtocolMinor: minor}
		if err := reply.Success.Deserialize(body, order); err != nil {
			return nil, err
		}
	case SetupStatusFailure:
		reason, err := wire.ReadString(body, int(prologue[1]))
		if err != nil {
			return nil, err
		}
		reply.Failure = &SetupFailure{ProtocolMajor: major, ProtocolMinor: minor, Reason: reason}
	default:
		return nil, fmt.Errorf("setup reply status %d: %w", reply.Status, wire.ErrMalformed)
	}

	return reply, nil
}
