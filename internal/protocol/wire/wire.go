// Package wire provides the byte-order negotiation primitives and framing
// helpers shared by every layer of the display protocol. All multi-byte
// integers on the wire use the byte order announced by the client in its
// setup request; the helpers here thread that order explicitly so the codec
// layers stay stateless.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Byte-order markers carried in the first byte of the setup request.
const (
	// OrderMarkerBig 'B' selects big-endian integers.
	OrderMarkerBig uint8 = 0x42

	// OrderMarkerLittle 'l' selects little-endian integers.
	OrderMarkerLittle uint8 = 0x6C
)

var (
	// ErrShortFrame reports that the buffer does not yet hold a complete
	// frame. Callers should read more bytes and retry; it is not a protocol
	// violation.
	ErrShortFrame = errors.New("wire: incomplete frame")

	// ErrMalformed reports a framing violation: declared and actual lengths
	// disagree. The connection carrying the frame is unusable afterwards.
	ErrMalformed = errors.New("wire: malformed frame")

	// ErrUnknownOrderMarker reports a setup request whose first byte is
	// neither of the two recognized byte-order markers.
	ErrUnknownOrderMarker = errors.New("wire: unknown byte-order marker")
)

// Order maps a byte-order marker to the binary.ByteOrder used for the rest
// of that connection's lifetime.
func Order(marker uint8) (binary.ByteOrder, error) {
	switch marker {
	case OrderMarkerBig:
		return binary.BigEndian, nil
	case OrderMarkerLittle:
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownOrderMarker, marker)
	}
}

// Marker is the inverse of Order, used when echoing the negotiated order in
// diagnostics.
func Marker(order binary.ByteOrder) uint8 {
	if order == binary.BigEndian {
		return OrderMarkerBig
	}

	return OrderMarkerLittle
}

// Pad returns the number of zero bytes required to bring n up to a 4-byte
// boundary.
func Pad(n int) int {
	return (4 - n%4) % 4
}

// PaddedLen returns n rounded up to a 4-byte boundary.
func PaddedLen(n int) int {
	return n + Pad(n)
}

// WritePadded writes b followed by the zero padding that brings it to a
// 4-byte boundary.
func WritePadded(w io.Writer, b []byte) error {
	if _, err := w.Write(b); err != nil {
		return err
	}

	if pad := Pad(len(b)); pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return err
		}
	}

	return nil
}

// ReadPadded reads n bytes plus their 4-byte-boundary padding, returning the
// unpadded payload. A zero n returns nil.
func ReadPadded(r io.Reader, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}

	buf := make([]byte, PaddedLen(n))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	return buf[:n], nil
}

// ReadString reads a length-prefixed, padded byte string as produced by
// WritePadded and returns it as a string.
func ReadString(r io.Reader, n int) (string, error) {
	b, err := ReadPadded(r, n)
	if err != nil {
		return "", err
	}

	return string(b), nil
}
