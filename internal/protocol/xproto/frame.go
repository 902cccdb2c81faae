package xproto

import (
	"encoding/binary"
	"io"
)

// Frame kind, the first byte of every server-to-client frame after setup.
// Values 2..127 are event codes and identify the event directly.
const (
	kindError uint8 = 0
	kindReply uint8 = 1
)

// replyUnit is the fixed frame size. Errors and events are exactly one
// unit; replies carry a unit count for their overflow in the length field.
const replyUnit = 32

// FrameKind classifies a server-to-client frame by its leading byte.
type FrameKind uint8

const (
	FrameError FrameKind = FrameKind(kindError)
	FrameReply FrameKind = FrameKind(kindReply)
	FrameEvent FrameKind = 2 // any leading byte >= 2
)

// Kind returns the frame classification for a leading byte.
func Kind(first uint8) FrameKind {
	switch first {
	case kindError:
		return FrameError
	case kindReply:
		return FrameReply
	default:
		return FrameEvent
	}
}

// ReadFrame consumes one complete server-to-client frame: the fixed 32-byte
// unit plus, for replies, the overflow declared in the length field. Used by
// client-side codecs and tests.
func ReadFrame(r io.Reader, order binary.ByteOrder) ([]byte, error) {
	frame := make([]byte, replyUnit)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, err
	}

	if Kind(frame[0]) != FrameReply {
		return frame, nil
	}

	extra := int(order.Uint32(frame[4:8])) * 4
	if extra == 0 {
		return frame, nil
	}

	full := make([]byte, replyUnit+extra)
	copy(full, frame)
	if _, err := io.ReadFull(r, full[replyUnit:]); err != nil {
		return nil, err
	}

	return full, nil
}

// FrameSequence extracts the sequence field shared by every frame layout.
func FrameSequence(frame []byte, order binary.ByteOrder) uint16 {
	return order.Uint16(frame[2:4])
}
