package xproto

import (
	"encoding/binary"
	"fmt"

	"github.com/rcarmo/xds/internal/protocol/wire"
)

// Reply is a serialized answer to a round-trip request. Every reply is one
// 32-byte unit plus length*4 bytes of overflow.
type Reply interface {
	Serialize(order binary.ByteOrder, sequence uint16) []byte
}

// newReply allocates a frame of 32+extra bytes with the common prologue
// filled in. extra must be a multiple of 4.
func newReply(order binary.ByteOrder, detail uint8, sequence uint16, extra int) []byte {
	buf := make([]byte, replyUnit+extra)
	buf[0] = kindReply
	buf[1] = detail
	order.PutUint16(buf[2:4], sequence)
	order.PutUint32(buf[4:8], uint32(extra/4)) // #nosec G115

	return buf
}

// GetGeometryReply reports a drawable's placement and size.
type GetGeometryReply struct {
	Depth       uint8
	Root        uint32
	X, Y        int16
	Width       uint16
	Height      uint16
	BorderWidth uint16
}

func (rep *GetGeometryReply) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	buf := newReply(order, rep.Depth, sequence, 0)
	order.PutUint32(buf[8:12], rep.Root)
	order.PutUint16(buf[12:14], uint16(rep.X)) // #nosec G115
	order.PutUint16(buf[14:16], uint16(rep.Y)) // #nosec G115
	order.PutUint16(buf[16:18], rep.Width)
	order.PutUint16(buf[18:20], rep.Height)
	order.PutUint16(buf[20:22], rep.BorderWidth)

	return buf
}

// QueryTreeReply lists a window's place in the hierarchy. Parent is zero for
// the root window. Children are in front-to-back stacking order.
type QueryTreeReply struct {
	Root     uint32
	Parent   uint32
	Children []uint32
}

func (rep *QueryTreeReply) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	buf := newReply(order, 0, sequence, 4*len(rep.Children))
	order.PutUint32(buf[8:12], rep.Root)
	order.PutUint32(buf[12:16], rep.Parent)
	order.PutUint16(buf[16:18], uint16(len(rep.Children))) // #nosec G115

	for i, child := range rep.Children {
		order.PutUint32(buf[replyUnit+4*i:], child)
	}

	return buf
}

// InternAtomReply carries the atom id for an interned name, or zero when the
// request asked only to probe an absent name.
type InternAtomReply struct {
	Atom uint32
}

func (rep *InternAtomReply) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	buf := newReply(order, 0, sequence, 0)
	order.PutUint32(buf[8:12], rep.Atom)

	return buf
}

// GetAtomNameReply carries the name string registered for an atom.
type GetAtomNameReply struct {
	Name string
}

func (rep *GetAtomNameReply) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	buf := newReply(order, 0, sequence, wire.PaddedLen(len(rep.Name)))
	order.PutUint16(buf[8:10], uint16(len(rep.Name))) // #nosec G115
	copy(buf[replyUnit:], rep.Name)

	return buf
}

// GetPropertyReply returns a window property's type, format, and as much of
// its value as the request's offset and length window selected. BytesAfter
// is what remains past that window. Format 0 with type None means the
// property does not exist.
type GetPropertyReply struct {
	Format     uint8
	Type       uint32
	BytesAfter uint32
	ValueLen   uint32
	Value      []byte
}

func (rep *GetPropertyReply) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	buf := newReply(order, rep.Format, sequence, wire.PaddedLen(len(rep.Value)))
	order.PutUint32(buf[8:12], rep.Type)
	order.PutUint32(buf[12:16], rep.BytesAfter)
	order.PutUint32(buf[16:20], rep.ValueLen)
	copy(buf[replyUnit:], rep.Value)

	return buf
}

// ListPropertiesReply enumerates the atoms naming a window's properties.
type ListPropertiesReply struct {
	Atoms []uint32
}

func (rep *ListPropertiesReply) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	buf := newReply(order, 0, sequence, 4*len(rep.Atoms))
	order.PutUint16(buf[8:10], uint16(len(rep.Atoms))) // #nosec G115

	for i, atom := range rep.Atoms {
		order.PutUint32(buf[replyUnit+4*i:], atom)
	}

	return buf
}

// GetInputFocusReply reports the focus window and its revert policy.
type GetInputFocusReply struct {
	RevertTo uint8
	Focus    uint32
}

func (rep *GetInputFocusReply) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	buf := newReply(order, rep.RevertTo, sequence, 0)
	order.PutUint32(buf[8:12], rep.Focus)

	return buf
}

// ListFontsReply carries the font names matching a pattern, each as a
// length-prefixed string.
type ListFontsReply struct {
	Names []string
}

func (rep *ListFontsReply) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	var total int
	for _, name := range rep.Names {
		total += 1 + len(name)
	}

	buf := newReply(order, 0, sequence, wire.PaddedLen(total))
	order.PutUint16(buf[8:10], uint16(len(rep.Names))) // #nosec G115

	off := replyUnit
	for _, name := range rep.Names {
		buf[off] = uint8(len(name)) // #nosec G115
		copy(buf[off+1:], name)
		off += 1 + len(name)
	}

	return buf
}

// AllocColorReply reports the channel values actually allocated and the
// pixel that selects them.
type AllocColorReply struct {
	Red, Green, Blue uint16
	Pixel            uint32
}

func (rep *AllocColorReply) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	buf := newReply(order, 0, sequence, 0)
	order.PutUint16(buf[8:10], rep.Red)
	order.PutUint16(buf[10:12], rep.Green)
	order.PutUint16(buf[12:14], rep.Blue)
	order.PutUint32(buf[16:20], rep.Pixel)

	return buf
}

// QueryExtensionReply reports whether a named extension is present and, if
// so, where its opcodes, events, and errors start.
type QueryExtensionReply struct {
	Present     bool
	MajorOpcode uint8
	FirstEvent  uint8
	FirstError  uint8
}

func (rep *QueryExtensionReply) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	buf := newReply(order, 0, sequence, 0)
	if rep.Present {
		buf[8] = 1
	}
	buf[9] = rep.MajorOpcode
	buf[10] = rep.FirstEvent
	buf[11] = rep.FirstError

	return buf
}

// ListExtensionsReply enumerates extension names as length-prefixed strings.
type ListExtensionsReply struct {
	Names []string
}

func (rep *ListExtensionsReply) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	var total int
	for _, name := range rep.Names {
		total += 1 + len(name)
	}

	buf := newReply(order, uint8(len(rep.Names)), sequence, wire.PaddedLen(total)) // #nosec G115

	off := replyUnit
	for _, name := range rep.Names {
		buf[off] = uint8(len(name)) // #nosec G115
		copy(buf[off+1:], name)
		off += 1 + len(name)
	}

	return buf
}

// DecodeStringList splits a length-prefixed string list out of a reply body.
// Used by client-side codecs and tests.
func DecodeStringList(body []byte, count int) ([]string, error) {
	names := make([]string, 0, count)
	off := 0

	for i := 0; i < count; i++ {
		if off >= len(body) {
			return nil, fmt.Errorf("string list truncated at entry %d: %w", i, wire.ErrMalformed)
		}
		n := int(body[off])
		off++
		if off+n > len(body) {
			return nil, fmt.Errorf("string list truncated at entry %d: %w", i, wire.ErrMalformed)
		}
		names = append(names, string(body[off:off+n]))
		off += n
	}

	return names, nil
}
