package xproto

import (
	"encoding/binary"
	"fmt"
)

// ErrorCode identifies a protocol error carried in an error frame. Protocol
// errors are local to the offending request; the connection stays open.
type ErrorCode uint8

const (
	// ErrCodeUnsupportedOpcode reports an opcode with no registered handler.
	ErrCodeUnsupportedOpcode ErrorCode = 1

	// ErrCodeBadResourceID reports a resource identifier that is unknown,
	// outside the issuing connection's range, or already in use.
	ErrCodeBadResourceID ErrorCode = 2

	// ErrCodeTypeMismatch reports a resource whose kind does not match the
	// one the request operates on.
	ErrCodeTypeMismatch ErrorCode = 3

	// ErrCodeWouldCycle reports a reparent that would make a window its own
	// ancestor.
	ErrCodeWouldCycle ErrorCode = 4

	// ErrCodeIDSpaceExhausted reports that the connection's resource-id
	// range is full.
	ErrCodeIDSpaceExhausted ErrorCode = 5

	// ErrCodeBadFontName reports a font name the font provider rejected.
	ErrCodeBadFontName ErrorCode = 6
)

var errorCodeNames = map[ErrorCode]string{
	ErrCodeUnsupportedOpcode: "UnsupportedOpcode",
	ErrCodeBadResourceID:     "BadResourceId",
	ErrCodeTypeMismatch:      "TypeMismatch",
	ErrCodeWouldCycle:        "WouldCycle",
	ErrCodeIDSpaceExhausted:  "IdSpaceExhausted",
	ErrCodeBadFontName:       "BadFontName",
}

// String returns the taxonomy name of the error code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("ErrorCode(%d)", uint8(c))
}

// Error is a protocol error frame. It doubles as a Go error so request
// handlers can return it directly.
type Error struct {
	Code     ErrorCode
	BadValue uint32 // offending id, atom, or opcode, 0 when not applicable
	Major    Opcode // opcode of the failed request
	Minor    uint16 // extension minor opcode, 0 for core requests
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: request %s, value 0x%08X", e.Code, e.Major, e.BadValue)
}

// Serialize encodes the error frame: kind=0, code, sequence, bad value,
// minor and major opcodes, padded to the fixed 32 bytes.
func (e *Error) Serialize(order binary.ByteOrder, sequence uint16) []byte {
	buf := make([]byte, replyUnit)

	buf[0] = kindError
	buf[1] = uint8(e.Code)
	order.PutUint16(buf[2:4], sequence)
	order.PutUint32(buf[4:8], e.BadValue)
	order.PutUint16(buf[8:10], e.Minor)
	buf[10] = uint8(e.Major)

	return buf
}

// DecodeError decodes an error frame body (used by tests and client-side
// tooling). The caller has already consumed and checked the kind byte.
func DecodeError(buf []byte, order binary.ByteOrder) (*Error, uint16, error) {
	if len(buf) < replyUnit {
		return nil, 0, fmt.Errorf("error frame: %d bytes", len(buf))
	}

	e := &Error{
		Code:     ErrorCode(buf[1]),
		BadValue: order.Uint32(buf[4:8]),
		Minor:    order.Uint16(buf[8:10]),
		Major:    Opcode(buf[10]),
	}

	return e, order.Uint16(buf[2:4]), nil
}
