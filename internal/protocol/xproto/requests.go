package xproto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/rcarmo/xds/internal/protocol/wire"
)

// Window class values for CreateWindow.
const (
	WindowClassCopyFromParent uint16 = 0
	WindowClassInputOutput    uint16 = 1
	WindowClassInputOnly      uint16 = 2
)

// ConfigureWindow value-mask bits. Values follow the mask in ascending bit
// order, one 32-bit word per set bit.
const (
	ConfigWindowX           uint16 = 1 << 0
	ConfigWindowY           uint16 = 1 << 1
	ConfigWindowWidth       uint16 = 1 << 2
	ConfigWindowHeight      uint16 = 1 << 3
	ConfigWindowBorderWidth uint16 = 1 << 4
	ConfigWindowSibling     uint16 = 1 << 5
	ConfigWindowStackMode   uint16 = 1 << 6
)

// Graphics context component bits, a subset of the full component set. The
// codec carries any mask; these names cover the components the server
// interprets.
const (
	GCFunction   uint32 = 1 << 0
	GCPlaneMask  uint32 = 1 << 1
	GCForeground uint32 = 1 << 2
	GCBackground uint32 = 1 << 3
	GCLineWidth  uint32 = 1 << 4
	GCFont       uint32 = 1 << 14
)

// ChangeProperty modes.
const (
	PropModeReplace uint8 = 0
	PropModePrepend uint8 = 1
	PropModeAppend  uint8 = 2
)

// AnyPropertyType matches every property type in GetProperty.
const AnyPropertyType uint32 = 0

// Request is one decoded client frame. Serialize is the inverse of
// DecodeRequest and exists for client-side codecs and tests.
type Request interface {
	Opcode() Opcode
	Serialize(order binary.ByteOrder) []byte
}

type decodable interface {
	Request
	deserialize(r *bytes.Reader, order binary.ByteOrder, detail uint8) error
}

var coreRequests = map[Opcode]func() decodable{
	OpCreateWindow:    func() decodable { return &CreateWindowRequest{} },
	OpDestroyWindow:   func() decodable { return &DestroyWindowRequest{} },
	OpReparentWindow:  func() decodable { return &ReparentWindowRequest{} },
	OpMapWindow:       func() decodable { return &MapWindowRequest{} },
	OpUnmapWindow:     func() decodable { return &UnmapWindowRequest{} },
	OpConfigureWindow: func() decodable { return &ConfigureWindowRequest{} },
	OpGetGeometry:     func() decodable { return &GetGeometryRequest{} },
	OpQueryTree:       func() decodable { return &QueryTreeRequest{} },
	OpInternAtom:      func() decodable { return &InternAtomRequest{} },
	OpGetAtomName:     func() decodable { return &GetAtomNameRequest{} },
	OpChangeProperty:  func() decodable { return &ChangePropertyRequest{} },
	OpDeleteProperty:  func() decodable { return &DeletePropertyRequest{} },
	OpGetProperty:     func() decodable { return &GetPropertyRequest{} },
	OpListProperties:  func() decodable { return &ListPropertiesRequest{} },
	OpGetInputFocus:   func() decodable { return &GetInputFocusRequest{} },
	OpOpenFont:        func() decodable { return &OpenFontRequest{} },
	OpCloseFont:       func() decodable { return &CloseFontRequest{} },
	OpListFonts:       func() decodable { return &ListFontsRequest{} },
	OpCreatePixmap:    func() decodable { return &CreatePixmapRequest{} },
	OpFreePixmap:      func() decodable { return &FreePixmapRequest{} },
	OpCreateGC:        func() decodable { return &CreateGCRequest{} },
	OpChangeGC:        func() decodable { return &ChangeGCRequest{} },
	OpFreeGC:          func() decodable { return &FreeGCRequest{} },
	OpCreateColormap:  func() decodable { return &CreateColormapRequest{} },
	OpFreeColormap:    func() decodable { return &FreeColormapRequest{} },
	OpAllocColor:      func() decodable { return &AllocColorRequest{} },
	OpCreateCursor:    func() decodable { return &CreateCursorRequest{} },
	OpFreeCursor:      func() decodable { return &FreeCursorRequest{} },
	OpQueryExtension:  func() decodable { return &QueryExtensionRequest{} },
	OpListExtensions:  func() decodable { return &ListExtensionsRequest{} },
	OpBell:            func() decodable { return &BellRequest{} },
	OpNoOperation:     func() decodable { return &NoOperationRequest{} },
}

// DecodeRequest decodes the first complete request frame in buf and reports
// how many bytes it consumed. wire.ErrShortFrame means buf holds a partial
// frame and the caller should read more; wire.ErrMalformed means the stream
// is unrecoverable and the connection must close. Opcodes without a core
// layout decode as *RawRequest so the dispatcher can answer them.
func DecodeRequest(buf []byte, order binary.ByteOrder) (Request, int, error) {
	if len(buf) < requestHeaderLen {
		return nil, 0, wire.ErrShortFrame
	}

	total := int(order.Uint16(buf[2:4])) * 4
	if total < requestHeaderLen {
		return nil, 0, fmt.Errorf("request length %d units: %w", total/4, wire.ErrMalformed)
	}
	if len(buf) < total {
		return nil, 0, wire.ErrShortFrame
	}

	op := Opcode(buf[0])
	detail := buf[1]
	body := buf[requestHeaderLen:total]

	newReq, ok := coreRequests[op]
	if !ok {
		raw := &RawRequest{Major: op, Detail: detail, Body: append([]byte(nil), body...)}
		return raw, total, nil
	}

	req := newReq()
	r := bytes.NewReader(body)
	if err := req.deserialize(r, order, detail); err != nil {
		if !errors.Is(err, wire.ErrMalformed) {
			err = fmt.Errorf("%w: %v", wire.ErrMalformed, err)
		}
		return nil, 0, fmt.Errorf("decode %s: %w", op, err)
	}
	if r.Len() != 0 {
		return nil, 0, fmt.Errorf("decode %s: %d trailing bytes: %w", op, r.Len(), wire.ErrMalformed)
	}

	return req, total, nil
}

const requestHeaderLen = 4

// frame assembles a request frame around an already-built body, padding it
// to the 4-byte boundary.
func frame(order binary.ByteOrder, op Opcode, detail uint8, body []byte) []byte {
	total := requestHeaderLen + wire.PaddedLen(len(body))

	buf := make([]byte, total)
	buf[0] = uint8(op)
	buf[1] = detail
	order.PutUint16(buf[2:4], uint16(total/4)) // #nosec G115
	copy(buf[requestHeaderLen:], body)

	return buf
}

func readFields(r *bytes.Reader, order binary.ByteOrder, fields ...any) error {
	for _, field := range fields {
		if err := binary.Read(r, order, field); err != nil {
			return err
		}
	}

	return nil
}

func readValueList(r *bytes.Reader, order binary.ByteOrder, count int) ([]uint32, error) {
	if count == 0 {
		return nil, nil
	}

	values := make([]uint32, count)
	for i := range values {
		if err := binary.Read(r, order, &values[i]); err != nil {
			return nil, err
		}
	}

	return values, nil
}

// ValueAt returns the list entry for one mask bit, following the convention
// that values are stored in ascending bit order.
func ValueAt(mask uint32, values []uint32, bit uint32) (uint32, bool) {
	if mask&bit == 0 {
		return 0, false
	}

	idx := bits.OnesCount32(mask & (bit - 1))
	if idx >= len(values) {
		return 0, false
	}

	return values[idx], true
}

// RawRequest is a frame with no core layout: an extension request or an
// unassigned core opcode. The dispatcher routes it by major opcode.
type RawRequest struct {
	Major  Opcode
	Detail uint8
	Body   []byte
}

func (req *RawRequest) Opcode() Opcode { return req.Major }

func (req *RawRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, req.Major, req.Detail, req.Body)
}

// CreateWindowRequest creates a window as a child of Parent. The window id
// is chosen by the client from its granted range.
type CreateWindowRequest struct {
	Depth       uint8
	Wid         uint32
	Parent      uint32
	X, Y        int16
	Width       uint16
	Height      uint16
	BorderWidth uint16
	Class       uint16
	Visual      uint32
}

func (*CreateWindowRequest) Opcode() Opcode { return OpCreateWindow }

func (req *CreateWindowRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	for _, field := range []any{
		req.Wid, req.Parent, req.X, req.Y,
		req.Width, req.Height, req.BorderWidth, req.Class, req.Visual,
	} {
		_ = binary.Write(body, order, field)
	}

	return frame(order, OpCreateWindow, req.Depth, body.Bytes())
}

func (req *CreateWindowRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, detail uint8) error {
	req.Depth = detail

	return readFields(r, order,
		&req.Wid, &req.Parent, &req.X, &req.Y,
		&req.Width, &req.Height, &req.BorderWidth, &req.Class, &req.Visual)
}

// DestroyWindowRequest destroys a window and, recursively, its subtree.
type DestroyWindowRequest struct {
	Window uint32
}

func (*DestroyWindowRequest) Opcode() Opcode { return OpDestroyWindow }

func (req *DestroyWindowRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpDestroyWindow, 0, singleResource(order, req.Window))
}

func (req *DestroyWindowRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.Window)
}

// ReparentWindowRequest moves a window to a new parent at the given
// coordinates within it.
type ReparentWindowRequest struct {
	Window uint32
	Parent uint32
	X, Y   int16
}

func (*ReparentWindowRequest) Opcode() Opcode { return OpReparentWindow }

func (req *ReparentWindowRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	for _, field := range []any{req.Window, req.Parent, req.X, req.Y} {
		_ = binary.Write(body, order, field)
	}

	return frame(order, OpReparentWindow, 0, body.Bytes())
}

func (req *ReparentWindowRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.Window, &req.Parent, &req.X, &req.Y)
}

// MapWindowRequest makes a window viewable.
type MapWindowRequest struct {
	Window uint32
}

func (*MapWindowRequest) Opcode() Opcode { return OpMapWindow }

func (req *MapWindowRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpMapWindow, 0, singleResource(order, req.Window))
}

func (req *MapWindowRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.Window)
}

// UnmapWindowRequest removes a window from the viewable state.
type UnmapWindowRequest struct {
	Window uint32
}

func (*UnmapWindowRequest) Opcode() Opcode { return OpUnmapWindow }

func (req *UnmapWindowRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpUnmapWindow, 0, singleResource(order, req.Window))
}

func (req *UnmapWindowRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.Window)
}

// ConfigureWindowRequest adjusts window geometry and stacking. Values holds
// one word per set mask bit, in ascending bit order.
type ConfigureWindowRequest struct {
	Window uint32
	Mask   uint16
	Values []uint32
}

func (*ConfigureWindowRequest) Opcode() Opcode { return OpConfigureWindow }

// Value returns the word supplied for one ConfigWindow* bit.
func (req *ConfigureWindowRequest) Value(bit uint16) (uint32, bool) {
	return ValueAt(uint32(req.Mask), req.Values, uint32(bit))
}

func (req *ConfigureWindowRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	_ = binary.Write(body, order, req.Window)
	_ = binary.Write(body, order, req.Mask)
	_ = binary.Write(body, order, uint16(0)) // padding
	for _, v := range req.Values {
		_ = binary.Write(body, order, v)
	}

	return frame(order, OpConfigureWindow, 0, body.Bytes())
}

func (req *ConfigureWindowRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	var pad uint16
	if err := readFields(r, order, &req.Window, &req.Mask, &pad); err != nil {
		return err
	}

	values, err := readValueList(r, order, bits.OnesCount16(req.Mask))
	if err != nil {
		return err
	}
	req.Values = values

	return nil
}

// GetGeometryRequest asks for a drawable's placement and size.
type GetGeometryRequest struct {
	Drawable uint32
}

func (*GetGeometryRequest) Opcode() Opcode { return OpGetGeometry }

func (req *GetGeometryRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpGetGeometry, 0, singleResource(order, req.Drawable))
}

func (req *GetGeometryRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.Drawable)
}

// QueryTreeRequest asks for a window's root, parent, and children.
type QueryTreeRequest struct {
	Window uint32
}

func (*QueryTreeRequest) Opcode() Opcode { return OpQueryTree }

func (req *QueryTreeRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpQueryTree, 0, singleResource(order, req.Window))
}

func (req *QueryTreeRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.Window)
}

// InternAtomRequest resolves a name to an atom id, creating the atom unless
// OnlyIfExists is set.
type InternAtomRequest struct {
	OnlyIfExists bool
	Name         string
}

func (*InternAtomRequest) Opcode() Opcode { return OpInternAtom }

func (req *InternAtomRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	_ = binary.Write(body, order, uint16(len(req.Name))) // #nosec G115
	_ = binary.Write(body, order, uint16(0))             // padding
	_ = wire.WritePadded(body, []byte(req.Name))

	detail := uint8(0)
	if req.OnlyIfExists {
		detail = 1
	}

	return frame(order, OpInternAtom, detail, body.Bytes())
}

func (req *InternAtomRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, detail uint8) error {
	req.OnlyIfExists = detail != 0

	var nameLen, pad uint16
	if err := readFields(r, order, &nameLen, &pad); err != nil {
		return err
	}

	name, err := wire.ReadString(r, int(nameLen))
	if err != nil {
		return err
	}
	req.Name = name

	return nil
}

// GetAtomNameRequest asks for the name registered for an atom id.
type GetAtomNameRequest struct {
	Atom uint32
}

func (*GetAtomNameRequest) Opcode() Opcode { return OpGetAtomName }

func (req *GetAtomNameRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpGetAtomName, 0, singleResource(order, req.Atom))
}

func (req *GetAtomNameRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.Atom)
}

// ChangePropertyRequest replaces or extends a window property. DataLen
// counts format units; the byte length follows from the format.
type ChangePropertyRequest struct {
	Mode     uint8
	Window   uint32
	Property uint32
	Type     uint32
	Format   uint8
	Data     []byte
}

func (*ChangePropertyRequest) Opcode() Opcode { return OpChangeProperty }

func (req *ChangePropertyRequest) Serialize(order binary.ByteOrder) []byte {
	units := 0
	if req.Format != 0 {
		units = len(req.Data) / int(req.Format/8)
	}

	body := new(bytes.Buffer)
	_ = binary.Write(body, order, req.Window)
	_ = binary.Write(body, order, req.Property)
	_ = binary.Write(body, order, req.Type)
	body.WriteByte(req.Format)
	body.Write([]byte{0, 0, 0})                  // padding
	_ = binary.Write(body, order, uint32(units)) // #nosec G115
	_ = wire.WritePadded(body, req.Data)

	return frame(order, OpChangeProperty, req.Mode, body.Bytes())
}

func (req *ChangePropertyRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, detail uint8) error {
	req.Mode = detail

	var pad [3]byte
	var units uint32
	if err := readFields(r, order, &req.Window, &req.Property, &req.Type, &req.Format, &pad, &units); err != nil {
		return err
	}

	if req.Format != 8 && req.Format != 16 && req.Format != 32 {
		return fmt.Errorf("property format %d: %w", req.Format, wire.ErrMalformed)
	}

	data, err := wire.ReadPadded(r, int(units)*int(req.Format/8))
	if err != nil {
		return err
	}
	req.Data = data

	return nil
}

// DeletePropertyRequest removes a property from a window.
type DeletePropertyRequest struct {
	Window   uint32
	Property uint32
}

func (*DeletePropertyRequest) Opcode() Opcode { return OpDeleteProperty }

func (req *DeletePropertyRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	_ = binary.Write(body, order, req.Window)
	_ = binary.Write(body, order, req.Property)

	return frame(order, OpDeleteProperty, 0, body.Bytes())
}

func (req *DeletePropertyRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.Window, &req.Property)
}

// GetPropertyRequest reads a window of a property's value. Offset and
// length are in 32-bit units, following the protocol's long-read scheme.
type GetPropertyRequest struct {
	Delete     bool
	Window     uint32
	Property   uint32
	Type       uint32
	LongOffset uint32
	LongLength uint32
}

func (*GetPropertyRequest) Opcode() Opcode { return OpGetProperty }

func (req *GetPropertyRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	for _, field := range []any{req.Window, req.Property, req.Type, req.LongOffset, req.LongLength} {
		_ = binary.Write(body, order, field)
	}

	detail := uint8(0)
	if req.Delete {
		detail = 1
	}

	return frame(order, OpGetProperty, detail, body.Bytes())
}

func (req *GetPropertyRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, detail uint8) error {
	req.Delete = detail != 0

	return readFields(r, order, &req.Window, &req.Property, &req.Type, &req.LongOffset, &req.LongLength)
}

// ListPropertiesRequest enumerates the atoms naming a window's properties.
type ListPropertiesRequest struct {
	Window uint32
}

func (*ListPropertiesRequest) Opcode() Opcode { return OpListProperties }

func (req *ListPropertiesRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpListProperties, 0, singleResource(order, req.Window))
}

func (req *ListPropertiesRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.Window)
}

// GetInputFocusRequest reads the focus state. It carries no payload and
// doubles as the protocol's round-trip fence.
type GetInputFocusRequest struct{}

func (*GetInputFocusRequest) Opcode() Opcode { return OpGetInputFocus }

func (req *GetInputFocusRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpGetInputFocus, 0, nil)
}

func (req *GetInputFocusRequest) deserialize(*bytes.Reader, binary.ByteOrder, uint8) error {
	return nil
}

// OpenFontRequest binds a font id to a font name.
type OpenFontRequest struct {
	Fid  uint32
	Name string
}

func (*OpenFontRequest) Opcode() Opcode { return OpOpenFont }

func (req *OpenFontRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	_ = binary.Write(body, order, req.Fid)
	_ = binary.Write(body, order, uint16(len(req.Name))) // #nosec G115
	_ = binary.Write(body, order, uint16(0))             // padding
	_ = wire.WritePadded(body, []byte(req.Name))

	return frame(order, OpOpenFont, 0, body.Bytes())
}

func (req *OpenFontRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	var nameLen, pad uint16
	if err := readFields(r, order, &req.Fid, &nameLen, &pad); err != nil {
		return err
	}

	name, err := wire.ReadString(r, int(nameLen))
	if err != nil {
		return err
	}
	req.Name = name

	return nil
}

// CloseFontRequest releases a font id.
type CloseFontRequest struct {
	Font uint32
}

func (*CloseFontRequest) Opcode() Opcode { return OpCloseFont }

func (req *CloseFontRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpCloseFont, 0, singleResource(order, req.Font))
}

func (req *CloseFontRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.Font)
}

// ListFontsRequest matches available font names against a pattern with *
// and ? wildcards.
type ListFontsRequest struct {
	MaxNames uint16
	Pattern  string
}

func (*ListFontsRequest) Opcode() Opcode { return OpListFonts }

func (req *ListFontsRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	_ = binary.Write(body, order, req.MaxNames)
	_ = binary.Write(body, order, uint16(len(req.Pattern))) // #nosec G115
	_ = wire.WritePadded(body, []byte(req.Pattern))

	return frame(order, OpListFonts, 0, body.Bytes())
}

func (req *ListFontsRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	var patternLen uint16
	if err := readFields(r, order, &req.MaxNames, &patternLen); err != nil {
		return err
	}

	pattern, err := wire.ReadString(r, int(patternLen))
	if err != nil {
		return err
	}
	req.Pattern = pattern

	return nil
}

// CreatePixmapRequest creates an off-screen drawable sharing the screen of
// Drawable.
type CreatePixmapRequest struct {
	Depth    uint8
	Pid      uint32
	Drawable uint32
	Width    uint16
	Height   uint16
}

func (*CreatePixmapRequest) Opcode() Opcode { return OpCreatePixmap }

func (req *CreatePixmapRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	for _, field := range []any{req.Pid, req.Drawable, req.Width, req.Height} {
		_ = binary.Write(body, order, field)
	}

	return frame(order, OpCreatePixmap, req.Depth, body.Bytes())
}

func (req *CreatePixmapRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, detail uint8) error {
	req.Depth = detail

	return readFields(r, order, &req.Pid, &req.Drawable, &req.Width, &req.Height)
}

// FreePixmapRequest releases a pixmap id.
type FreePixmapRequest struct {
	Pixmap uint32
}

func (*FreePixmapRequest) Opcode() Opcode { return OpFreePixmap }

func (req *FreePixmapRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpFreePixmap, 0, singleResource(order, req.Pixmap))
}

func (req *FreePixmapRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.Pixmap)
}

// CreateGCRequest creates a graphics context against a drawable. Values
// holds one word per set mask bit, in ascending bit order.
type CreateGCRequest struct {
	Cid      uint32
	Drawable uint32
	Mask     uint32
	Values   []uint32
}

func (*CreateGCRequest) Opcode() Opcode { return OpCreateGC }

func (req *CreateGCRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	_ = binary.Write(body, order, req.Cid)
	_ = binary.Write(body, order, req.Drawable)
	_ = binary.Write(body, order, req.Mask)
	for _, v := range req.Values {
		_ = binary.Write(body, order, v)
	}

	return frame(order, OpCreateGC, 0, body.Bytes())
}

func (req *CreateGCRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	if err := readFields(r, order, &req.Cid, &req.Drawable, &req.Mask); err != nil {
		return err
	}

	values, err := readValueList(r, order, bits.OnesCount32(req.Mask))
	if err != nil {
		return err
	}
	req.Values = values

	return nil
}

// ChangeGCRequest updates components of a graphics context.
type ChangeGCRequest struct {
	GC     uint32
	Mask   uint32
	Values []uint32
}

func (*ChangeGCRequest) Opcode() Opcode { return OpChangeGC }

func (req *ChangeGCRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	_ = binary.Write(body, order, req.GC)
	_ = binary.Write(body, order, req.Mask)
	for _, v := range req.Values {
		_ = binary.Write(body, order, v)
	}

	return frame(order, OpChangeGC, 0, body.Bytes())
}

func (req *ChangeGCRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	if err := readFields(r, order, &req.GC, &req.Mask); err != nil {
		return err
	}

	values, err := readValueList(r, order, bits.OnesCount32(req.Mask))
	if err != nil {
		return err
	}
	req.Values = values

	return nil
}

// FreeGCRequest releases a graphics context id.
type FreeGCRequest struct {
	GC uint32
}

func (*FreeGCRequest) Opcode() Opcode { return OpFreeGC }

func (req *FreeGCRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpFreeGC, 0, singleResource(order, req.GC))
}

func (req *FreeGCRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.GC)
}

// CreateColormapRequest creates a colormap for a window's screen.
type CreateColormapRequest struct {
	Alloc  uint8
	Mid    uint32
	Window uint32
	Visual uint32
}

func (*CreateColormapRequest) Opcode() Opcode { return OpCreateColormap }

func (req *CreateColormapRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	for _, field := range []any{req.Mid, req.Window, req.Visual} {
		_ = binary.Write(body, order, field)
	}

	return frame(order, OpCreateColormap, req.Alloc, body.Bytes())
}

func (req *CreateColormapRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, detail uint8) error {
	req.Alloc = detail

	return readFields(r, order, &req.Mid, &req.Window, &req.Visual)
}

// FreeColormapRequest releases a colormap id.
type FreeColormapRequest struct {
	Colormap uint32
}

func (*FreeColormapRequest) Opcode() Opcode { return OpFreeColormap }

func (req *FreeColormapRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpFreeColormap, 0, singleResource(order, req.Colormap))
}

func (req *FreeColormapRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.Colormap)
}

// AllocColorRequest allocates the closest available color to the requested
// channel values.
type AllocColorRequest struct {
	Colormap         uint32
	Red, Green, Blue uint16
}

func (*AllocColorRequest) Opcode() Opcode { return OpAllocColor }

func (req *AllocColorRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	_ = binary.Write(body, order, req.Colormap)
	_ = binary.Write(body, order, req.Red)
	_ = binary.Write(body, order, req.Green)
	_ = binary.Write(body, order, req.Blue)
	_ = binary.Write(body, order, uint16(0)) // padding

	return frame(order, OpAllocColor, 0, body.Bytes())
}

func (req *AllocColorRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	var pad uint16

	return readFields(r, order, &req.Colormap, &req.Red, &req.Green, &req.Blue, &pad)
}

// CreateCursorRequest builds a cursor from a source bitmap and an optional
// mask bitmap, with explicit foreground and background channels.
type CreateCursorRequest struct {
	Cid                          uint32
	Source                       uint32
	Mask                         uint32
	ForeRed, ForeGreen, ForeBlue uint16
	BackRed, BackGreen, BackBlue uint16
	X, Y                         uint16
}

func (*CreateCursorRequest) Opcode() Opcode { return OpCreateCursor }

func (req *CreateCursorRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	for _, field := range []any{
		req.Cid, req.Source, req.Mask,
		req.ForeRed, req.ForeGreen, req.ForeBlue,
		req.BackRed, req.BackGreen, req.BackBlue,
		req.X, req.Y,
	} {
		_ = binary.Write(body, order, field)
	}

	return frame(order, OpCreateCursor, 0, body.Bytes())
}

func (req *CreateCursorRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order,
		&req.Cid, &req.Source, &req.Mask,
		&req.ForeRed, &req.ForeGreen, &req.ForeBlue,
		&req.BackRed, &req.BackGreen, &req.BackBlue,
		&req.X, &req.Y)
}

// FreeCursorRequest releases a cursor id.
type FreeCursorRequest struct {
	Cursor uint32
}

func (*FreeCursorRequest) Opcode() Opcode { return OpFreeCursor }

func (req *FreeCursorRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpFreeCursor, 0, singleResource(order, req.Cursor))
}

func (req *FreeCursorRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	return readFields(r, order, &req.Cursor)
}

// QueryExtensionRequest asks whether a named extension is available.
type QueryExtensionRequest struct {
	Name string
}

func (*QueryExtensionRequest) Opcode() Opcode { return OpQueryExtension }

func (req *QueryExtensionRequest) Serialize(order binary.ByteOrder) []byte {
	body := new(bytes.Buffer)
	_ = binary.Write(body, order, uint16(len(req.Name))) // #nosec G115
	_ = binary.Write(body, order, uint16(0))             // padding
	_ = wire.WritePadded(body, []byte(req.Name))

	return frame(order, OpQueryExtension, 0, body.Bytes())
}

func (req *QueryExtensionRequest) deserialize(r *bytes.Reader, order binary.ByteOrder, _ uint8) error {
	var nameLen, pad uint16
	if err := readFields(r, order, &nameLen, &pad); err != nil {
		return err
	}

	name, err := wire.ReadString(r, int(nameLen))
	if err != nil {
		return err
	}
	req.Name = name

	return nil
}

// ListExtensionsRequest enumerates the extensions the server exposes.
type ListExtensionsRequest struct{}

func (*ListExtensionsRequest) Opcode() Opcode { return OpListExtensions }

func (req *ListExtensionsRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpListExtensions, 0, nil)
}

func (req *ListExtensionsRequest) deserialize(*bytes.Reader, binary.ByteOrder, uint8) error {
	return nil
}

// BellRequest rings the keyboard bell. Percent is a signed loudness offset
// in the range -100..100.
type BellRequest struct {
	Percent int8
}

func (*BellRequest) Opcode() Opcode { return OpBell }

func (req *BellRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpBell, uint8(req.Percent), nil)
}

func (req *BellRequest) deserialize(_ *bytes.Reader, _ binary.ByteOrder, detail uint8) error {
	req.Percent = int8(detail)

	return nil
}

// NoOperationRequest does nothing. Its body, if any, is discarded; clients
// use oversized no-ops to keep sequence numbers moving.
type NoOperationRequest struct {
	PadUnits int
}

func (*NoOperationRequest) Opcode() Opcode { return OpNoOperation }

func (req *NoOperationRequest) Serialize(order binary.ByteOrder) []byte {
	return frame(order, OpNoOperation, 0, make([]byte, 4*req.PadUnits))
}

func (req *NoOperationRequest) deserialize(r *bytes.Reader, _ binary.ByteOrder, _ uint8) error {
	req.PadUnits = r.Len() / 4
	_, _ = r.Seek(0, io.SeekEnd)

	return nil
}

func singleResource(order binary.ByteOrder, id uint32) []byte {
	body := make([]byte, 4)
	order.PutUint32(body, id)

	return body
}
