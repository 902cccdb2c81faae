package xproto

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarmo/xds/internal/protocol/wire"
)

func TestCreateWindowRequest_Serialize(t *testing.T) {
	req := CreateWindowRequest{
		Depth:       24,
		Wid:         0x00200001,
		Parent:      0x00000001,
		X:           10,
		Y:           -10,
		Width:       100,
		Height:      200,
		BorderWidth: 2,
		Class:       WindowClassInputOutput,
		Visual:      34,
	}

	actual := req.Serialize(binary.BigEndian)

	expected := []byte{
		0x01, 0x18, 0x00, 0x07, // opcode, depth, length 7 units
		0x00, 0x20, 0x00, 0x01, // wid
		0x00, 0x00, 0x00, 0x01, // parent
		0x00, 0x0a, // x
		0xff, 0xf6, // y
		0x00, 0x64, // width
		0x00, 0xc8, // height
		0x00, 0x02, // border width
		0x00, 0x01, // class
		0x00, 0x00, 0x00, 0x22, // visual
	}

	require.Equal(t, expected, actual)
}

func TestDecodeRequest_RoundTrip(t *testing.T) {
	requests := []Request{
		&CreateWindowRequest{Depth: 24, Wid: 0x00200001, Parent: 1, X: -5, Y: 7, Width: 640, Height: 480, BorderWidth: 1, Class: WindowClassInputOutput, Visual: 34},
		&DestroyWindowRequest{Window: 0x00200001},
		&ReparentWindowRequest{Window: 0x00200002, Parent: 0x00200001, X: 3, Y: -4},
		&MapWindowRequest{Window: 0x00200001},
		&UnmapWindowRequest{Window: 0x00200001},
		&ConfigureWindowRequest{Window: 0x00200001, Mask: ConfigWindowX | ConfigWindowHeight, Values: []uint32{50, 300}},
		&GetGeometryRequest{Drawable: 0x00200005},
		&QueryTreeRequest{Window: 1},
		&InternAtomRequest{OnlyIfExists: true, Name: "WM_NAME"},
		&GetAtomNameRequest{Atom: 39},
		&ChangePropertyRequest{Mode: PropModeAppend, Window: 0x00200001, Property: 39, Type: 31, Format: 8, Data: []byte("term")},
		&ChangePropertyRequest{Mode: PropModeReplace, Window: 0x00200001, Property: 6, Type: 19, Format: 32, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		&DeletePropertyRequest{Window: 0x00200001, Property: 39},
		&GetPropertyRequest{Delete: true, Window: 0x00200001, Property: 39, Type: AnyPropertyType, LongOffset: 2, LongLength: 16},
		&ListPropertiesRequest{Window: 0x00200001},
		&GetInputFocusRequest{},
		&OpenFontRequest{Fid: 0x00200010, Name: "fixed"},
		&CloseFontRequest{Font: 0x00200010},
		&ListFontsRequest{MaxNames: 32, Pattern: "*"},
		&CreatePixmapRequest{Depth: 24, Pid: 0x00200020, Drawable: 1, Width: 16, Height: 16},
		&FreePixmapRequest{Pixmap: 0x00200020},
		&CreateGCRequest{Cid: 0x00200030, Drawable: 1, Mask: GCForeground | GCBackground, Values: []uint32{0xffffff, 0x000000}},
		&ChangeGCRequest{GC: 0x00200030, Mask: GCLineWidth, Values: []uint32{2}},
		&FreeGCRequest{GC: 0x00200030},
		&CreateColormapRequest{Alloc: 1, Mid: 0x00200040, Window: 1, Visual: 34},
		&FreeColormapRequest{Colormap: 0x00200040},
		&AllocColorRequest{Colormap: 0x00200040, Red: 0xffff, Green: 0x8000, Blue: 0},
		&CreateCursorRequest{Cid: 0x00200050, Source: 0x00200020, Mask: 0, ForeRed: 0xffff, BackBlue: 0xffff, X: 8, Y: 8},
		&FreeCursorRequest{Cursor: 0x00200050},
		&QueryExtensionRequest{Name: "BIG-REQUESTS"},
		&ListExtensionsRequest{},
		&BellRequest{Percent: -50},
		&NoOperationRequest{PadUnits: 3},
	}

	orders := []struct {
		name  string
		order binary.ByteOrder
	}{
		{"BigEndian", binary.BigEndian},
		{"LittleEndian", binary.LittleEndian},
	}

	for _, o := range orders {
		t.Run(o.name, func(t *testing.T) {
			for _, req := range requests {
				raw := req.Serialize(o.order)
				require.Zero(t, len(raw)%4, "%s frame not padded", req.Opcode())

				decoded, consumed, err := DecodeRequest(raw, o.order)
				require.NoError(t, err, "decode %s", req.Opcode())
				require.Equal(t, len(raw), consumed, "%s consumed", req.Opcode())
				require.Equal(t, req, decoded, "%s round trip", req.Opcode())
			}
		})
	}
}

func TestDecodeRequest_ShortFrame(t *testing.T) {
	full := (&QueryTreeRequest{Window: 7}).Serialize(binary.LittleEndian)

	for n := 0; n < len(full); n++ {
		_, consumed, err := DecodeRequest(full[:n], binary.LittleEndian)
		require.ErrorIs(t, err, wire.ErrShortFrame, "prefix of %d bytes", n)
		require.Zero(t, consumed)
	}
}

func TestDecodeRequest_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{
			// Length field shorter than the header itself.
			"ZeroLength",
			[]byte{0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x07},
		},
		{
			// DestroyWindow with 4 bytes of trailing garbage.
			"TrailingBytes",
			[]byte{0x04, 0x00, 0x03, 0x00, 0x07, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff},
		},
		{
			// ConfigureWindow whose mask promises more values than the body holds.
			"ValueListTruncated",
			[]byte{0x0c, 0x00, 0x03, 0x00, 0x07, 0x00, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00},
		},
		{
			// ChangeProperty with format 7.
			"BadPropertyFormat",
			(&ChangePropertyRequest{Window: 1, Property: 39, Type: 31, Format: 8, Data: []byte("abcd")}).
				Serialize(binary.LittleEndian),
		},
	}
	tests[3].raw[16] = 7 // corrupt the format byte in place

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeRequest(tt.raw, binary.LittleEndian)
			require.ErrorIs(t, err, wire.ErrMalformed)
		})
	}
}

func TestDecodeRequest_UnknownOpcode(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint8
	}{
		{"UnassignedCore", 2},
		{"Extension", 131},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []byte{tt.opcode, 0x2a, 0x00, 0x02, 0xde, 0xad, 0xbe, 0xef}

			decoded, consumed, err := DecodeRequest(raw, binary.BigEndian)
			require.NoError(t, err)
			require.Equal(t, len(raw), consumed)

			rawReq, ok := decoded.(*RawRequest)
			require.True(t, ok)
			require.Equal(t, Opcode(tt.opcode), rawReq.Major)
			require.Equal(t, uint8(0x2a), rawReq.Detail)
			require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, rawReq.Body)
		})
	}
}

func TestDecodeRequest_Pipelined(t *testing.T) {
	first := (&MapWindowRequest{Window: 5}).Serialize(binary.LittleEndian)
	second := (&InternAtomRequest{Name: "WM_NAME"}).Serialize(binary.LittleEndian)
	buf := append(append([]byte{}, first...), second...)

	decoded, consumed, err := DecodeRequest(buf, binary.LittleEndian)
	require.NoError(t, err)
	require.Equal(t, len(first), consumed)
	require.IsType(t, &MapWindowRequest{}, decoded)

	decoded, consumed, err = DecodeRequest(buf[consumed:], binary.LittleEndian)
	require.NoError(t, err)
	require.Equal(t, len(second), consumed)
	require.Equal(t, "WM_NAME", decoded.(*InternAtomRequest).Name)
}

func TestValueAt(t *testing.T) {
	mask := uint32(ConfigWindowY | ConfigWindowWidth | ConfigWindowStackMode)
	values := []uint32{20, 640, 1}

	tests := []struct {
		name  string
		bit   uint16
		want  uint32
		found bool
	}{
		{"FirstBit", ConfigWindowY, 20, true},
		{"MiddleBit", ConfigWindowWidth, 640, true},
		{"LastBit", ConfigWindowStackMode, 1, true},
		{"UnsetBit", ConfigWindowX, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ValueAt(mask, values, uint32(tt.bit))
			require.Equal(t, tt.found, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
