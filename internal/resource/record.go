package resource

// Kind tags the variant held in a registry entry.
type Kind uint8

const (
	KindWindow Kind = iota + 1
	KindPixmap
	KindGC
	KindCursor
	KindFont
	KindColormap
)

var kindNames = map[Kind]string{
	KindWindow:   "window",
	KindPixmap:   "pixmap",
	KindGC:       "gc",
	KindCursor:   "cursor",
	KindFont:     "font",
	KindColormap: "colormap",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

// Record is the closed set of resource variants. The marker method keeps
// the set closed to this package.
type Record interface {
	kind() Kind
}

func (*Window) kind() Kind   { return KindWindow }
func (*Pixmap) kind() Kind   { return KindPixmap }
func (*GC) kind() Kind       { return KindGC }
func (*Cursor) kind() Kind   { return KindCursor }
func (*Font) kind() Kind     { return KindFont }
func (*Colormap) kind() Kind { return KindColormap }

// Property is one window property value.
type Property struct {
	Type   uint32
	Format uint8
	Data   []byte
}

// Window is a node in the window tree. Parent and Children are arena
// references by id, never pointers, so the tree cannot form ownership
// cycles. Children are kept in front-to-back stacking order.
type Window struct {
	Parent      ID
	Children    []ID
	Mapped      bool
	X, Y        int16
	Width       uint16
	Height      uint16
	BorderWidth uint16
	Depth       uint8
	Class       uint16
	Visual      uint32
	Properties  map[uint32]Property
}

// Pixmap is an off-screen drawable.
type Pixmap struct {
	Width  uint16
	Height uint16
	Depth  uint8
}

// GC is a graphics context: a bag of raster-op components keyed by their
// component bit.
type GC struct {
	Drawable   ID
	Components map[uint32]uint32
}

// Cursor pairs a source bitmap with an optional mask and hotspot.
type Cursor struct {
	Source                       ID
	Mask                         ID
	ForeRed, ForeGreen, ForeBlue uint16
	BackRed, BackGreen, BackBlue uint16
	X, Y                         uint16
}

// Font is an opened font id bound to a provider-validated name.
type Font struct {
	Name string
}

// Colormap associates a window's screen with a color allocation policy.
type Colormap struct {
	Window ID
	Visual uint32
	Alloc  uint8
}
