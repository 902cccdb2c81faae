// Package xproto defines the display protocol's wire-level units: the setup
// exchange, core requests, replies, errors, and events. Every type follows
// the same contract: Serialize produces the exact frame bytes for a given
// byte order and Deserialize consumes them. The codec stays pure; the
// connection layer owns all I/O.
package xproto

import "fmt"

// Opcode identifies a request's operation. Core requests occupy 1..127;
// 128..255 are extension opcodes routed through the extension table.
type Opcode uint8

const (
	OpCreateWindow    Opcode = 1
	OpDestroyWindow   Opcode = 4
	OpReparentWindow  Opcode = 7
	OpMapWindow       Opcode = 8
	OpUnmapWindow     Opcode = 10
	OpConfigureWindow Opcode = 12
	OpGetGeometry     Opcode = 14
	OpQueryTree       Opcode = 15
	OpInternAtom      Opcode = 16
	OpGetAtomName     Opcode = 17
	OpChangeProperty  Opcode = 18
	OpDeleteProperty  Opcode = 19
	OpGetProperty     Opcode = 20
	OpListProperties  Opcode = 21
	OpGetInputFocus   Opcode = 43
	OpOpenFont        Opcode = 45
	OpCloseFont       Opcode = 46
	OpListFonts       Opcode = 49
	OpCreatePixmap    Opcode = 53
	OpFreePixmap      Opcode = 54
	OpCreateGC        Opcode = 55
	OpChangeGC        Opcode = 56
	OpFreeGC          Opcode = 60
	OpCreateColormap  Opcode = 78
	OpFreeColormap    Opcode = 79
	OpAllocColor      Opcode = 84
	OpCreateCursor    Opcode = 93
	OpFreeCursor      Opcode = 95
	OpQueryExtension  Opcode = 98
	OpListExtensions  Opcode = 99
	OpBell            Opcode = 104
	OpNoOperation     Opcode = 127

	// ExtensionBase is the first opcode of the extension range.
	ExtensionBase Opcode = 128
)

// IsCore returns true for opcodes in the fixed core range.
func (o Opcode) IsCore() bool {
	return o >= 1 && o < ExtensionBase
}

// IsExtension returns true for opcodes in the pluggable extension range.
func (o Opcode) IsExtension() bool {
	return o >= ExtensionBase
}

var opcodeNames = map[Opcode]string{
	OpCreateWindow:    "CreateWindow",
	OpDestroyWindow:   "DestroyWindow",
	OpReparentWindow:  "ReparentWindow",
	OpMapWindow:       "MapWindow",
	OpUnmapWindow:     "UnmapWindow",
	OpConfigureWindow: "ConfigureWindow",
	OpGetGeometry:     "GetGeometry",
	OpQueryTree:       "QueryTree",
	OpInternAtom:      "InternAtom",
	OpGetAtomName:     "GetAtomName",
	OpChangeProperty:  "ChangeProperty",
	OpDeleteProperty:  "DeleteProperty",
	OpGetProperty:     "GetProperty",
	OpListProperties:  "ListProperties",
	OpGetInputFocus:   "GetInputFocus",
	OpOpenFont:        "OpenFont",
	OpCloseFont:       "CloseFont",
	OpListFonts:       "ListFonts",
	OpCreatePixmap:    "CreatePixmap",
	OpFreePixmap:      "FreePixmap",
	OpCreateGC:        "CreateGC",
	OpChangeGC:        "ChangeGC",
	OpFreeGC:          "FreeGC",
	OpCreateColormap:  "CreateColormap",
	OpFreeColormap:    "FreeColormap",
	OpAllocColor:      "AllocColor",
	OpCreateCursor:    "CreateCursor",
	OpFreeCursor:      "FreeCursor",
	OpQueryExtension:  "QueryExtension",
	OpListExtensions:  "ListExtensions",
	OpBell:            "Bell",
	OpNoOperation:     "NoOperation",
}

// String returns the request name for known opcodes.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}

	if o.IsExtension() {
		return fmt.Sprintf("Extension(%d)", uint8(o))
	}

	return fmt.Sprintf("Opcode(%d)", uint8(o))
}
