// Package backend hosts the display's external collaborators behind narrow
// interfaces: the screen a root window is sized against and the font
// provider consulted by font requests. Rendering itself stays out of scope;
// the virtual screen keeps a framebuffer so drawables have somewhere to
// live, the headless screen keeps nothing.
package backend

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Mode selects the screen implementation.
type Mode uint8

const (
	// ModeHeadless runs without any pixel storage.
	ModeHeadless Mode = iota

	// ModeVirtual backs the screen with an in-memory framebuffer.
	ModeVirtual

	// ModeNative would attach to a platform renderer. No renderer is
	// compiled in, so selecting it is a startup error.
	ModeNative
)

var modeNames = map[Mode]string{
	ModeHeadless: "headless",
	ModeVirtual:  "virtual",
	ModeNative:   "native",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}

	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode maps a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	for mode, name := range modeNames {
		if name == s {
			return mode, nil
		}
	}

	return 0, fmt.Errorf("backend: unknown screen mode %q", s)
}

// ErrNoRenderer rejects native mode on builds without a platform renderer.
var ErrNoRenderer = errors.New("backend: native mode requires a platform renderer")

// Default root window dimensions and visual parameters.
const (
	DefaultWidth  uint16 = 1280
	DefaultHeight uint16 = 1024
	DefaultDepth  uint8  = 24
	DefaultVisual uint32 = 34
)

// Screen describes the display the root window covers.
type Screen struct {
	Mode   Mode
	Width  uint16
	Height uint16
	Depth  uint8
	Visual uint32

	framebuffer []byte
	bells       atomic.Uint64
}

// NewScreen builds a screen for the given mode. Zero dimensions fall back
// to the defaults.
func NewScreen(mode Mode, width, height uint16) (*Screen, error) {
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}

	s := &Screen{
		Mode:   mode,
		Width:  width,
		Height: height,
		Depth:  DefaultDepth,
		Visual: DefaultVisual,
	}

	switch mode {
	case ModeHeadless:
	case ModeVirtual:
		s.framebuffer = make([]byte, int(width)*int(height)*4)
	case ModeNative:
		return nil, ErrNoRenderer
	default:
		return nil, fmt.Errorf("backend: unknown screen mode %d", mode)
	}

	return s, nil
}

// Framebuffer exposes the virtual screen's pixel storage. Headless screens
// return nil.
func (s *Screen) Framebuffer() []byte {
	return s.framebuffer
}

// Bell records a bell request. percent is the protocol's -100..100 loudness
// offset; with no audio device it is only counted.
func (s *Screen) Bell(percent int8) {
	_ = percent
	s.bells.Add(1)
}

// BellCount reports how many bells have rung.
func (s *Screen) BellCount() uint64 {
	return s.bells.Load()
}
