// Package resource implements the shared resource registry: the arena of
// windows, pixmaps, graphics contexts, cursors, fonts, and colormaps keyed
// by resource id, plus the atom table. All access is mediated through the
// Registry's synchronized API; records never leak live pointers to callers.
package resource

import "fmt"

// ID is a resource identifier. Identifiers are globally unique while the
// resource is live and are minted from per-connection ranges.
type ID uint32

func (id ID) String() string {
	return fmt.Sprintf("0x%08X", uint32(id))
}

// Range layout: the low 21 bits index within a connection's range, the bits
// above select the range slot. Slot 0 belongs to the server itself.
const (
	RangeMask  uint32 = 0x001FFFFF
	rangeShift        = 21

	// MaxSlot is the highest grantable slot in a 32-bit id space.
	MaxSlot uint32 = 1<<(32-rangeShift) - 1
)

// Range describes the id span granted to one connection.
type Range struct {
	Base uint32
	Mask uint32
}

// RangeForSlot returns the id range owned by a slot.
func RangeForSlot(slot uint32) Range {
	return Range{Base: slot << rangeShift, Mask: RangeMask}
}

// Contains reports whether id falls inside the range.
func (r Range) Contains(id ID) bool {
	return uint32(id)&^r.Mask == r.Base
}

// Slot recovers the slot index a range was built from.
func (r Range) Slot() uint32 {
	return r.Base >> rangeShift
}
