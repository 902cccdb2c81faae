package resource

import (
	"errors"
	"slices"
	"sync"
)

// Registry errors. Handlers translate these to protocol error frames; the
// registry itself stays wire-agnostic.
var (
	ErrNotFound    = errors.New("resource: id not in use")
	ErrWrongKind   = errors.New("resource: kind mismatch")
	ErrIDInUse     = errors.New("resource: id already in use")
	ErrOutOfRange  = errors.New("resource: id outside granted range")
	ErrIDExhausted = errors.New("resource: id range exhausted")
	ErrWouldCycle  = errors.New("resource: window would become its own ancestor")
	ErrBadMatch    = errors.New("resource: attribute mismatch")
	ErrNoSlots     = errors.New("resource: no free range slots")
)

type entry struct {
	owner uint32
	rec   Record
}

type grant struct {
	rng  Range
	next uint32
}

// RootConfig fixes the root window the registry is born with.
type RootConfig struct {
	Width  uint16
	Height uint16
	Depth  uint8
	Visual uint32
}

// Registry is the single authority over live resources. Every operation
// takes the registry lock; no method leaks a live record pointer, so callers
// can hold results across lock boundaries safely.
type Registry struct {
	mu      sync.RWMutex
	entries map[ID]*entry
	grants  map[uint32]*grant // connection id -> granted range
	slots   map[uint32]uint32 // slot -> connection id
	root    ID
}

// ServerOwner is the connection id the registry uses for resources it owns
// itself, such as the root window.
const ServerOwner uint32 = 0

// NewRegistry builds a registry holding slot 0 and the root window, which
// is mapped from birth and cannot be destroyed.
func NewRegistry(root RootConfig) *Registry {
	r := &Registry{
		entries: make(map[ID]*entry),
		grants:  map[uint32]*grant{ServerOwner: {rng: RangeForSlot(0), next: 1}},
		slots:   map[uint32]uint32{0: ServerOwner},
	}

	rootWin := &Window{
		Mapped: true,
		Width:  root.Width,
		Height: root.Height,
		Depth:  root.Depth,
		Class:  1, // InputOutput
		Visual: root.Visual,
	}

	id, _ := r.allocateLocked(ServerOwner)
	r.entries[id] = &entry{owner: ServerOwner, rec: rootWin}
	r.root = id

	return r
}

// Root returns the root window id.
func (r *Registry) Root() ID {
	return r.root
}

// GrantRange assigns the lowest free slot to a connection. Granting twice
// for the same connection returns the existing range.
func (r *Registry) GrantRange(owner uint32) (Range, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.grants[owner]; ok {
		return g.rng, nil
	}

	for slot := uint32(1); slot <= MaxSlot; slot++ {
		if _, used := r.slots[slot]; used {
			continue
		}

		rng := RangeForSlot(slot)
		r.slots[slot] = owner
		r.grants[owner] = &grant{rng: rng}

		return rng, nil
	}

	return Range{}, ErrNoSlots
}

// RangeOf returns the range granted to a connection.
func (r *Registry) RangeOf(owner uint32) (Range, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.grants[owner]
	if !ok {
		return Range{}, false
	}

	return g.rng, true
}

// Add registers a client-chosen id for a non-window resource. Windows go
// through CreateWindow so the tree stays consistent.
func (r *Registry) Add(owner uint32, id ID, rec Record) error {
	if rec.kind() == KindWindow {
		return ErrWrongKind
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.claimLocked(owner, id); err != nil {
		return err
	}

	r.entries[id] = &entry{owner: owner, rec: rec}

	return nil
}

// Allocate mints the next id from the connection's range counter and binds
// it to a non-window resource.
func (r *Registry) Allocate(owner uint32, rec Record) (ID, error) {
	if rec.kind() == KindWindow {
		return 0, ErrWrongKind
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.allocateLocked(owner)
	if err != nil {
		return 0, err
	}

	r.entries[id] = &entry{owner: owner, rec: rec}

	return id, nil
}

// allocateLocked advances the owner's counter past ids already claimed by
// the client until a free one turns up.
func (r *Registry) allocateLocked(owner uint32) (ID, error) {
	g, ok := r.grants[owner]
	if !ok {
		return 0, ErrOutOfRange
	}

	for g.next <= g.rng.Mask {
		id := ID(g.rng.Base | g.next)
		g.next++

		if _, live := r.entries[id]; !live {
			return id, nil
		}
	}

	return 0, ErrIDExhausted
}

// claimLocked validates a client-chosen id against the owner's grant.
func (r *Registry) claimLocked(owner uint32, id ID) error {
	g, ok := r.grants[owner]
	if !ok || !g.rng.Contains(id) {
		return ErrOutOfRange
	}

	if _, live := r.entries[id]; live {
		return ErrIDInUse
	}

	return nil
}

// KindOf reports the variant held at an id.
func (r *Registry) KindOf(id ID) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return 0, false
	}

	return e.rec.kind(), true
}

// OwnerOf reports the connection owning an id.
func (r *Registry) OwnerOf(id ID) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return 0, false
	}

	return e.owner, true
}

// Free removes a non-window resource, checking the caller's expectation of
// its kind.
func (r *Registry) Free(id ID, k Kind) error {
	if k == KindWindow {
		return ErrWrongKind
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return ErrNotFound
	}
	if e.rec.kind() != k {
		return ErrWrongKind
	}

	delete(r.entries, id)

	return nil
}

// ReleaseAll removes every resource owned by a connection and returns its
// range slot to the pool. Window subtrees are destroyed wholesale, taking
// descendants owned by other connections with them. The removed entry count
// is returned for diagnostics.
func (r *Registry) ReleaseAll(owner uint32) int {
	if owner == ServerOwner {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var windows []ID
	var others []ID
	for id, e := range r.entries {
		if e.owner != owner {
			continue
		}
		if e.rec.kind() == KindWindow {
			windows = append(windows, id)
		} else {
			others = append(others, id)
		}
	}

	removed := 0
	for _, id := range windows {
		// A destroy higher in the sweep may already have taken this one.
		e, live := r.entries[id]
		if !live {
			continue
		}

		if w, ok := e.rec.(*Window); ok {
			if parent, err := r.windowLocked(w.Parent); err == nil {
				parent.Children = slices.DeleteFunc(parent.Children, func(c ID) bool { return c == id })
			}
		}

		removed += len(r.destroyLocked(id))
	}

	for _, id := range others {
		delete(r.entries, id)
		removed++
	}

	if g, ok := r.grants[owner]; ok {
		delete(r.slots, g.rng.Slot())
		delete(r.grants, owner)
	}

	return removed
}

// Counts returns the live entry count per kind.
func (r *Registry) Counts() map[Kind]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[Kind]int, 6)
	for _, e := range r.entries {
		counts[e.rec.kind()]++
	}

	return counts
}

// windowLocked resolves an id that must hold a window.
func (r *Registry) windowLocked(id ID) (*Window, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}

	w, ok := e.rec.(*Window)
	if !ok {
		return nil, ErrWrongKind
	}

	return w, nil
}
