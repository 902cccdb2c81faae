package resource

import "sync"

// AtomTable is the bidirectional mapping between names and atom ids. Atom
// identifiers form their own namespace, disjoint from resource-id ranges;
// atoms are global, unowned, and never removed, so the table only grows.
type AtomTable struct {
	mu     sync.RWMutex
	byName map[string]uint32
	names  []string // names[n-1] is the name of atom n
}

// NewAtomTable builds a table seeded with the predefined names, assigned
// ids 1..len(seed) in order.
func NewAtomTable(seed []string) *AtomTable {
	t := &AtomTable{
		byName: make(map[string]uint32, len(seed)),
		names:  make([]string, 0, len(seed)),
	}

	for _, name := range seed {
		t.names = append(t.names, name)
		t.byName[name] = uint32(len(t.names)) // #nosec G115
	}

	return t
}

// Intern resolves name to its atom, creating it when absent unless
// onlyIfExists is set, in which case absent names yield 0. Interning an
// existing name always returns the original atom.
func (t *AtomTable) Intern(name string, onlyIfExists bool) uint32 {
	t.mu.RLock()
	atom, ok := t.byName[name]
	t.mu.RUnlock()

	if ok || onlyIfExists {
		return atom
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Lost the race to another interner.
	if atom, ok = t.byName[name]; ok {
		return atom
	}

	t.names = append(t.names, name)
	atom = uint32(len(t.names)) // #nosec G115
	t.byName[name] = atom

	return atom
}

// Name returns the string registered for an atom.
func (t *AtomTable) Name(atom uint32) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if atom == 0 || atom > uint32(len(t.names)) { // #nosec G115
		return "", false
	}

	return t.names[atom-1], true
}

// Len returns the number of interned atoms.
func (t *AtomTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.names)
}

// Snapshot returns the table contents in atom-id order.
func (t *AtomTable) Snapshot() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, len(t.names))
	copy(out, t.names)

	return out
}
