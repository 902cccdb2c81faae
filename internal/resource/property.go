package resource

import "slices"

// Property change modes, matching the wire encoding.
const (
	PropReplace uint8 = 0
	PropPrepend uint8 = 1
	PropAppend  uint8 = 2
)

// ChangeProperty sets or extends a window property. Prepend and append
// require the existing type and format to match; on an absent property they
// degrade to replace.
func (r *Registry) ChangeProperty(win ID, atom, typ uint32, format, mode uint8, data []byte) error {
	if mode > PropAppend {
		return ErrBadMatch
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.windowLocked(win)
	if err != nil {
		return err
	}

	if w.Properties == nil {
		w.Properties = make(map[uint32]Property)
	}

	existing, ok := w.Properties[atom]
	if !ok || mode == PropReplace {
		w.Properties[atom] = Property{Type: typ, Format: format, Data: slices.Clone(data)}
		return nil
	}

	if existing.Type != typ || existing.Format != format {
		return ErrBadMatch
	}

	var merged []byte
	if mode == PropPrepend {
		merged = append(slices.Clone(data), existing.Data...)
	} else {
		merged = append(slices.Clone(existing.Data), data...)
	}

	w.Properties[atom] = Property{Type: typ, Format: format, Data: merged}

	return nil
}

// PropertyResult is the outcome of a GetProperty: whether the property
// exists, whether the type filter matched, and the selected value window.
type PropertyResult struct {
	Exists     bool
	TypeMatch  bool
	Type       uint32
	Format     uint8
	BytesAfter uint32
	Value      []byte
	Deleted    bool
}

// GetProperty reads a byte window of a property's value, selected by a
// 32-bit-unit offset and length. An offset past the end reads empty. With
// del set, the property is removed once the read reaches its end. A type
// filter miss returns the actual type and the total length, but no value.
func (r *Registry) GetProperty(win ID, atom, typ uint32, longOffset, longLength uint32, del bool) (PropertyResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.windowLocked(win)
	if err != nil {
		return PropertyResult{}, err
	}

	prop, ok := w.Properties[atom]
	if !ok {
		return PropertyResult{}, nil
	}

	res := PropertyResult{Exists: true, Type: prop.Type, Format: prop.Format}

	if typ != 0 && typ != prop.Type {
		res.BytesAfter = uint32(len(prop.Data)) // #nosec G115
		return res, nil
	}
	res.TypeMatch = true

	off := int(longOffset) * 4
	if off > len(prop.Data) {
		off = len(prop.Data)
	}

	n := len(prop.Data) - off
	if limit := int(longLength) * 4; n > limit {
		n = limit
	}

	res.Value = slices.Clone(prop.Data[off : off+n])
	res.BytesAfter = uint32(len(prop.Data) - off - n) // #nosec G115

	if del && res.BytesAfter == 0 {
		delete(w.Properties, atom)
		res.Deleted = true
	}

	return res, nil
}

// DeleteProperty removes a property, reporting whether it existed.
func (r *Registry) DeleteProperty(win ID, atom uint32) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.windowLocked(win)
	if err != nil {
		return false, err
	}

	if _, ok := w.Properties[atom]; !ok {
		return false, nil
	}

	delete(w.Properties, atom)

	return true, nil
}

// ListProperties returns the atoms naming a window's properties in
// ascending atom order.
func (r *Registry) ListProperties(win ID) ([]uint32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, err := r.windowLocked(win)
	if err != nil {
		return nil, err
	}

	atoms := make([]uint32, 0, len(w.Properties))
	for atom := range w.Properties {
		atoms = append(atoms, atom)
	}
	slices.Sort(atoms)

	return atoms, nil
}
