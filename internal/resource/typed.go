package resource

import "math/bits"

// CreatePixmap claims a client-chosen id for an off-screen drawable. The
// reference drawable only anchors the screen and is not retained.
func (r *Registry) CreatePixmap(owner uint32, id, drawable ID, p Pixmap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.drawableLocked(drawable); err != nil {
		return err
	}
	if err := r.claimLocked(owner, id); err != nil {
		return err
	}

	r.entries[id] = &entry{owner: owner, rec: &Pixmap{Width: p.Width, Height: p.Height, Depth: p.Depth}}

	return nil
}

// CreateGC claims a client-chosen id for a graphics context. Values holds
// one word per set mask bit in ascending bit order.
func (r *Registry) CreateGC(owner uint32, id, drawable ID, mask uint32, values []uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.drawableLocked(drawable); err != nil {
		return err
	}
	if err := r.claimLocked(owner, id); err != nil {
		return err
	}

	gc := &GC{Drawable: drawable, Components: make(map[uint32]uint32, bits.OnesCount32(mask))}
	mergeComponents(gc, mask, values)
	r.entries[id] = &entry{owner: owner, rec: gc}

	return nil
}

// ChangeGC merges new component values into an existing graphics context.
func (r *Registry) ChangeGC(id ID, mask uint32, values []uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return ErrNotFound
	}

	gc, ok := e.rec.(*GC)
	if !ok {
		return ErrWrongKind
	}

	mergeComponents(gc, mask, values)

	return nil
}

func mergeComponents(gc *GC, mask uint32, values []uint32) {
	i := 0
	for bit := uint32(1); bit != 0 && i < len(values); bit <<= 1 {
		if mask&bit == 0 {
			continue
		}
		gc.Components[bit] = values[i]
		i++
	}
}

// CreateCursor claims a client-chosen id for a cursor. Source must be a
// pixmap; Mask is either zero or a pixmap.
func (r *Registry) CreateCursor(owner uint32, id ID, c Cursor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.pixmapLocked(c.Source); err != nil {
		return err
	}
	if c.Mask != 0 {
		if err := r.pixmapLocked(c.Mask); err != nil {
			return err
		}
	}
	if err := r.claimLocked(owner, id); err != nil {
		return err
	}

	cursor := c
	r.entries[id] = &entry{owner: owner, rec: &cursor}

	return nil
}

// CreateColormap claims a client-chosen id for a colormap anchored to a
// window's screen.
func (r *Registry) CreateColormap(owner uint32, id, window ID, visual uint32, alloc uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.windowLocked(window); err != nil {
		return err
	}
	if err := r.claimLocked(owner, id); err != nil {
		return err
	}

	r.entries[id] = &entry{owner: owner, rec: &Colormap{Window: window, Visual: visual, Alloc: alloc}}

	return nil
}

// OpenFont binds a client-chosen id to an already validated font name.
func (r *Registry) OpenFont(owner uint32, id ID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.claimLocked(owner, id); err != nil {
		return err
	}

	r.entries[id] = &entry{owner: owner, rec: &Font{Name: name}}

	return nil
}

func (r *Registry) drawableLocked(id ID) error {
	e, ok := r.entries[id]
	if !ok {
		return ErrNotFound
	}

	switch e.rec.(type) {
	case *Window, *Pixmap:
		return nil
	default:
		return ErrWrongKind
	}
}

func (r *Registry) pixmapLocked(id ID) error {
	e, ok := r.entries[id]
	if !ok {
		return ErrNotFound
	}
	if _, ok := e.rec.(*Pixmap); !ok {
		return ErrWrongKind
	}

	return nil
}

// WindowInfo is a copied view of a window record.
type WindowInfo struct {
	Parent      ID
	Mapped      bool
	X, Y        int16
	Width       uint16
	Height      uint16
	BorderWidth uint16
	Depth       uint8
	Class       uint16
	Visual      uint32
	NumChildren int
}

// WindowInfo snapshots a window's attributes.
func (r *Registry) WindowInfo(id ID) (WindowInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, err := r.windowLocked(id)
	if err != nil {
		return WindowInfo{}, err
	}

	return WindowInfo{
		Parent:      w.Parent,
		Mapped:      w.Mapped,
		X:           w.X,
		Y:           w.Y,
		Width:       w.Width,
		Height:      w.Height,
		BorderWidth: w.BorderWidth,
		Depth:       w.Depth,
		Class:       w.Class,
		Visual:      w.Visual,
		NumChildren: len(w.Children),
	}, nil
}

// PixmapInfo snapshots a pixmap record.
func (r *Registry) PixmapInfo(id ID) (Pixmap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return Pixmap{}, ErrNotFound
	}

	p, ok := e.rec.(*Pixmap)
	if !ok {
		return Pixmap{}, ErrWrongKind
	}

	return *p, nil
}

// GCInfo is a copied view of a graphics context.
type GCInfo struct {
	Drawable   ID
	Components map[uint32]uint32
}

// GCInfo snapshots a graphics context, including a copy of its components.
func (r *Registry) GCInfo(id ID) (GCInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return GCInfo{}, ErrNotFound
	}

	gc, ok := e.rec.(*GC)
	if !ok {
		return GCInfo{}, ErrWrongKind
	}

	components := make(map[uint32]uint32, len(gc.Components))
	for bit, v := range gc.Components {
		components[bit] = v
	}

	return GCInfo{Drawable: gc.Drawable, Components: components}, nil
}

// CursorInfo snapshots a cursor record.
func (r *Registry) CursorInfo(id ID) (Cursor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return Cursor{}, ErrNotFound
	}

	c, ok := e.rec.(*Cursor)
	if !ok {
		return Cursor{}, ErrWrongKind
	}

	return *c, nil
}

// FontInfo snapshots a font record.
func (r *Registry) FontInfo(id ID) (Font, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return Font{}, ErrNotFound
	}

	f, ok := e.rec.(*Font)
	if !ok {
		return Font{}, ErrWrongKind
	}

	return *f, nil
}

// ColormapInfo snapshots a colormap record.
func (r *Registry) ColormapInfo(id ID) (Colormap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return Colormap{}, ErrNotFound
	}

	cm, ok := e.rec.(*Colormap)
	if !ok {
		return Colormap{}, ErrWrongKind
	}

	return *cm, nil
}
