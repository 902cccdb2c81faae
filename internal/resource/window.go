package resource

import "slices"

// Stacking positions accepted by ConfigureWindow.
const (
	StackAbove uint8 = 0
	StackBelow uint8 = 1
)

// CreateWindow claims a client-chosen id for a new window under parent. The
// new window starts unmapped and on top of its siblings. Children, Mapped,
// and Properties in attrs are ignored.
func (r *Registry) CreateWindow(owner uint32, id, parent ID, attrs Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.windowLocked(parent)
	if err != nil {
		return err
	}

	if err := r.claimLocked(owner, id); err != nil {
		return err
	}

	w := &Window{
		Parent:      parent,
		X:           attrs.X,
		Y:           attrs.Y,
		Width:       attrs.Width,
		Height:      attrs.Height,
		BorderWidth: attrs.BorderWidth,
		Depth:       attrs.Depth,
		Class:       attrs.Class,
		Visual:      attrs.Visual,
	}

	r.entries[id] = &entry{owner: owner, rec: w}
	p.Children = append([]ID{id}, p.Children...)

	return nil
}

// MapWindow marks a window viewable. The returned flag is false when the
// window was already mapped, in which case no notification is due.
func (r *Registry) MapWindow(id ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.windowLocked(id)
	if err != nil {
		return false, err
	}

	if w.Mapped {
		return false, nil
	}
	w.Mapped = true

	return true, nil
}

// UnmapWindow marks a window not viewable, reporting whether the state
// actually changed.
func (r *Registry) UnmapWindow(id ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.windowLocked(id)
	if err != nil {
		return false, err
	}

	if !w.Mapped {
		return false, nil
	}
	w.Mapped = false

	return true, nil
}

// WindowChanges carries the optional fields of a ConfigureWindow. A nil
// field leaves the current value alone.
type WindowChanges struct {
	X, Y        *int16
	Width       *uint16
	Height      *uint16
	BorderWidth *uint16
	Sibling     *ID
	StackMode   *uint8
}

// ConfigureWindow adjusts geometry and stacking. A sibling reference must
// name a current sibling and must come with a stack mode.
func (r *Registry) ConfigureWindow(id ID, c WindowChanges) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.windowLocked(id)
	if err != nil {
		return err
	}

	if c.Sibling != nil && c.StackMode == nil {
		return ErrBadMatch
	}

	if c.StackMode != nil {
		if *c.StackMode != StackAbove && *c.StackMode != StackBelow {
			return ErrBadMatch
		}
		if id == r.root {
			return ErrBadMatch
		}

		parent, err := r.windowLocked(w.Parent)
		if err != nil {
			return err
		}

		var sibling ID
		if c.Sibling != nil {
			sibling = *c.Sibling
			if sibling == id || !slices.Contains(parent.Children, sibling) {
				return ErrBadMatch
			}
		}

		restack(parent, id, sibling, *c.StackMode)
	}

	if c.X != nil {
		w.X = *c.X
	}
	if c.Y != nil {
		w.Y = *c.Y
	}
	if c.Width != nil {
		w.Width = *c.Width
	}
	if c.Height != nil {
		w.Height = *c.Height
	}
	if c.BorderWidth != nil {
		w.BorderWidth = *c.BorderWidth
	}

	return nil
}

// restack repositions id within parent's front-to-back child list. With a
// zero sibling, StackAbove moves to the front and StackBelow to the back;
// with a sibling, the window lands immediately in front of or behind it.
func restack(parent *Window, id, sibling ID, mode uint8) {
	children := slices.DeleteFunc(parent.Children, func(c ID) bool { return c == id })

	switch {
	case sibling == 0 && mode == StackAbove:
		children = slices.Insert(children, 0, id)
	case sibling == 0:
		children = append(children, id)
	default:
		at := slices.Index(children, sibling)
		if mode == StackBelow {
			at++
		}
		children = slices.Insert(children, at, id)
	}

	parent.Children = children
}

// ReparentWindow moves a window under a new parent at the given coordinates,
// placing it on top of its new siblings. Moving a window into its own
// subtree is refused.
func (r *Registry) ReparentWindow(id, newParent ID, x, y int16) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.windowLocked(id)
	if err != nil {
		return err
	}
	if id == r.root {
		return ErrBadMatch
	}

	np, err := r.windowLocked(newParent)
	if err != nil {
		return err
	}

	// Walking up from the new parent reaches the moved window exactly when
	// the destination lies inside its subtree.
	for anc := newParent; anc != 0; {
		if anc == id {
			return ErrWouldCycle
		}
		aw, err := r.windowLocked(anc)
		if err != nil {
			return err
		}
		anc = aw.Parent
	}

	if old, err := r.windowLocked(w.Parent); err == nil {
		old.Children = slices.DeleteFunc(old.Children, func(c ID) bool { return c == id })
	}

	w.Parent = newParent
	w.X = x
	w.Y = y
	np.Children = append([]ID{id}, np.Children...)

	return nil
}

// DestroyWindow removes a window and its whole subtree, returning the
// destroyed ids deepest-first so each window's notification follows its
// children's. Destroying the root window does nothing.
func (r *Registry) DestroyWindow(id ID) ([]ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == r.root {
		return nil, nil
	}

	w, err := r.windowLocked(id)
	if err != nil {
		return nil, err
	}

	if parent, err := r.windowLocked(w.Parent); err == nil {
		parent.Children = slices.DeleteFunc(parent.Children, func(c ID) bool { return c == id })
	}

	return r.destroyLocked(id), nil
}

// destroyLocked removes a subtree post-order. The caller has already
// detached id from its parent, or is sweeping the whole connection.
func (r *Registry) destroyLocked(id ID) []ID {
	e, ok := r.entries[id]
	if !ok {
		return nil
	}

	w, ok := e.rec.(*Window)
	if !ok {
		return nil
	}

	var destroyed []ID
	for _, child := range w.Children {
		destroyed = append(destroyed, r.destroyLocked(child)...)
	}

	delete(r.entries, id)

	return append(destroyed, id)
}

// Geometry is the drawable placement snapshot returned by GetGeometry.
type Geometry struct {
	Root        ID
	X, Y        int16
	Width       uint16
	Height      uint16
	BorderWidth uint16
	Depth       uint8
}

// Geometry reports a drawable's placement. Pixmaps sit at the origin with
// no border.
func (r *Registry) Geometry(id ID) (Geometry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return Geometry{}, ErrNotFound
	}

	switch rec := e.rec.(type) {
	case *Window:
		return Geometry{
			Root:        r.root,
			X:           rec.X,
			Y:           rec.Y,
			Width:       rec.Width,
			Height:      rec.Height,
			BorderWidth: rec.BorderWidth,
			Depth:       rec.Depth,
		}, nil
	case *Pixmap:
		return Geometry{
			Root:   r.root,
			Width:  rec.Width,
			Height: rec.Height,
			Depth:  rec.Depth,
		}, nil
	default:
		return Geometry{}, ErrWrongKind
	}
}

// Tree reports a window's parent and a copy of its children in front-to-back
// order. The root window reports a zero parent.
func (r *Registry) Tree(id ID) (root, parent ID, children []ID, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, err := r.windowLocked(id)
	if err != nil {
		return 0, 0, nil, err
	}

	return r.root, w.Parent, slices.Clone(w.Children), nil
}

// TreeNode is one window in a TreeSnapshot.
type TreeNode struct {
	ID       string     `json:"id"`
	Owner    uint32     `json:"owner"`
	Mapped   bool       `json:"mapped"`
	X        int16      `json:"x"`
	Y        int16      `json:"y"`
	Width    uint16     `json:"width"`
	Height   uint16     `json:"height"`
	Children []TreeNode `json:"children,omitempty"`
}

// TreeSnapshot captures the whole window tree for diagnostics.
func (r *Registry) TreeSnapshot() TreeNode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshotLocked(r.root)
}

func (r *Registry) snapshotLocked(id ID) TreeNode {
	e := r.entries[id]
	w := e.rec.(*Window)

	node := TreeNode{
		ID:     id.String(),
		Owner:  e.owner,
		Mapped: w.Mapped,
		X:      w.X,
		Y:      w.Y,
		Width:  w.Width,
		Height: w.Height,
	}

	for _, child := range w.Children {
		node.Children = append(node.Children, r.snapshotLocked(child))
	}

	return node
}
