package server

import (
	"errors"

	"github.com/rcarmo/xds/internal/protocol/xproto"
	"github.com/rcarmo/xds/internal/resource"
)

func (s *Server) handleCreateWindow(c *client, req xproto.Request) outcome {
	r := req.(*xproto.CreateWindowRequest)

	parent := resource.ID(r.Parent)
	pinfo, err := s.registry.WindowInfo(parent)
	if err != nil {
		return wireError(err, r.Opcode(), r.Parent)
	}

	attrs := resource.Window{
		X:           r.X,
		Y:           r.Y,
		Width:       r.Width,
		Height:      r.Height,
		BorderWidth: r.BorderWidth,
		Depth:       r.Depth,
		Class:       r.Class,
		Visual:      r.Visual,
	}

	// CopyFromParent resolution happens at creation time, so the child
	// keeps its values if the parent changes later.
	if attrs.Class == xproto.WindowClassCopyFromParent {
		attrs.Class = pinfo.Class
	}
	if attrs.Visual == 0 {
		attrs.Visual = pinfo.Visual
	}
	if attrs.Depth == 0 {
		attrs.Depth = pinfo.Depth
	}

	if err := s.registry.CreateWindow(c.id, resource.ID(r.Wid), parent, attrs); err != nil {
		return wireError(err, r.Opcode(), r.Wid)
	}

	return noReply()
}

func (s *Server) handleDestroyWindow(c *client, req xproto.Request) outcome {
	r := req.(*xproto.DestroyWindowRequest)

	destroyed, err := s.registry.DestroyWindow(resource.ID(r.Window))
	if err != nil {
		return wireError(err, r.Opcode(), r.Window)
	}

	out := noReply()
	for _, id := range destroyed {
		out.events = append(out.events, &xproto.DestroyNotifyEvent{
			Event:  uint32(id),
			Window: uint32(id),
		})
	}

	return out
}

func (s *Server) handleReparentWindow(c *client, req xproto.Request) outcome {
	r := req.(*xproto.ReparentWindowRequest)

	// Check the destination first so its errors are blamed on the
	// parent id rather than the window being moved.
	if _, err := s.registry.WindowInfo(resource.ID(r.Parent)); err != nil {
		return wireError(err, r.Opcode(), r.Parent)
	}

	err := s.registry.ReparentWindow(resource.ID(r.Window), resource.ID(r.Parent), r.X, r.Y)
	if err != nil {
		bad := r.Window
		if errors.Is(err, resource.ErrWouldCycle) {
			bad = r.Parent
		}

		return wireError(err, r.Opcode(), bad)
	}

	return noReply()
}

func (s *Server) handleMapWindow(c *client, req xproto.Request) outcome {
	r := req.(*xproto.MapWindowRequest)

	mapped, err := s.registry.MapWindow(resource.ID(r.Window))
	if err != nil {
		return wireError(err, r.Opcode(), r.Window)
	}

	if !mapped {
		return noReply()
	}

	return noReply().withEvents(&xproto.MapNotifyEvent{
		Event:  r.Window,
		Window: r.Window,
	})
}

func (s *Server) handleUnmapWindow(c *client, req xproto.Request) outcome {
	r := req.(*xproto.UnmapWindowRequest)

	unmapped, err := s.registry.UnmapWindow(resource.ID(r.Window))
	if err != nil {
		return wireError(err, r.Opcode(), r.Window)
	}

	if !unmapped {
		return noReply()
	}

	return noReply().withEvents(&xproto.UnmapNotifyEvent{
		Event:  r.Window,
		Window: r.Window,
	})
}

func (s *Server) handleConfigureWindow(c *client, req xproto.Request) outcome {
	r := req.(*xproto.ConfigureWindowRequest)

	var changes resource.WindowChanges

	if v, ok := r.Value(xproto.ConfigWindowX); ok {
		x := int16(v)
		changes.X = &x
	}
	if v, ok := r.Value(xproto.ConfigWindowY); ok {
		y := int16(v)
		changes.Y = &y
	}
	if v, ok := r.Value(xproto.ConfigWindowWidth); ok {
		w := uint16(v)
		changes.Width = &w
	}
	if v, ok := r.Value(xproto.ConfigWindowHeight); ok {
		h := uint16(v)
		changes.Height = &h
	}
	if v, ok := r.Value(xproto.ConfigWindowBorderWidth); ok {
		bw := uint16(v)
		changes.BorderWidth = &bw
	}
	if v, ok := r.Value(xproto.ConfigWindowSibling); ok {
		sib := resource.ID(v)
		changes.Sibling = &sib
	}
	if v, ok := r.Value(xproto.ConfigWindowStackMode); ok {
		mode := uint8(v)
		changes.StackMode = &mode
	}

	if err := s.registry.ConfigureWindow(resource.ID(r.Window), changes); err != nil {
		return wireError(err, r.Opcode(), r.Window)
	}

	return noReply()
}

func (s *Server) handleGetGeometry(c *client, req xproto.Request) outcome {
	r := req.(*xproto.GetGeometryRequest)

	g, err := s.registry.Geometry(resource.ID(r.Drawable))
	if err != nil {
		return wireError(err, r.Opcode(), r.Drawable)
	}

	return replyTo(&xproto.GetGeometryReply{
		Depth:       g.Depth,
		Root:        uint32(g.Root),
		X:           g.X,
		Y:           g.Y,
		Width:       g.Width,
		Height:      g.Height,
		BorderWidth: g.BorderWidth,
	})
}

func (s *Server) handleQueryTree(c *client, req xproto.Request) outcome {
	r := req.(*xproto.QueryTreeRequest)

	root, parent, children, err := s.registry.Tree(resource.ID(r.Window))
	if err != nil {
		return wireError(err, r.Opcode(), r.Window)
	}

	ids := make([]uint32, len(children))
	for i, id := range children {
		ids[i] = uint32(id)
	}

	return replyTo(&xproto.QueryTreeReply{
		Root:     uint32(root),
		Parent:   uint32(parent),
		Children: ids,
	})
}
