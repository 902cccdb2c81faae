package server

import (
	"github.com/rcarmo/xds/internal/protocol/xproto"
	"github.com/rcarmo/xds/internal/resource"
)

func (s *Server) handleOpenFont(c *client, req xproto.Request) outcome {
	r := req.(*xproto.OpenFontRequest)

	name, err := s.fonts.Resolve(r.Name)
	if err != nil {
		return wireError(err, r.Opcode(), 0)
	}

	if err := s.registry.OpenFont(c.id, resource.ID(r.Fid), name); err != nil {
		return wireError(err, r.Opcode(), r.Fid)
	}

	return noReply()
}

func (s *Server) handleCloseFont(c *client, req xproto.Request) outcome {
	r := req.(*xproto.CloseFontRequest)

	if err := s.registry.Free(resource.ID(r.Font), resource.KindFont); err != nil {
		return wireError(err, r.Opcode(), r.Font)
	}

	return noReply()
}

func (s *Server) handleListFonts(c *client, req xproto.Request) outcome {
	r := req.(*xproto.ListFontsRequest)

	names := s.fonts.List(r.Pattern, int(r.MaxNames))

	return replyTo(&xproto.ListFontsReply{Names: names})
}

func (s *Server) handleCreatePixmap(c *client, req xproto.Request) outcome {
	r := req.(*xproto.CreatePixmapRequest)

	// Blame drawable problems on the drawable id, creation problems on
	// the new pixmap id.
	if _, err := s.registry.Geometry(resource.ID(r.Drawable)); err != nil {
		return wireError(err, r.Opcode(), r.Drawable)
	}

	p := resource.Pixmap{Width: r.Width, Height: r.Height, Depth: r.Depth}
	if err := s.registry.CreatePixmap(c.id, resource.ID(r.Pid), resource.ID(r.Drawable), p); err != nil {
		return wireError(err, r.Opcode(), r.Pid)
	}

	return noReply()
}

func (s *Server) handleFreePixmap(c *client, req xproto.Request) outcome {
	r := req.(*xproto.FreePixmapRequest)

	if err := s.registry.Free(resource.ID(r.Pixmap), resource.KindPixmap); err != nil {
		return wireError(err, r.Opcode(), r.Pixmap)
	}

	return noReply()
}

func (s *Server) handleCreateGC(c *client, req xproto.Request) outcome {
	r := req.(*xproto.CreateGCRequest)

	if _, err := s.registry.Geometry(resource.ID(r.Drawable)); err != nil {
		return wireError(err, r.Opcode(), r.Drawable)
	}

	err := s.registry.CreateGC(c.id, resource.ID(r.Cid), resource.ID(r.Drawable), r.Mask, r.Values)
	if err != nil {
		return wireError(err, r.Opcode(), r.Cid)
	}

	return noReply()
}

func (s *Server) handleChangeGC(c *client, req xproto.Request) outcome {
	r := req.(*xproto.ChangeGCRequest)

	if err := s.registry.ChangeGC(resource.ID(r.GC), r.Mask, r.Values); err != nil {
		return wireError(err, r.Opcode(), r.GC)
	}

	return noReply()
}

func (s *Server) handleFreeGC(c *client, req xproto.Request) outcome {
	r := req.(*xproto.FreeGCRequest)

	if err := s.registry.Free(resource.ID(r.GC), resource.KindGC); err != nil {
		return wireError(err, r.Opcode(), r.GC)
	}

	return noReply()
}

func (s *Server) handleCreateColormap(c *client, req xproto.Request) outcome {
	r := req.(*xproto.CreateColormapRequest)

	if _, err := s.registry.WindowInfo(resource.ID(r.Window)); err != nil {
		return wireError(err, r.Opcode(), r.Window)
	}

	err := s.registry.CreateColormap(c.id, resource.ID(r.Mid), resource.ID(r.Window), r.Visual, r.Alloc)
	if err != nil {
		return wireError(err, r.Opcode(), r.Mid)
	}

	return noReply()
}

func (s *Server) handleFreeColormap(c *client, req xproto.Request) outcome {
	r := req.(*xproto.FreeColormapRequest)

	if err := s.registry.Free(resource.ID(r.Colormap), resource.KindColormap); err != nil {
		return wireError(err, r.Opcode(), r.Colormap)
	}

	return noReply()
}

func (s *Server) handleAllocColor(c *client, req xproto.Request) outcome {
	r := req.(*xproto.AllocColorRequest)

	if _, err := s.registry.ColormapInfo(resource.ID(r.Colormap)); err != nil {
		return wireError(err, r.Opcode(), r.Colormap)
	}

	// TrueColor pixel layout: the top 8 bits of each channel packed as
	// 0xRRGGBB. Returned channel values are what the pixel reproduces.
	red := r.Red >> 8
	green := r.Green >> 8
	blue := r.Blue >> 8

	return replyTo(&xproto.AllocColorReply{
		Red:   red * 0x101,
		Green: green * 0x101,
		Blue:  blue * 0x101,
		Pixel: uint32(red)<<16 | uint32(green)<<8 | uint32(blue),
	})
}

func (s *Server) handleCreateCursor(c *client, req xproto.Request) outcome {
	r := req.(*xproto.CreateCursorRequest)

	cur := resource.Cursor{
		Source:    resource.ID(r.Source),
		Mask:      resource.ID(r.Mask),
		ForeRed:   r.ForeRed,
		ForeGreen: r.ForeGreen,
		ForeBlue:  r.ForeBlue,
		BackRed:   r.BackRed,
		BackGreen: r.BackGreen,
		BackBlue:  r.BackBlue,
		X:         r.X,
		Y:         r.Y,
	}

	if _, err := s.registry.PixmapInfo(resource.ID(r.Source)); err != nil {
		return wireError(err, r.Opcode(), r.Source)
	}
	if r.Mask != 0 {
		if _, err := s.registry.PixmapInfo(resource.ID(r.Mask)); err != nil {
			return wireError(err, r.Opcode(), r.Mask)
		}
	}

	if err := s.registry.CreateCursor(c.id, resource.ID(r.Cid), cur); err != nil {
		return wireError(err, r.Opcode(), r.Cid)
	}

	return noReply()
}

func (s *Server) handleFreeCursor(c *client, req xproto.Request) outcome {
	r := req.(*xproto.FreeCursorRequest)

	if err := s.registry.Free(resource.ID(r.Cursor), resource.KindCursor); err != nil {
		return wireError(err, r.Opcode(), r.Cursor)
	}

	return noReply()
}
