package server

import (
	"github.com/rcarmo/xds/internal/protocol/xproto"
	"github.com/rcarmo/xds/internal/resource"
)

// validAtom reports whether an atom id names an interned string.
func (s *Server) validAtom(atom uint32) bool {
	_, ok := s.atoms.Name(atom)
	return ok
}

func (s *Server) handleInternAtom(c *client, req xproto.Request) outcome {
	r := req.(*xproto.InternAtomRequest)

	atom := s.atoms.Intern(r.Name, r.OnlyIfExists)

	return replyTo(&xproto.InternAtomReply{Atom: atom})
}

func (s *Server) handleGetAtomName(c *client, req xproto.Request) outcome {
	r := req.(*xproto.GetAtomNameRequest)

	name, ok := s.atoms.Name(r.Atom)
	if !ok {
		return failWith(xproto.ErrCodeBadResourceID, r.Atom, r.Opcode())
	}

	return replyTo(&xproto.GetAtomNameReply{Name: name})
}

func (s *Server) handleChangeProperty(c *client, req xproto.Request) outcome {
	r := req.(*xproto.ChangePropertyRequest)

	if !s.validAtom(r.Property) {
		return failWith(xproto.ErrCodeBadResourceID, r.Property, r.Opcode())
	}

	err := s.registry.ChangeProperty(resource.ID(r.Window), r.Property, r.Type, r.Format, r.Mode, r.Data)
	if err != nil {
		return wireError(err, r.Opcode(), r.Window)
	}

	return noReply()
}

func (s *Server) handleDeleteProperty(c *client, req xproto.Request) outcome {
	r := req.(*xproto.DeletePropertyRequest)

	if !s.validAtom(r.Property) {
		return failWith(xproto.ErrCodeBadResourceID, r.Property, r.Opcode())
	}

	// Deleting an absent property is a no-op, not an error.
	if _, err := s.registry.DeleteProperty(resource.ID(r.Window), r.Property); err != nil {
		return wireError(err, r.Opcode(), r.Window)
	}

	return noReply()
}

func (s *Server) handleGetProperty(c *client, req xproto.Request) outcome {
	r := req.(*xproto.GetPropertyRequest)

	if !s.validAtom(r.Property) {
		return failWith(xproto.ErrCodeBadResourceID, r.Property, r.Opcode())
	}

	res, err := s.registry.GetProperty(
		resource.ID(r.Window), r.Property, r.Type, r.LongOffset, r.LongLength, r.Delete)
	if err != nil {
		return wireError(err, r.Opcode(), r.Window)
	}

	var valueLen uint32
	if res.Format != 0 {
		valueLen = uint32(len(res.Value)) / uint32(res.Format/8)
	}

	return replyTo(&xproto.GetPropertyReply{
		Format:     res.Format,
		Type:       res.Type,
		BytesAfter: res.BytesAfter,
		ValueLen:   valueLen,
		Value:      res.Value,
	})
}

func (s *Server) handleListProperties(c *client, req xproto.Request) outcome {
	r := req.(*xproto.ListPropertiesRequest)

	atoms, err := s.registry.ListProperties(resource.ID(r.Window))
	if err != nil {
		return wireError(err, r.Opcode(), r.Window)
	}

	return replyTo(&xproto.ListPropertiesReply{Atoms: atoms})
}
