package server

import (
	"github.com/rcarmo/xds/internal/protocol/xproto"
)

func (s *Server) handleGetInputFocus(c *client, req xproto.Request) outcome {
	// No input devices are wired up; focus permanently follows the root.
	return replyTo(&xproto.GetInputFocusReply{
		RevertTo: 0,
		Focus:    uint32(s.registry.Root()),
	})
}

func (s *Server) handleQueryExtension(c *client, req xproto.Request) outcome {
	r := req.(*xproto.QueryExtensionRequest)

	ext, ok := s.handlers.lookupName(r.Name)
	if !ok {
		return replyTo(&xproto.QueryExtensionReply{})
	}

	return replyTo(&xproto.QueryExtensionReply{
		Present:     true,
		MajorOpcode: ext.Opcode,
	})
}

func (s *Server) handleListExtensions(c *client, req xproto.Request) outcome {
	return replyTo(&xproto.ListExtensionsReply{Names: s.handlers.names()})
}

func (s *Server) handleBell(c *client, req xproto.Request) outcome {
	r := req.(*xproto.BellRequest)

	percent := r.Percent
	if percent < -100 {
		percent = -100
	} else if percent > 100 {
		percent = 100
	}
	s.screen.Bell(percent)

	return noReply()
}

func (s *Server) handleNoOperation(c *client, req xproto.Request) outcome {
	return noReply()
}
