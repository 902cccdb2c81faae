package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcarmo/xds/internal/backend"
	"github.com/rcarmo/xds/internal/protocol/xproto"
	"github.com/rcarmo/xds/internal/resource"
)

func TestWireErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want xproto.ErrorCode
	}{
		{"not found", resource.ErrNotFound, xproto.ErrCodeBadResourceID},
		{"id in use", resource.ErrIDInUse, xproto.ErrCodeBadResourceID},
		{"out of range", resource.ErrOutOfRange, xproto.ErrCodeBadResourceID},
		{"wrong kind", resource.ErrWrongKind, xproto.ErrCodeTypeMismatch},
		{"bad match", resource.ErrBadMatch, xproto.ErrCodeTypeMismatch},
		{"would cycle", resource.ErrWouldCycle, xproto.ErrCodeWouldCycle},
		{"id exhausted", resource.ErrIDExhausted, xproto.ErrCodeIDSpaceExhausted},
		{"no slots", resource.ErrNoSlots, xproto.ErrCodeIDSpaceExhausted},
		{"unknown font", backend.ErrUnknownFont, xproto.ErrCodeBadFontName},
		{"unclassified", assert.AnError, xproto.ErrCodeBadResourceID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := wireError(tt.err, xproto.OpMapWindow, 7)

			require.NotNil(t, out.err)
			assert.Equal(t, tt.want, out.err.Code)
			assert.Equal(t, uint32(7), out.err.BadValue)
			assert.Equal(t, xproto.OpMapWindow, out.err.Major)
			assert.Nil(t, out.reply)
		})
	}
}

func TestExtensionRegistration(t *testing.T) {
	s := newTestServer(t)

	handler := func(_ context.Context, _ *xproto.RawRequest) (xproto.Reply, *xproto.Error) {
		return nil, nil
	}

	op, err := s.RegisterExtension("XDS-SHAPE", handler)
	require.NoError(t, err)
	assert.Equal(t, uint8(xproto.ExtensionBase), op)

	op2, err := s.RegisterExtension("XDS-RANDR", handler)
	require.NoError(t, err)
	assert.Equal(t, uint8(xproto.ExtensionBase)+1, op2)

	_, err = s.RegisterExtension("XDS-SHAPE", handler)
	assert.ErrorContains(t, err, "already registered")

	ext, ok := s.handlers.lookupOpcode(op)
	require.True(t, ok)
	assert.Equal(t, "XDS-SHAPE", ext.Name)

	names := s.handlers.names()
	assert.ElementsMatch(t, []string{"XDS-SHAPE", "XDS-RANDR"}, names)
}

func TestRouteUnknownCoreOpcode(t *testing.T) {
	s := newTestServer(t)
	c := &client{id: 1}

	out := s.route(context.Background(), c, &xproto.RawRequest{Major: xproto.Opcode(50)})

	require.NotNil(t, out.err)
	assert.Equal(t, xproto.ErrCodeUnsupportedOpcode, out.err.Code)
	assert.Equal(t, uint32(50), out.err.BadValue)
}

func TestRouteUnregisteredExtension(t *testing.T) {
	s := newTestServer(t)
	c := &client{id: 1}

	out := s.route(context.Background(), c, &xproto.RawRequest{Major: xproto.Opcode(200)})

	require.NotNil(t, out.err)
	assert.Equal(t, xproto.ErrCodeUnsupportedOpcode, out.err.Code)
}

func TestEventName(t *testing.T) {
	assert.Equal(t, "DestroyNotify", eventName(xproto.EventDestroyNotify))
	assert.Equal(t, "UnmapNotify", eventName(xproto.EventUnmapNotify))
	assert.Equal(t, "MapNotify", eventName(xproto.EventMapNotify))
	assert.Equal(t, "Event(42)", eventName(42))
}
