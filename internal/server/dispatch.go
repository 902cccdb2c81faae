package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rcarmo/xds/internal/backend"
	"github.com/rcarmo/xds/internal/protocol/xproto"
	"github.com/rcarmo/xds/internal/resource"
)

// outcome carries a handler's response to one request: at most one of
// reply/err, plus the consequence events the request produced.
type outcome struct {
	reply  xproto.Reply
	err    *xproto.Error
	events []xproto.Event
}

func replyTo(rep xproto.Reply) outcome { return outcome{reply: rep} }

func noReply() outcome { return outcome{} }

func failWith(code xproto.ErrorCode, bad uint32, op xproto.Opcode) outcome {
	return outcome{err: &xproto.Error{Code: code, BadValue: bad, Major: op}}
}

func (o outcome) withEvents(events ...xproto.Event) outcome {
	o.events = append(o.events, events...)
	return o
}

// wireError maps registry and backend errors onto protocol error codes.
// bad is the id or value the error frame should name.
func wireError(err error, op xproto.Opcode, bad uint32) outcome {
	var code xproto.ErrorCode

	switch {
	case errors.Is(err, resource.ErrNotFound),
		errors.Is(err, resource.ErrIDInUse),
		errors.Is(err, resource.ErrOutOfRange):
		code = xproto.ErrCodeBadResourceID
	case errors.Is(err, resource.ErrWrongKind),
		errors.Is(err, resource.ErrBadMatch):
		code = xproto.ErrCodeTypeMismatch
	case errors.Is(err, resource.ErrWouldCycle):
		code = xproto.ErrCodeWouldCycle
	case errors.Is(err, resource.ErrIDExhausted),
		errors.Is(err, resource.ErrNoSlots):
		code = xproto.ErrCodeIDSpaceExhausted
	case errors.Is(err, backend.ErrUnknownFont):
		code = xproto.ErrCodeBadFontName
	default:
		code = xproto.ErrCodeBadResourceID
	}

	return failWith(code, bad, op)
}

// handlerFunc executes one decoded request for an established connection.
type handlerFunc func(c *client, req xproto.Request) outcome

// ExtensionHandler serves raw requests for one registered extension.
// Returning two nils answers with nothing, like a core no-reply request.
type ExtensionHandler func(ctx context.Context, req *xproto.RawRequest) (xproto.Reply, *xproto.Error)

// Extension is a request family registered beyond the core opcode set.
type Extension struct {
	Name    string
	Opcode  uint8
	Handler ExtensionHandler
}

// dispatcher routes decoded requests: a fixed core table indexed by
// opcode and a runtime extension table for the 128..255 range.
type dispatcher struct {
	core [xproto.ExtensionBase]handlerFunc

	mu         sync.RWMutex
	byName     map[string]*Extension
	byOpcode   map[uint8]*Extension
	nextOpcode uint8
}

func newDispatcher(s *Server) *dispatcher {
	d := &dispatcher{
		byName:     make(map[string]*Extension),
		byOpcode:   make(map[uint8]*Extension),
		nextOpcode: uint8(xproto.ExtensionBase),
	}

	d.core[xproto.OpCreateWindow] = s.handleCreateWindow
	d.core[xproto.OpDestroyWindow] = s.handleDestroyWindow
	d.core[xproto.OpReparentWindow] = s.handleReparentWindow
	d.core[xproto.OpMapWindow] = s.handleMapWindow
	d.core[xproto.OpUnmapWindow] = s.handleUnmapWindow
	d.core[xproto.OpConfigureWindow] = s.handleConfigureWindow
	d.core[xproto.OpGetGeometry] = s.handleGetGeometry
	d.core[xproto.OpQueryTree] = s.handleQueryTree
	d.core[xproto.OpInternAtom] = s.handleInternAtom
	d.core[xproto.OpGetAtomName] = s.handleGetAtomName
	d.core[xproto.OpChangeProperty] = s.handleChangeProperty
	d.core[xproto.OpDeleteProperty] = s.handleDeleteProperty
	d.core[xproto.OpGetProperty] = s.handleGetProperty
	d.core[xproto.OpListProperties] = s.handleListProperties
	d.core[xproto.OpGetInputFocus] = s.handleGetInputFocus
	d.core[xproto.OpOpenFont] = s.handleOpenFont
	d.core[xproto.OpCloseFont] = s.handleCloseFont
	d.core[xproto.OpListFonts] = s.handleListFonts
	d.core[xproto.OpCreatePixmap] = s.handleCreatePixmap
	d.core[xproto.OpFreePixmap] = s.handleFreePixmap
	d.core[xproto.OpCreateGC] = s.handleCreateGC
	d.core[xproto.OpChangeGC] = s.handleChangeGC
	d.core[xproto.OpFreeGC] = s.handleFreeGC
	d.core[xproto.OpCreateColormap] = s.handleCreateColormap
	d.core[xproto.OpFreeColormap] = s.handleFreeColormap
	d.core[xproto.OpAllocColor] = s.handleAllocColor
	d.core[xproto.OpCreateCursor] = s.handleCreateCursor
	d.core[xproto.OpFreeCursor] = s.handleFreeCursor
	d.core[xproto.OpQueryExtension] = s.handleQueryExtension
	d.core[xproto.OpListExtensions] = s.handleListExtensions
	d.core[xproto.OpBell] = s.handleBell
	d.core[xproto.OpNoOperation] = s.handleNoOperation

	return d
}

// register assigns the next free major opcode to a named extension.
func (d *dispatcher) register(name string, handler ExtensionHandler) (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, dup := d.byName[name]; dup {
		return 0, fmt.Errorf("extension %q already registered", name)
	}

	if d.nextOpcode == 0 {
		// nextOpcode wrapped past 255
		return 0, errors.New("extension opcode range exhausted")
	}

	ext := &Extension{Name: name, Opcode: d.nextOpcode, Handler: handler}
	d.byName[name] = ext
	d.byOpcode[ext.Opcode] = ext
	d.nextOpcode++

	return ext.Opcode, nil
}

func (d *dispatcher) lookupName(name string) (*Extension, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ext, ok := d.byName[name]
	return ext, ok
}

func (d *dispatcher) lookupOpcode(op uint8) (*Extension, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ext, ok := d.byOpcode[op]
	return ext, ok
}

func (d *dispatcher) names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.byName))
	for name := range d.byName {
		names = append(names, name)
	}

	return names
}

// dispatch routes one request and records its span and metrics. The
// caller has already assigned the request's sequence number.
func (s *Server) dispatch(ctx context.Context, c *client, req xproto.Request) outcome {
	op := req.Opcode()

	ctx, span := s.tracer.Start(ctx, "xds.request",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("xds.opcode", op.String()),
			attribute.Int("xds.sequence", int(c.seq.current())),
			attribute.Int64("xds.client_id", int64(c.id)),
		),
	)
	defer span.End()

	start := time.Now()
	out := s.route(ctx, c, req)
	s.metrics.ObserveRequest(op.String(), time.Since(start).Seconds())

	if out.err != nil {
		span.RecordError(out.err)
		span.SetStatus(codes.Error, out.err.Error())
		s.metrics.ErrorSent(out.err.Code.String())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	for _, ev := range out.events {
		s.metrics.EventSent(eventName(ev.Code()))
	}

	return out
}

func (s *Server) route(ctx context.Context, c *client, req xproto.Request) outcome {
	op := req.Opcode()

	if op.IsCore() {
		if h := s.handlers.core[op]; h != nil {
			return h(c, req)
		}

		return failWith(xproto.ErrCodeUnsupportedOpcode, uint32(op), op)
	}

	raw, ok := req.(*xproto.RawRequest)
	if !ok {
		return failWith(xproto.ErrCodeUnsupportedOpcode, uint32(op), op)
	}

	ext, found := s.handlers.lookupOpcode(uint8(op))
	if !found || ext.Handler == nil {
		return failWith(xproto.ErrCodeUnsupportedOpcode, uint32(op), op)
	}

	rep, xerr := ext.Handler(ctx, raw)

	return outcome{reply: rep, err: xerr}
}

func eventName(code uint8) string {
	switch code {
	case xproto.EventDestroyNotify:
		return "DestroyNotify"
	case xproto.EventUnmapNotify:
		return "UnmapNotify"
	case xproto.EventMapNotify:
		return "MapNotify"
	}

	return fmt.Sprintf("Event(%d)", code)
}
