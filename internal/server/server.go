// Package server ties the display together. It owns the resource registry,
// atom table, screen, and font provider, accepts connections from the
// transport endpoints, and runs each connection's handshake and request
// loop.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rcarmo/xds/internal/auth"
	"github.com/rcarmo/xds/internal/backend"
	"github.com/rcarmo/xds/internal/config"
	"github.com/rcarmo/xds/internal/logging"
	"github.com/rcarmo/xds/internal/metrics"
	"github.com/rcarmo/xds/internal/protocol/xproto"
	"github.com/rcarmo/xds/internal/resource"
	"github.com/rcarmo/xds/internal/transport"
)

const tracerName = "github.com/rcarmo/xds/internal/server"

// Server is one display instance.
type Server struct {
	cfg      *config.Config
	registry *resource.Registry
	atoms    *resource.AtomTable
	screen   *backend.Screen
	fonts    backend.FontProvider
	policy   auth.Policy
	metrics  *metrics.Metrics
	handlers *dispatcher
	tracer   trace.Tracer

	nextClientID atomic.Uint32
	active       atomic.Int32

	endpoints []transport.Endpoint
}

// Option adjusts server construction.
type Option func(*Server)

// WithMetrics attaches a metrics recorder. Without one the server records
// nothing.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithPolicy replaces the authorization policy derived from configuration.
func WithPolicy(p auth.Policy) Option {
	return func(s *Server) { s.policy = p }
}

// WithFontProvider replaces the built-in font set.
func WithFontProvider(p backend.FontProvider) Option {
	return func(s *Server) { s.fonts = p }
}

// New assembles a server from configuration. The screen, registry, and
// atom table are built here; no sockets are bound until Listen.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	mode, err := backend.ParseMode(cfg.Display.Mode)
	if err != nil {
		return nil, err
	}

	screen, err := backend.NewScreen(mode, uint16(cfg.Display.Width), uint16(cfg.Display.Height)) // #nosec G115
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		screen: screen,
		fonts:  backend.NewBuiltinFonts(),
		policy: auth.AllowAll{},
		atoms:  resource.NewAtomTable(xproto.PredefinedAtoms),
		tracer: otel.Tracer(tracerName),
	}

	s.registry = resource.NewRegistry(resource.RootConfig{
		Width:  screen.Width,
		Height: screen.Height,
		Depth:  screen.Depth,
		Visual: screen.Visual,
	})

	if cfg.Security.Policy == "cookie" {
		cookie, err := auth.LoadCookieFile(cfg.Security.CookieFile)
		if err != nil {
			return nil, err
		}
		s.policy = auth.NewCookiePolicy(cookie)
	}

	for _, opt := range opts {
		opt(s)
	}

	s.handlers = newDispatcher(s)

	return s, nil
}

// Listen binds every configured endpoint: the display's unix socket
// always, TCP and WebSocket when configured. A bind failure closes
// whatever was already bound.
func (s *Server) Listen() error {
	unix, err := transport.ListenUnix(s.cfg.SocketPath())
	if err != nil {
		return err
	}
	s.endpoints = append(s.endpoints, unix)

	if s.cfg.Transport.EnableTCP {
		tcp, err := transport.ListenTCP(s.cfg.TCPAddr())
		if err != nil {
			s.closeEndpoints()
			return err
		}
		s.endpoints = append(s.endpoints, tcp)
	}

	if s.cfg.Transport.WSAddr != "" {
		ws, err := transport.ListenWS(s.cfg.Transport.WSAddr)
		if err != nil {
			s.closeEndpoints()
			return err
		}
		s.endpoints = append(s.endpoints, ws)
	}

	return nil
}

// Run serves all bound endpoints until ctx is canceled or an endpoint
// fails. One endpoint failing brings the whole server down.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.serveDebug(ctx)

	handle := func(conn net.Conn) { s.handleConn(ctx, conn) }

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, ep := range s.endpoints {
		logging.Info("server: display %d listening on %s (%s)", s.cfg.Display.Number, ep.Addr(), ep.Name())

		wg.Add(1)
		go func(ep transport.Endpoint) {
			defer wg.Done()

			if err := ep.Serve(ctx, handle); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s endpoint: %w", ep.Name(), err)
				}
				mu.Unlock()
				cancel()
			}
		}(ep)
	}

	wg.Wait()
	s.closeEndpoints()

	return firstErr
}

// RegisterExtension adds a request family under the next free extension
// opcode and reports the opcode it was assigned.
func (s *Server) RegisterExtension(name string, handler ExtensionHandler) (uint8, error) {
	return s.handlers.register(name, handler)
}

func (s *Server) closeEndpoints() {
	for _, ep := range s.endpoints {
		_ = ep.Close()
	}
	s.endpoints = nil
}

var resourceKinds = []resource.Kind{
	resource.KindWindow,
	resource.KindPixmap,
	resource.KindGC,
	resource.KindCursor,
	resource.KindFont,
	resource.KindColormap,
}

// syncResourceGauges refreshes the per-kind live resource gauges. Counts
// omits kinds with nothing live, so the full kind list is walked to zero
// out gauges for emptied kinds.
func (s *Server) syncResourceGauges() {
	counts := s.registry.Counts()
	for _, k := range resourceKinds {
		s.metrics.SetResources(k.String(), counts[k])
	}
}
