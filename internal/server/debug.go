package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sugawarayuuta/sonnet"

	"github.com/rcarmo/xds/internal/logging"
)

// DebugHandler serves the operational endpoints: liveness, Prometheus
// metrics, and JSON snapshots of the window tree and atom table.
func (s *Server) DebugHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/debug/tree", s.debugTree)
	r.Get("/debug/atoms", s.debugAtoms)
	r.Get("/debug/stats", s.debugStats)

	return r
}

// serveDebug starts the debug listener when one is configured. It lives
// and dies with ctx and never takes the display down with it.
func (s *Server) serveDebug(ctx context.Context) {
	addr := s.cfg.Debug.Addr
	if addr == "" {
		return
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.DebugHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	go func() {
		logging.Info("server: debug endpoints on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn("server: debug server: %v", err)
		}
	}()
}

func (s *Server) debugTree(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.registry.TreeSnapshot())
}

type atomEntry struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

func (s *Server) debugAtoms(w http.ResponseWriter, _ *http.Request) {
	names := s.atoms.Snapshot()

	entries := make([]atomEntry, len(names))
	for i, name := range names {
		entries[i] = atomEntry{ID: uint32(i) + 1, Name: name}
	}

	writeJSON(w, entries)
}

type statsResponse struct {
	Display   int            `json:"display"`
	Mode      string         `json:"mode"`
	Clients   int32          `json:"clients"`
	Bells     uint64         `json:"bells"`
	Atoms     int            `json:"atoms"`
	Resources map[string]int `json:"resources"`
}

func (s *Server) debugStats(w http.ResponseWriter, _ *http.Request) {
	resources := make(map[string]int, len(resourceKinds))
	for kind, n := range s.registry.Counts() {
		resources[kind.String()] = n
	}

	writeJSON(w, statsResponse{
		Display:   s.cfg.Display.Number,
		Mode:      s.screen.Mode.String(),
		Clients:   s.active.Load(),
		Bells:     s.screen.BellCount(),
		Atoms:     s.atoms.Len(),
		Resources: resources,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := sonnet.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}
