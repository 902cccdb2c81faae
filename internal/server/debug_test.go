package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"

	"github.com/rcarmo/xds/internal/resource"
)

func TestDebugHealthz(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.DebugHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestDebugMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.DebugHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDebugTree(t *testing.T) {
	s := newTestServer(t)

	wid := resource.ID(2)
	err := s.registry.CreateWindow(resource.ServerOwner, wid, s.registry.Root(),
		resource.Window{Width: 10, Height: 10})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/debug/tree", nil)
	rec := httptest.NewRecorder()
	s.DebugHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var root resource.TreeNode
	require.NoError(t, sonnet.Unmarshal(rec.Body.Bytes(), &root))

	assert.Equal(t, s.registry.Root().String(), root.ID)
	require.Len(t, root.Children, 1)
	assert.Equal(t, wid.String(), root.Children[0].ID)
}

func TestDebugAtoms(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/debug/atoms", nil)
	rec := httptest.NewRecorder()
	s.DebugHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var entries []atomEntry
	require.NoError(t, sonnet.Unmarshal(rec.Body.Bytes(), &entries))

	require.NotEmpty(t, entries)
	assert.Equal(t, atomEntry{ID: 1, Name: "PRIMARY"}, entries[0])
	assert.Contains(t, entries, atomEntry{ID: 39, Name: "WM_NAME"})
}

func TestDebugStats(t *testing.T) {
	s := newTestServer(t)
	s.screen.Bell(10)

	req := httptest.NewRequest(http.MethodGet, "/debug/stats", nil)
	rec := httptest.NewRecorder()
	s.DebugHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats statsResponse
	require.NoError(t, sonnet.Unmarshal(rec.Body.Bytes(), &stats))

	assert.Equal(t, "headless", stats.Mode)
	assert.Equal(t, int32(0), stats.Clients)
	assert.Equal(t, uint64(1), stats.Bells)
	assert.Equal(t, 1, stats.Resources["window"])
	assert.Equal(t, len(s.atoms.Snapshot()), stats.Atoms)
}
