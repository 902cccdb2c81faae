package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg))

	m.ConnOpened()
	m.ConnOpened()
	m.ConnClosed()
	m.HandshakeFailed("version_mismatch")
	m.ObserveRequest("CreateWindow", 0.001)
	m.ObserveRequest("CreateWindow", 0.002)
	m.ErrorSent("BadResourceId")
	m.EventSent("DestroyNotify")
	m.SetResources("Window", 5)
	m.SetResources("Window", 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.connectionsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeConnections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handshakeFailures.WithLabelValues("version_mismatch")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("CreateWindow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.protocolErrors.WithLabelValues("BadResourceId")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsTotal.WithLabelValues("DestroyNotify")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.resources.WithLabelValues("Window")))

	// Every metric family made it into the registry
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 8)
}

func TestNamespaceOption(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithNamespace("displayd"))

	m.ConnOpened()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	assert.Equal(t, "displayd_active_connections", families[0].GetName())
}

func TestNilReceiverIsNoOp(t *testing.T) {
	var m *Metrics

	// None of these may panic
	m.ConnOpened()
	m.ConnClosed()
	m.HandshakeFailed("unauthorized")
	m.ObserveRequest("Bell", 0)
	m.ErrorSent("TypeMismatch")
	m.EventSent("MapNotify")
	m.SetResources("Pixmap", 1)
}
