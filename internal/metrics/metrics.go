// Package metrics exposes Prometheus instrumentation for the display
// server. A nil *Metrics is a valid no-op recorder, so callers never
// need to guard their recording calls.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the metric set.
type Config struct {
	// Namespace is the metrics namespace (default: "xds").
	Namespace string

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the metric set.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithBuckets sets the request duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "xds",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus metrics for the display server.
type Metrics struct {
	connectionsTotal  prometheus.Counter
	activeConnections prometheus.Gauge
	handshakeFailures *prometheus.CounterVec
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	protocolErrors    *prometheus.CounterVec
	eventsTotal       *prometheus.CounterVec
	resources         *prometheus.GaugeVec
}

// New registers the server metric set with the configured registry.
//
// Metrics collected:
//   - xds_connections_total: Counter of accepted client connections
//   - xds_active_connections: Gauge of connections past the handshake
//   - xds_handshake_failures_total: Counter of refused setups by reason
//   - xds_requests_total: Counter of requests by opcode
//   - xds_request_duration_seconds: Histogram of request dispatch time
//   - xds_protocol_errors_total: Counter of error frames sent by code
//   - xds_events_total: Counter of event frames sent by event name
//   - xds_resources: Gauge of live registry entries by kind
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "connections_total",
			Help:      "Total number of accepted client connections",
		}),

		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "active_connections",
			Help:      "Number of connections that completed the handshake",
		}),

		handshakeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "handshake_failures_total",
			Help:      "Total number of refused connection setups by reason",
		}, []string{"reason"}),

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "requests_total",
			Help:      "Total number of requests processed by opcode",
		}, []string{"opcode"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "request_duration_seconds",
			Help:      "Request dispatch duration in seconds",
			Buckets:   config.Buckets,
		}, []string{"opcode"}),

		protocolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "protocol_errors_total",
			Help:      "Total number of protocol error frames sent by code",
		}, []string{"code"}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "events_total",
			Help:      "Total number of event frames sent by event name",
		}, []string{"event"}),

		resources: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "resources",
			Help:      "Live resource registry entries by kind",
		}, []string{"kind"}),
	}
}

// ConnOpened records an accepted connection.
func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.connectionsTotal.Inc()
	m.activeConnections.Inc()
}

// ConnClosed records a connection leaving the serve loop.
func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.activeConnections.Dec()
}

// HandshakeFailed records a refused connection setup.
func (m *Metrics) HandshakeFailed(reason string) {
	if m == nil {
		return
	}
	m.handshakeFailures.WithLabelValues(reason).Inc()
}

// ObserveRequest records one dispatched request and its duration.
func (m *Metrics) ObserveRequest(opcode string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(opcode).Inc()
	m.requestDuration.WithLabelValues(opcode).Observe(seconds)
}

// ErrorSent records a protocol error frame.
func (m *Metrics) ErrorSent(code string) {
	if m == nil {
		return
	}
	m.protocolErrors.WithLabelValues(code).Inc()
}

// EventSent records a delivered event frame.
func (m *Metrics) EventSent(event string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(event).Inc()
}

// SetResources publishes the current registry census for one kind.
func (m *Metrics) SetResources(kind string, count int) {
	if m == nil {
		return
	}
	m.resources.WithLabelValues(kind).Set(float64(count))
}
