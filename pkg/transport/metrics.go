package transport

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call outcomes recorded by Metrics.
const (
	outcomeResolved  = "resolved"
	outcomeRejected  = "rejected"
	outcomeTimeout   = "timeout"
	outcomeAborted   = "aborted"
	outcomeCancelled = "cancelled"
)

// MetricsConfig configures transport metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "wcsocket").
	Namespace string

	// Subsystem is the metrics subsystem (default: "transport").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for call and handshake durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures transport metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "wcsocket",
		Subsystem: "transport",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors shared by transports. Create it
// once per registry and pass it to every Transport through Config.Metrics.
// A nil *Metrics records nothing.
type Metrics struct {
	framesSent        prometheus.Counter
	framesReceived    prometheus.Counter
	bytesSent         prometheus.Counter
	bytesReceived     prometheus.Counter
	calls             *prometheus.CounterVec
	callDuration      prometheus.Histogram
	pendingCalls      prometheus.Gauge
	pings             prometheus.Counter
	errors            prometheus.Counter
	stateTransitions  *prometheus.CounterVec
	closes            *prometheus.CounterVec
	handshakeDuration prometheus.Histogram
}

// NewMetrics registers the transport collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	if len(config.Buckets) == 0 {
		config.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(config.Registry)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		framesSent:     counter("frames_sent_total", "Total number of socket messages sent"),
		framesReceived: counter("frames_received_total", "Total number of socket messages received"),
		bytesSent:      counter("bytes_sent_total", "Total number of payload bytes sent"),
		bytesReceived:  counter("bytes_received_total", "Total number of payload bytes received"),
		pings:          counter("pings_total", "Total number of pings received from the server"),
		errors:         counter("errors_total", "Total number of errors reported to handlers"),

		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "calls_total",
			Help:        "Total number of finished calls by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		callDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "call_duration_seconds",
			Help:        "Time from sending a call to receiving its response",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		pendingCalls: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pending_calls",
			Help:        "Number of calls awaiting a response",
			ConstLabels: config.ConstLabels,
		}),

		stateTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "state_transitions_total",
			Help:        "Total number of state transitions by target state",
			ConstLabels: config.ConstLabels,
		}, []string{"state"}),

		closes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "closes_total",
			Help:        "Total number of transport closes by close code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		handshakeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "handshake_duration_seconds",
			Help:        "Time from socket open to handshake completion",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

func (m *Metrics) frameSent(n int) {
	if m == nil {
		return
	}
	m.framesSent.Inc()
	m.bytesSent.Add(float64(n))
}

func (m *Metrics) frameReceived(n int) {
	if m == nil {
		return
	}
	m.framesReceived.Inc()
	m.bytesReceived.Add(float64(n))
}

func (m *Metrics) pingReceived() {
	if m == nil {
		return
	}
	m.pings.Inc()
}

func (m *Metrics) errorReported() {
	if m == nil {
		return
	}
	m.errors.Inc()
}

func (m *Metrics) callStarted() {
	if m == nil {
		return
	}
	m.pendingCalls.Inc()
}

func (m *Metrics) callFinished(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pendingCalls.Dec()
	m.calls.WithLabelValues(outcome).Inc()
	if outcome == outcomeResolved || outcome == outcomeRejected {
		m.callDuration.Observe(elapsed.Seconds())
	}
}

// untrackedTimeout counts a call that was never sent but still timed out.
func (m *Metrics) untrackedTimeout() {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(outcomeTimeout).Inc()
}

func (m *Metrics) stateChanged(s State, code int) {
	if m == nil {
		return
	}
	m.stateTransitions.WithLabelValues(s.String()).Inc()
	if s == StateClosed {
		m.closes.WithLabelValues(strconv.Itoa(code)).Inc()
	}
}

func (m *Metrics) handshakeDone(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.handshakeDuration.Observe(elapsed.Seconds())
}
