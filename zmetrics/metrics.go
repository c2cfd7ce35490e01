// Package zmetrics exposes the client's connection and frame counters as
// Prometheus metrics. The embedder passes a Registerer (or nil for the
// default) and hands the resulting *Metrics to the client; a nil *Metrics
// disables collection entirely, so the core never branches on "metrics
// wanted" beyond the nil-receiver checks here.
package zmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Config names the registration knobs, shaped after the metrics
// middleware config in the wider pack: a namespace, an optional
// subsystem, constant labels, and a registry.
type Config struct {
	Namespace   string
	Subsystem   string
	ConstLabels prometheus.Labels
	Registry    prometheus.Registerer
}

// Metrics holds the client's collectors. All methods are safe on a nil
// receiver.
type Metrics struct {
	connectAttempts prometheus.Counter
	connectFailures prometheus.Counter
	framesSent      *prometheus.CounterVec
	framesReceived  *prometheus.CounterVec
	framesDropped   prometheus.Counter
	failCount       prometheus.Gauge
	state           prometheus.Gauge
}

// New registers the client's collectors and returns a handle the client
// updates. cfg may be zero-valued; missing fields get defaults.
func New(cfg Config) (*Metrics, error) {
	if cfg.Namespace == "" {
		cfg.Namespace = "zclient"
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		connectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "connect_attempts_total",
			Help:        "Connection attempts to the route manager.",
			ConstLabels: cfg.ConstLabels,
		}),
		connectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "connect_failures_total",
			Help:        "Failed connection attempts and broken connections.",
			ConstLabels: cfg.ConstLabels,
		}),
		framesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "frames_sent_total",
			Help:        "Frames written to the route manager, by command.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"command"}),
		framesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "frames_received_total",
			Help:        "Frames dispatched from the route manager, by command.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"command"}),
		framesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "frames_dropped_total",
			Help:        "Frames dropped for an unknown command code.",
			ConstLabels: cfg.ConstLabels,
		}),
		failCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "consecutive_failures",
			Help:        "Current consecutive connect/IO failure count.",
			ConstLabels: cfg.ConstLabels,
		}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "connection_state",
			Help:        "Connection lifecycle state as a small integer.",
			ConstLabels: cfg.ConstLabels,
		}),
	}
	for _, c := range []prometheus.Collector{
		m.connectAttempts, m.connectFailures, m.framesSent,
		m.framesReceived, m.framesDropped, m.failCount, m.state,
	} {
		if err := cfg.Registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ConnectAttempt() {
	if m == nil {
		return
	}
	m.connectAttempts.Inc()
}

func (m *Metrics) ConnectFailure(failCount int) {
	if m == nil {
		return
	}
	m.connectFailures.Inc()
	m.failCount.Set(float64(failCount))
}

func (m *Metrics) Connected() {
	if m == nil {
		return
	}
	m.failCount.Set(0)
}

func (m *Metrics) FrameSent(command string) {
	if m == nil {
		return
	}
	m.framesSent.WithLabelValues(command).Inc()
}

func (m *Metrics) FrameReceived(command string) {
	if m == nil {
		return
	}
	m.framesReceived.WithLabelValues(command).Inc()
}

func (m *Metrics) FrameDropped() {
	if m == nil {
		return
	}
	m.framesDropped.Inc()
}

func (m *Metrics) State(s int) {
	if m == nil {
		return
	}
	m.state.Set(float64(s))
}
