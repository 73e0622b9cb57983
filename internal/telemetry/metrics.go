// Package telemetry holds the prometheus instrumentation for the
// command core.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors exported by a tether process.
type Metrics struct {
	dispatches      *prometheus.CounterVec
	handlerDuration *prometheus.HistogramVec
	queueDepth      prometheus.Gauge
	targetEvents    *prometheus.CounterVec
}

// New creates and registers the collectors on reg. Passing
// prometheus.DefaultRegisterer wires them into the default /metrics
// surface.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tether_dispatches_total",
				Help: "Dispatched commands by outcome.",
			},
			[]string{"outcome"},
		),
		handlerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tether_handler_duration_seconds",
				Help:    "Command handler execution time.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tether_queue_depth",
				Help: "Commands waiting in the submission queue.",
			},
		),
		targetEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tether_target_events_total",
				Help: "Hardware events drained from the target backend.",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.dispatches, m.handlerDuration, m.queueDepth, m.targetEvents)
	return m
}

// CountDispatch records one dispatch with the given outcome label.
func (m *Metrics) CountDispatch(outcome string) {
	m.dispatches.WithLabelValues(outcome).Inc()
}

// ObserveHandler records a handler execution duration.
func (m *Metrics) ObserveHandler(cmd string, d time.Duration) {
	m.handlerDuration.WithLabelValues(cmd).Observe(d.Seconds())
}

// SetQueueDepth reports the current submission queue length.
func (m *Metrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

// CountTargetEvent records one drained hardware event.
func (m *Metrics) CountTargetEvent(kind string) {
	m.targetEvents.WithLabelValues(kind).Inc()
}
