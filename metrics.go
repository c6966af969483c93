package avakit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the SDK's Prometheus instruments. A nil *Metrics is valid
// everywhere in the SDK and records nothing, so instrumentation stays
// optional.
type Metrics struct {
	sessionsTotal   prometheus.Counter
	sessionsActive  prometheus.Gauge
	eventsEmitted   *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
}

// NewMetrics registers the SDK's instruments with reg and returns them.
// Pass prometheus.DefaultRegisterer to expose them on the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "avakit",
			Name:      "sessions_created_total",
			Help:      "Total number of sessions created through the gateway.",
		}),
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "avakit",
			Name:      "sessions_active",
			Help:      "Number of sessions currently tracked by the client.",
		}),
		eventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avakit",
			Name:      "events_emitted_total",
			Help:      "Domain events emitted, by event type.",
		}, []string{"type"}),
		gatewayDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "avakit",
			Name:      "gateway_request_duration_seconds",
			Help:      "Gateway HTTP request latency, by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (m *Metrics) sessionCreated() {
	if m == nil {
		return
	}
	m.sessionsTotal.Inc()
}

func (m *Metrics) activeSessions(n int) {
	if m == nil {
		return
	}
	m.sessionsActive.Set(float64(n))
}

func (m *Metrics) eventEmitted(t EventType) {
	if m == nil {
		return
	}
	m.eventsEmitted.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) observeGateway(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.gatewayDuration.WithLabelValues(operation).Observe(d.Seconds())
}
