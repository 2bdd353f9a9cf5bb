// Package observability provides Prometheus instrumentation for the responder
// and the consumer.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeOK labels a fetch that produced a result.
const OutcomeOK = "ok"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	fetches         *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statuspact",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled by the responder, by route and status code.",
		}, []string{"path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "statuspact",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Responder request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statuspact",
			Subsystem: "consumer",
			Name:      "fetches_total",
			Help:      "Consumer fetches, by outcome (ok or error type).",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "statuspact",
			Subsystem: "consumer",
			Name:      "fetch_duration_seconds",
			Help:      "Consumer round-trip latency including decoding.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.requests, m.requestDuration, m.fetches, m.fetchDuration)
	return m
}

// ObserveRequest records one handled responder request.
func (m *Metrics) ObserveRequest(path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if path == "" {
		path = "unmatched"
	}
	m.requests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// ObserveFetch records one consumer fetch. outcome is OutcomeOK or an error type.
func (m *Metrics) ObserveFetch(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(elapsed.Seconds())
}
