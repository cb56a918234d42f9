package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK             = "ok"
	OutcomeDomainError    = "domain_error"
	OutcomeTransportError = "transport_error"
)

// RPCMetrics records per-operation metadata for commerce backend calls.
type RPCMetrics struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
}

// NewRPCMetrics registers the RPC metrics on the provided registerer.
func NewRPCMetrics(reg prometheus.Registerer) *RPCMetrics {
	if reg == nil {
		return &RPCMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "commerce_rpc_duration_seconds",
		Help:    "Duration of commerce backend RPC calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commerce_rpc_calls_total",
		Help: "Commerce backend RPC calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(duration, calls)
	return &RPCMetrics{
		duration: duration,
		calls:    calls,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *RPCMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncCall increments the call counter for the named operation and outcome.
func (m *RPCMetrics) IncCall(operation, outcome string) {
	if m == nil || m.calls == nil {
		return
	}
	m.calls.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
