package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the authorization saga.
type Metrics struct {
	Approved        prometheus.Counter
	Rejected        *prometheus.CounterVec
	Failures        *prometheus.CounterVec
	PoisonMessages  prometheus.Counter
	HandleDuration  prometheus.Histogram
	OutboundLatency *prometheus.HistogramVec
}

// New creates and registers all saga metrics.
func New() *Metrics {
	return &Metrics{
		Approved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grantflow_requests_approved_total",
			Help: "Total number of access requests approved",
		}),
		Rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grantflow_requests_rejected_total",
			Help: "Total number of access requests rejected, labeled by reason",
		}, []string{"reason"}),
		Failures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grantflow_saga_failures_total",
			Help: "Total number of saga processing failures, labeled by step",
		}, []string{"step"}),
		PoisonMessages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grantflow_poison_messages_total",
			Help: "Total number of messages dropped after exhausting delivery attempts",
		}),
		HandleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "grantflow_saga_handle_seconds",
			Help:    "Duration of one saga handling pass",
			Buckets: prometheus.DefBuckets,
		}),
		OutboundLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grantflow_outbound_call_seconds",
			Help:    "Latency of outbound HTTP calls, labeled by target",
			Buckets: prometheus.DefBuckets,
		}, []string{"target"}),
	}
}
