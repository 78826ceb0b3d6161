package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initProcessorMetrics() {
	r.ProcessorAttemptsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "paymentgw_processor_attempts_total",
			Help: "Total number of upstream submission attempts by gateway and outcome",
		},
		[]string{"gateway", "status"},
	)

	r.ProcessorRetriesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "paymentgw_processor_retries_total",
			Help: "Total number of payments retried on the opposite gateway after a first-attempt failure",
		},
	)

	r.ProcessorDroppedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "paymentgw_processor_dropped_total",
			Help: "Total number of payments dropped after both gateways failed",
		},
	)

	r.ProcessorSubmitLatency = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paymentgw_processor_submit_duration_seconds",
			Help:    "Latency of one upstream submission attempt",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"gateway"},
	)
}
