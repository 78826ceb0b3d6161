package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRepositoryMetrics() {
	r.RepositoryOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "paymentgw_repository_operations_total",
			Help: "Total number of KV repository operations by gateway and outcome",
		},
		[]string{"operation", "gateway", "status"},
	)

	r.RepositoryOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paymentgw_repository_operation_duration_seconds",
			Help:    "KV repository operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	r.RepositoryMapFullTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "paymentgw_repository_map_full_total",
			Help: "Total number of writes rejected because the configured map size was reached",
		},
		[]string{"gateway"},
	)
}
