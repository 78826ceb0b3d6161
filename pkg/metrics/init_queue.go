package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initQueueMetrics() {
	r.QueueDepth = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "paymentgw_queue_depth",
			Help: "Current number of pending payments awaiting submission",
		},
		[]string{"queue"},
	)

	r.QueueDroppedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "paymentgw_queue_dropped_total",
			Help: "Total number of pending payments dropped because the queue was at capacity",
		},
		[]string{"queue"},
	)

	r.QueueEnqueuedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "paymentgw_queue_enqueued_total",
			Help: "Total number of payments enqueued for upstream submission",
		},
		[]string{"queue"},
	)
}
