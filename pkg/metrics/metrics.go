package metrics

import (
	"time"

	"github.com/dd0wney/paymentgw/pkg/gateway"
)

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize records the size of an HTTP response body.
func (r *Registry) RecordResponseSize(method, path string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(size)
}

// IncHTTPRequestsInFlight increments the in-flight HTTP request gauge.
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight decrements the in-flight HTTP request gauge.
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}

// RecordRepositoryOperation records one KV repository call.
func (r *Registry) RecordRepositoryOperation(operation string, g gateway.Gateway, status string, duration time.Duration) {
	r.RepositoryOperationsTotal.WithLabelValues(operation, g.String(), status).Inc()
	r.RepositoryOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordMapFull records a write rejected for exceeding the configured map size.
func (r *Registry) RecordMapFull(g gateway.Gateway) {
	r.RepositoryMapFullTotal.WithLabelValues(g.String()).Inc()
}

// SetQueueDepth publishes the current pending-payments queue length.
func (r *Registry) SetQueueDepth(queueName string, depth int) {
	r.QueueDepth.WithLabelValues(queueName).Set(float64(depth))
}

// RecordQueueEnqueue records one successful enqueue, and one drop if the
// queue was at capacity.
func (r *Registry) RecordQueueEnqueue(queueName string, dropped bool) {
	r.QueueEnqueuedTotal.WithLabelValues(queueName).Inc()
	if dropped {
		r.QueueDroppedTotal.WithLabelValues(queueName).Inc()
	}
}

// RecordProcessorAttempt records one upstream submission attempt.
func (r *Registry) RecordProcessorAttempt(g gateway.Gateway, status string, duration time.Duration) {
	r.ProcessorAttemptsTotal.WithLabelValues(g.String(), status).Inc()
	r.ProcessorSubmitLatency.WithLabelValues(g.String()).Observe(duration.Seconds())
}

// RecordProcessorRetry records a retry on the opposite gateway.
func (r *Registry) RecordProcessorRetry() {
	r.ProcessorRetriesTotal.Inc()
}

// RecordProcessorDropped records a payment dropped after both gateways failed.
func (r *Registry) RecordProcessorDropped() {
	r.ProcessorDroppedTotal.Inc()
}

// SetGatewaySelected publishes which gateway is currently preferred,
// incrementing the flip counter when the selection changes.
func (r *Registry) SetGatewaySelected(g gateway.Gateway, flipped bool) {
	r.GatewayCurrentSelected.WithLabelValues(gateway.Default.String()).Set(0)
	r.GatewayCurrentSelected.WithLabelValues(gateway.Fallback.String()).Set(0)
	r.GatewayCurrentSelected.WithLabelValues(g.String()).Set(1)
	if flipped {
		r.GatewayFlipsTotal.Inc()
	}
}

// GatewayHealthValue maps a health status string to the metric's numeric
// encoding (0=unknown, 1=healthy, 2=failing).
func GatewayHealthValue(status string) float64 {
	switch status {
	case "healthy":
		return 1
	case "failing":
		return 2
	default:
		return 0
	}
}

// SetGatewayHealth publishes the last observed health status for g.
func (r *Registry) SetGatewayHealth(g gateway.Gateway, status string) {
	r.GatewayHealthStatus.WithLabelValues(g.String()).Set(GatewayHealthValue(status))
}
