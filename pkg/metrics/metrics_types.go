package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the payment intake service.
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Repository Metrics (pkg/store)
	RepositoryOperationsTotal   *prometheus.CounterVec
	RepositoryOperationDuration *prometheus.HistogramVec
	RepositoryMapFullTotal      *prometheus.CounterVec

	// Queue Metrics (pkg/queue)
	QueueDepth         *prometheus.GaugeVec
	QueueDroppedTotal  *prometheus.CounterVec
	QueueEnqueuedTotal *prometheus.CounterVec

	// Processor Metrics (pkg/processor)
	ProcessorAttemptsTotal *prometheus.CounterVec
	ProcessorRetriesTotal  prometheus.Counter
	ProcessorDroppedTotal  prometheus.Counter
	ProcessorSubmitLatency *prometheus.HistogramVec

	// Gateway Chooser Metrics (pkg/chooser)
	GatewayFlipsTotal      prometheus.Counter
	GatewayCurrentSelected *prometheus.GaugeVec
	GatewayHealthStatus    *prometheus.GaugeVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initRepositoryMetrics()
	r.initQueueMetrics()
	r.initProcessorMetrics()
	r.initGatewayMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
