package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGatewayMetrics() {
	r.GatewayFlipsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "paymentgw_gateway_flips_total",
			Help: "Total number of times the preferred gateway changed",
		},
	)

	r.GatewayCurrentSelected = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "paymentgw_gateway_current_selected",
			Help: "1 if the gateway is currently the preferred one, 0 otherwise",
		},
		[]string{"gateway"},
	)

	r.GatewayHealthStatus = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "paymentgw_gateway_health_status",
			Help: "Last observed health status per gateway (0=unknown, 1=healthy, 2=failing)",
		},
		[]string{"gateway"},
	)
}
