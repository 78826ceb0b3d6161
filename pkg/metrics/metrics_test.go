package metrics

import (
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/dd0wney/paymentgw/pkg/gateway"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal not initialized")
	}
	if r.RepositoryOperationsTotal == nil {
		t.Error("RepositoryOperationsTotal not initialized")
	}
	if r.QueueDepth == nil {
		t.Error("QueueDepth not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()
	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()
	r.RecordHTTPRequest("POST", "/payments", "200", 10*time.Millisecond)

	counter, err := r.HTTPRequestsTotal.GetMetricWithLabelValues("POST", "/payments", "200")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("Counter value = %v, want 1", metric.Counter.GetValue())
	}
}

func TestRecordRepositoryOperation(t *testing.T) {
	r := NewRegistry()
	r.RecordRepositoryOperation("postPayment", gateway.Default, "success", 2*time.Millisecond)
	r.RecordRepositoryOperation("postPayment", gateway.Default, "success", 3*time.Millisecond)
	r.RecordRepositoryOperation("postPayment", gateway.Default, "error", time.Millisecond)

	success, err := r.RepositoryOperationsTotal.GetMetricWithLabelValues("postPayment", "default", "success")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	var metric dto.Metric
	if err := success.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("success counter = %v, want 2", metric.Counter.GetValue())
	}
}

func TestRecordMapFull(t *testing.T) {
	r := NewRegistry()
	r.RecordMapFull(gateway.Fallback)

	counter, err := r.RepositoryMapFullTotal.GetMetricWithLabelValues("fallback")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("counter = %v, want 1", metric.Counter.GetValue())
	}
}

func TestQueueMetrics(t *testing.T) {
	r := NewRegistry()
	r.SetQueueDepth("pending", 7)
	r.RecordQueueEnqueue("pending", false)
	r.RecordQueueEnqueue("pending", true)

	depth, err := r.QueueDepth.GetMetricWithLabelValues("pending")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	var metric dto.Metric
	if err := depth.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if metric.Gauge.GetValue() != 7 {
		t.Errorf("depth = %v, want 7", metric.Gauge.GetValue())
	}

	dropped, err := r.QueueDroppedTotal.GetMetricWithLabelValues("pending")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	if err := dropped.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("dropped = %v, want 1", metric.Counter.GetValue())
	}
}

func TestProcessorMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordProcessorAttempt(gateway.Default, "success", 5*time.Millisecond)
	r.RecordProcessorRetry()
	r.RecordProcessorDropped()

	var metric dto.Metric
	if err := r.ProcessorRetriesTotal.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("retries = %v, want 1", metric.Counter.GetValue())
	}

	if err := r.ProcessorDroppedTotal.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("dropped = %v, want 1", metric.Counter.GetValue())
	}
}

func TestSetGatewaySelectedTracksFlips(t *testing.T) {
	r := NewRegistry()
	r.SetGatewaySelected(gateway.Default, false)
	r.SetGatewaySelected(gateway.Fallback, true)

	var metric dto.Metric
	if err := r.GatewayFlipsTotal.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("flips = %v, want 1", metric.Counter.GetValue())
	}

	fallback, err := r.GatewayCurrentSelected.GetMetricWithLabelValues("fallback")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	if err := fallback.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if metric.Gauge.GetValue() != 1 {
		t.Errorf("fallback selected = %v, want 1", metric.Gauge.GetValue())
	}
}

func TestGatewayHealthValue(t *testing.T) {
	cases := map[string]float64{"healthy": 1, "failing": 2, "unknown": 0, "": 0}
	for status, want := range cases {
		if got := GatewayHealthValue(status); got != want {
			t.Errorf("GatewayHealthValue(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestSystemMetrics(t *testing.T) {
	r := NewRegistry()
	r.UptimeSeconds.Set(3600)
	r.GoRoutines.Set(50)

	var metric dto.Metric
	if err := r.UptimeSeconds.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if metric.Gauge.GetValue() != 3600 {
		t.Errorf("UptimeSeconds = %v, want 3600", metric.Gauge.GetValue())
	}
}

func TestMetricNaming(t *testing.T) {
	r := NewRegistry()
	metrics, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, m := range metrics {
		if !strings.HasPrefix(m.GetName(), "paymentgw_") {
			t.Errorf("metric %s does not have paymentgw_ prefix", m.GetName())
		}
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				r.RecordHTTPRequest("POST", "/payments", "200", time.Millisecond)
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	counter, err := r.HTTPRequestsTotal.GetMetricWithLabelValues("POST", "/payments", "200")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if metric.Counter.GetValue() != 1000 {
		t.Errorf("counter = %v, want 1000", metric.Counter.GetValue())
	}
}
