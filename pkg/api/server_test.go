package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/paymentgw/pkg/chooser"
	"github.com/dd0wney/paymentgw/pkg/gateway"
	"github.com/dd0wney/paymentgw/pkg/health"
	"github.com/dd0wney/paymentgw/pkg/metrics"
	"github.com/dd0wney/paymentgw/pkg/processor"
	"github.com/dd0wney/paymentgw/pkg/queue"
	"github.com/dd0wney/paymentgw/pkg/store"
)

// fakeRepo is an in-memory store.Interface for exercising the HTTP layer
// without a bbolt environment.
type fakeRepo struct {
	summaries map[gateway.Gateway]store.Summary
	purged    []gateway.Gateway
	posted    int
	failNext  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{summaries: make(map[gateway.Gateway]store.Summary)}
}

func (f *fakeRepo) PostPayment(g gateway.Gateway, amount float64, correlationID store.CorrelationID, requestedAtMillis int64) error {
	f.posted++
	return nil
}

func (f *fakeRepo) GetPaymentsSummary(g gateway.Gateway, from, to *int64) (store.Summary, error) {
	if f.failNext != nil {
		return store.Summary{}, f.failNext
	}
	return f.summaries[g], nil
}

func (f *fakeRepo) Purge(g gateway.Gateway) error {
	f.purged = append(f.purged, g)
	return nil
}

func testServer(t *testing.T, repo store.Interface) (*Server, *queue.Queue) {
	t.Helper()
	q := queue.New(0)
	shared := chooser.NewShared()
	reg := metrics.NewRegistry()
	proc := processor.New(q, shared, repo, processor.Endpoints{Default: "http://127.0.0.1:1", Fallback: "http://127.0.0.1:1"}, 1, time.Second, reg)
	hc := health.NewHealthChecker()
	s := NewServer(repo, q, shared, proc, nil, hc, reg, Config{Version: "test"})
	return s, q
}

func TestPostPaymentsValidAccepted(t *testing.T) {
	repo := newFakeRepo()
	s, q := testServer(t, repo)

	body := `{"correlationId":"4a7901b8-7d26-4d9d-aa19-4dc1c7cf60b3","amount":19.9}`
	req := httptest.NewRequest("POST", "/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	if q.Len() != 1 {
		t.Fatalf("queue length = %d, want 1", q.Len())
	}
}

func TestPostPaymentsRejectsBadCorrelationID(t *testing.T) {
	s, _ := testServer(t, newFakeRepo())

	body := `{"correlationId":"not-a-uuid","amount":19.9}`
	req := httptest.NewRequest("POST", "/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostPaymentsRejectsNonPositiveAmount(t *testing.T) {
	s, _ := testServer(t, newFakeRepo())

	body := `{"correlationId":"4a7901b8-7d26-4d9d-aa19-4dc1c7cf60b3","amount":0}`
	req := httptest.NewRequest("POST", "/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetPaymentsSummaryReportsBothGateways(t *testing.T) {
	repo := newFakeRepo()
	repo.summaries[gateway.Default] = store.Summary{TotalRequests: 3, TotalAmount: 30.5}
	repo.summaries[gateway.Fallback] = store.Summary{TotalRequests: 1, TotalAmount: 10}
	s, _ := testServer(t, repo)

	req := httptest.NewRequest("GET", "/payments-summary", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Default.TotalRequests != 3 || got.Fallback.TotalRequests != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestGetPaymentsSummaryParsesFromTo(t *testing.T) {
	s, _ := testServer(t, newFakeRepo())

	req := httptest.NewRequest("GET", "/payments-summary?from=2025-01-01T00:00:00.000Z&to=2025-01-02T00:00:00.000Z", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
}

func TestGetPaymentsSummaryRejectsBadTimestamp(t *testing.T) {
	s, _ := testServer(t, newFakeRepo())

	req := httptest.NewRequest("GET", "/payments-summary?from=not-a-date", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPurgePaymentsClearsBothGatewaysAndQueue(t *testing.T) {
	repo := newFakeRepo()
	s, q := testServer(t, repo)
	q.Enqueue(queue.PendingPayment{Amount: 1})

	req := httptest.NewRequest("POST", "/purge-payments", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(repo.purged) != 2 {
		t.Fatalf("purged %d gateways, want 2", len(repo.purged))
	}
	if q.Len() != 0 {
		t.Fatalf("queue length = %d, want 0 after purge", q.Len())
	}
}

func TestHealthEndpointReportsHealthy(t *testing.T) {
	s, _ := testServer(t, newFakeRepo())

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Status != "healthy" {
		t.Fatalf("status = %q, want healthy", got.Status)
	}
}

func TestStatsEndpointReflectsQueueDepth(t *testing.T) {
	s, q := testServer(t, newFakeRepo())
	q.Enqueue(queue.PendingPayment{Amount: 1})
	q.Enqueue(queue.PendingPayment{Amount: 2})

	req := httptest.NewRequest("GET", "/internal/stats", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var got StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.QueueDepth != 2 {
		t.Fatalf("QueueDepth = %d, want 2", got.QueueDepth)
	}
	if got.CurrentGateway != "default" {
		t.Fatalf("CurrentGateway = %q, want default", got.CurrentGateway)
	}
}
