package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/paymentgw/pkg/gateway"
	"github.com/dd0wney/paymentgw/pkg/metrics"
	"github.com/dd0wney/paymentgw/pkg/queue"
	"github.com/dd0wney/paymentgw/pkg/store"
)

func metricsHandler(registry *metrics.Registry) http.Handler {
	return promhttp.HandlerFor(registry.GetPrometheusRegistry(), promhttp.HandlerOpts{})
}

// handlePostPayments implements spec.md §4.F's POST /payments: validate,
// enqueue, and reply 200 without waiting for upstream submission.
func (s *Server) handlePostPayments(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
		return
	}

	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "validation_failed", formatValidationError(err))
		return
	}

	correlationID, err := store.ParseCorrelationID(req.CorrelationID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	dropped := s.queue.Enqueue(queue.PendingPayment{
		Amount:        req.Amount,
		CorrelationID: correlationID,
	})
	if s.metrics != nil {
		s.metrics.RecordQueueEnqueue("pending_payments", dropped)
		s.metrics.SetQueueDepth("pending_payments", s.queue.Len())
	}

	w.WriteHeader(http.StatusOK)
}

// handleGetPaymentsSummary implements spec.md §4.F's GET
// /payments-summary: sum both gateways' buckets over the optional
// [from, to] window and report two-decimal totals.
func (s *Server) handleGetPaymentsSummary(w http.ResponseWriter, r *http.Request) {
	from, err := parseBoundMillis(r.URL.Query().Get("from"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "from must be an ISO-8601 timestamp")
		return
	}
	to, err := parseBoundMillis(r.URL.Query().Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "to must be an ISO-8601 timestamp")
		return
	}

	def, err := s.repo.GetPaymentsSummary(gateway.Default, from, to)
	if err != nil {
		respondRepositoryError(w, err)
		return
	}
	fb, err := s.repo.GetPaymentsSummary(gateway.Fallback, from, to)
	if err != nil {
		respondRepositoryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SummaryResponse{
		Default:  SummaryBucket{TotalRequests: def.TotalRequests, TotalAmount: def.TotalAmount},
		Fallback: SummaryBucket{TotalRequests: fb.TotalRequests, TotalAmount: fb.TotalAmount},
	})
}

// handlePostPurgePayments implements spec.md §4.F's POST
// /purge-payments: empty both gateway buckets and drop anything still
// queued for submission. Test-support only, per spec.md §4.A.
func (s *Server) handlePostPurgePayments(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Purge(gateway.Default); err != nil {
		respondRepositoryError(w, err)
		return
	}
	if err := s.repo.Purge(gateway.Fallback); err != nil {
		respondRepositoryError(w, err)
		return
	}
	s.queue.Purge()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := s.health.Check()
	status := http.StatusOK
	if resp.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	checks := make(map[string]any, len(resp.Checks))
	for name, check := range resp.Checks {
		checks[name] = check
	}

	respondJSON(w, status, HealthResponse{
		Status:  string(resp.Status),
		Uptime:  time.Since(s.startedAt).String(),
		Checks:  checks,
		Version: s.version,
	})
}

// handleStats implements GET /internal/stats, consumed by the operator
// dashboard (cmd/paymentgw-dash).
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	retries, dropped := s.processor.Stats()
	current, defaultFailing, fallbackFailing := s.gatewayState()

	respondJSON(w, http.StatusOK, StatsResponse{
		QueueDepth:      s.queue.Len(),
		CurrentGateway:  current,
		ProcessorDrops:  dropped,
		ProcessorRetry:  retries,
		DefaultFailing:  defaultFailing,
		FallbackFailing: fallbackFailing,
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: code, Message: message, Code: status})
}

// respondRepositoryError maps pkg/store's sentinel and wrapped errors to
// an HTTP status, per spec.md §4.A and §7.
func respondRepositoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrMapFull):
		respondError(w, http.StatusInsufficientStorage, "map_full", "database map is full")
	case errors.Is(err, store.ErrInvalidGateway):
		respondError(w, http.StatusBadRequest, "invalid_gateway", "unknown gateway")
	case errors.Is(err, store.ErrClosed):
		respondError(w, http.StatusServiceUnavailable, "repository_closed", "repository is shutting down")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// parseBoundMillis parses an optional ISO-8601 timestamp query parameter
// into Unix milliseconds, returning nil for an empty value (an open
// bound, per spec.md §4.F).
func parseBoundMillis(v string) (*int64, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return nil, err
	}
	millis := t.UnixMilli()
	return &millis, nil
}
