package api

// PaymentRequest is the body of POST /payments (spec.md §4.F).
type PaymentRequest struct {
	CorrelationID string  `json:"correlationId" validate:"required,len=36"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
}

// SummaryBucket is one gateway's totals in a payments-summary response.
type SummaryBucket struct {
	TotalRequests uint64  `json:"totalRequests"`
	TotalAmount   float64 `json:"totalAmount"`
}

// SummaryResponse is the body of GET /payments-summary (spec.md §4.F).
type SummaryResponse struct {
	Default  SummaryBucket `json:"default"`
	Fallback SummaryBucket `json:"fallback"`
}

// ErrorResponse is the body of any non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string         `json:"status"`
	Uptime  string         `json:"uptime"`
	Checks  map[string]any `json:"checks"`
	Version string         `json:"version"`
}

// StatsResponse is the body of GET /internal/stats, consumed by the
// operator dashboard (cmd/paymentgw-dash).
type StatsResponse struct {
	QueueDepth      int    `json:"queueDepth"`
	CurrentGateway  string `json:"currentGateway"`
	ProcessorDrops  uint64 `json:"processorDrops"`
	ProcessorRetry  uint64 `json:"processorRetries"`
	DefaultFailing  bool   `json:"defaultFailing"`
	FallbackFailing bool   `json:"fallbackFailing"`
}
