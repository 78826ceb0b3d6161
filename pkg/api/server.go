// Package api implements the Front-end Proxy & API Dispatcher (spec.md
// §4.F): the HTTP surface clients speak to, translating payment intake
// and summary requests into calls against the queue, the repository,
// and the gateway chooser's published state.
package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/paymentgw/pkg/api/middleware"
	"github.com/dd0wney/paymentgw/pkg/chooser"
	"github.com/dd0wney/paymentgw/pkg/health"
	"github.com/dd0wney/paymentgw/pkg/metrics"
	"github.com/dd0wney/paymentgw/pkg/processor"
	"github.com/dd0wney/paymentgw/pkg/queue"
	"github.com/dd0wney/paymentgw/pkg/store"
)

// Server wires the HTTP surface to the intake service's internals. A
// replica that is not the coordinator still gets a full Server: repo is
// then an *ipc.Remote forwarding to the coordinator, and chooser is nil
// since only the coordinator runs the poll loop.
type Server struct {
	repo      store.Interface
	queue     *queue.Queue
	shared    *chooser.Shared
	processor *processor.Processor
	chooser   *chooser.Chooser // nil on non-coordinator replicas
	health    *health.HealthChecker
	metrics   *metrics.Registry
	validate  *validator.Validate

	version   string
	startedAt time.Time

	mux http.Handler
}

// Config configures Server's optional middleware. Leaving RateLimit nil
// disables rate limiting entirely.
type Config struct {
	Version      string
	CORS         *middleware.CORSConfig
	RateLimit    *middleware.RateLimitConfig
	MaxBodyBytes int64
	TLSEnabled   bool
}

// DefaultMaxBodyBytes bounds a POST /payments body: the JSON payload is
// two small fields, so anything past a few kilobytes is abuse.
const DefaultMaxBodyBytes = 4 << 10

// NewServer builds a Server and registers every route and middleware.
// chooserLoop is nil on a replica that isn't the coordinator.
func NewServer(
	repo store.Interface,
	q *queue.Queue,
	shared *chooser.Shared,
	proc *processor.Processor,
	chooserLoop *chooser.Chooser,
	healthChecker *health.HealthChecker,
	metricsRegistry *metrics.Registry,
	cfg Config,
) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.CORS == nil {
		cfg.CORS = middleware.DefaultCORSConfig()
	}

	s := &Server{
		repo:      repo,
		queue:     q,
		shared:    shared,
		processor: proc,
		chooser:   chooserLoop,
		health:    healthChecker,
		metrics:   metricsRegistry,
		validate:  validator.New(),
		version:   cfg.Version,
		startedAt: time.Now(),
	}

	s.registerHealthChecks()
	s.mux = s.buildHandler(cfg)
	return s
}

// ServeHTTP makes Server itself usable as the argument to
// server.NewGracefulServer.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// pinger and sizer are satisfied by *store.Repository; the
// non-coordinator's *ipc.Remote implements neither, so these
// coordinator-only storage checks are simply never registered on those
// replicas.
type pinger interface {
	Ping() error
}

type sizer interface {
	Size() (used, total uint64)
}

func (s *Server) registerHealthChecks() {
	s.health.RegisterCheck("pending_queue", health.QueueCheck(s.queue.Len, 1000, 10000))
	if s.chooser != nil {
		s.health.RegisterCheck("gateway_chooser", health.GatewayCheck(s.gatewayState))
	}
	s.health.RegisterCheck("memory", health.MemoryCheck(readMemStats))
	if p, ok := s.repo.(pinger); ok {
		s.health.RegisterReadinessCheck("storage", health.DatabaseCheck(p.Ping))
	}
	if sz, ok := s.repo.(sizer); ok {
		s.health.RegisterCheck("disk_space", health.DiskSpaceCheck(sz.Size))
	}
	s.health.RegisterReadinessCheck("pending_queue", health.QueueCheck(s.queue.Len, 1000, 10000))
	s.health.RegisterLivenessCheck("process", func() health.Check {
		return health.SimpleCheck("process")
	})
}

func readMemStats() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}

func (s *Server) gatewayState() (current string, defaultFailing, fallbackFailing bool) {
	current = s.shared.Load().String()
	if s.chooser != nil {
		defaultFailing, fallbackFailing = s.chooser.LastStatus()
	}
	return current, defaultFailing, fallbackFailing
}

func (s *Server) buildHandler(cfg Config) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /payments", s.handlePostPayments)
	mux.HandleFunc("GET /payments-summary", s.handleGetPaymentsSummary)
	mux.HandleFunc("POST /purge-payments", s.handlePostPurgePayments)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/ready", s.health.ReadinessHandler())
	mux.HandleFunc("GET /health/live", s.health.LivenessHandler())
	mux.HandleFunc("GET /internal/stats", s.handleStats)
	mux.Handle("GET /metrics", metricsHandler(s.metrics))

	var limiter *middleware.RateLimiter
	if cfg.RateLimit != nil {
		limiter = middleware.NewRateLimiter(cfg.RateLimit)
	}

	chain := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.PanicRecovery(),
		middleware.Logging(middleware.GetRequestID),
		middleware.CORS(cfg.CORS),
		middleware.BodySizeLimit(cfg.MaxBodyBytes),
		middleware.SecurityHeaders(&middleware.SecurityHeadersConfig{TLSEnabled: cfg.TLSEnabled}),
		middleware.Metrics(s.metrics),
	}
	if limiter != nil {
		chain = append(chain, middleware.RateLimit(limiter, middleware.GetClientIP, nil))
	}

	var handler http.Handler = mux
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler
}
