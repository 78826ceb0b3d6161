// Package processor implements the Payment Processor (spec.md §4.E): a
// long-running task that dequeues pending payments, submits them to the
// currently preferred upstream gateway, retries once on the opposite
// gateway on failure, and persists only on success.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dd0wney/paymentgw/pkg/chooser"
	"github.com/dd0wney/paymentgw/pkg/gateway"
	"github.com/dd0wney/paymentgw/pkg/metrics"
	"github.com/dd0wney/paymentgw/pkg/queue"
	"github.com/dd0wney/paymentgw/pkg/store"
)

// Endpoints resolves a Gateway to the upstream base URL to submit to.
type Endpoints struct {
	Default  string
	Fallback string
}

func (e Endpoints) baseURL(g gateway.Gateway) string {
	if g == gateway.Fallback {
		return e.Fallback
	}
	return e.Default
}

// upstreamRequest is the wire shape posted to {gateway}/payments
// (spec.md §6).
type upstreamRequest struct {
	CorrelationID string  `json:"correlationId"`
	Amount        float64 `json:"amount"`
	RequestedAt   string  `json:"requestedAt"`
}

// Processor drains a Queue and submits to upstream gateways.
type Processor struct {
	queue     *queue.Queue
	shared    *chooser.Shared
	repo      store.Interface
	endpoints Endpoints
	http      *http.Client
	metrics   *metrics.Registry

	workers int
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	retries atomic.Uint64
	dropped atomic.Uint64
}

// Stats returns the running count of retries (a first-gateway failure
// that triggered a second attempt on the opposite gateway) and drops (a
// payment lost after both gateways failed), for the operator dashboard's
// /internal/stats endpoint.
func (p *Processor) Stats() (retries, dropped uint64) {
	return p.retries.Load(), p.dropped.Load()
}

// New creates a Processor with the given worker concurrency
// (HANDLER_WORKERS-scoped consumers of the queue, per spec.md §5).
// registry may be nil, in which case no metrics are recorded.
func New(q *queue.Queue, shared *chooser.Shared, repo store.Interface, endpoints Endpoints, workers int, timeout time.Duration, registry *metrics.Registry) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		queue:     q,
		shared:    shared,
		repo:      repo,
		endpoints: endpoints,
		http:      &http.Client{Timeout: timeout},
		metrics:   registry,
		workers:   workers,
		stopCh:    make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (p *Processor) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.loop()
	}
}

// Stop signals every worker to exit after its current item and waits
// for them to return. The queue itself must be closed separately (it
// may be shared with producers that outlive this Processor): a worker
// blocked in Dequeue on an empty queue returns only once the queue is
// closed or yields an item, so Stop blocks until then.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
}

func (p *Processor) loop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		pending, ok := p.queue.Dequeue()
		if !ok {
			// Queue closed: drain until Stop also observes stopCh.
			select {
			case <-p.stopCh:
				return
			default:
				continue
			}
		}
		p.process(pending)
	}
}

// process implements spec.md §4.E steps 2-5: read the current gateway,
// submit, and on failure retry once against the opposite gateway.
func (p *Processor) process(pending queue.PendingPayment) {
	first := p.shared.Load()
	requestedAt := time.Now().UTC()

	if err := p.submit(first, pending, requestedAt); err == nil {
		return
	}

	p.shared.Flip(first)
	p.retries.Add(1)
	if p.metrics != nil {
		p.metrics.RecordProcessorRetry()
	}
	second := first.Other()
	requestedAt = time.Now().UTC()

	if err := p.submit(second, pending, requestedAt); err != nil {
		p.dropped.Add(1)
		if p.metrics != nil {
			p.metrics.RecordProcessorDropped()
		}
		slog.Warn("payment dropped after both gateways failed",
			"correlationId", pending.CorrelationID.String(), "amount", pending.Amount, "error", err)
	}
}

// submit POSTs to gateway g and, on 2xx, persists the payment at the
// instant submission began (spec.md §4.E: "requestedAt is the wall-clock
// instant at the beginning of the successful attempt").
func (p *Processor) submit(g gateway.Gateway, pending queue.PendingPayment, requestedAt time.Time) error {
	body := upstreamRequest{
		CorrelationID: pending.CorrelationID.String(),
		Amount:        roundCents(pending.Amount),
		RequestedAt:   requestedAt.Format("2006-01-02T15:04:05.000Z"),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("processor: marshal upstream request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.http.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoints.baseURL(g)+"/payments", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("processor: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	attemptStart := time.Now()
	resp, err := p.http.Do(req)
	if err != nil {
		p.recordAttempt(g, "error", time.Since(attemptStart))
		return fmt.Errorf("processor: submit to %s: %w", g.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.recordAttempt(g, "rejected", time.Since(attemptStart))
		return fmt.Errorf("processor: %s replied %d", g.String(), resp.StatusCode)
	}
	p.recordAttempt(g, "accepted", time.Since(attemptStart))

	millis := requestedAt.UnixMilli()
	repoStart := time.Now()
	err = p.repo.PostPayment(g, body.Amount, pending.CorrelationID, millis)
	if p.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		p.metrics.RecordRepositoryOperation("post_payment", g, status, time.Since(repoStart))
		if errors.Is(err, store.ErrMapFull) {
			p.metrics.RecordMapFull(g)
		}
	}
	if err != nil {
		slog.Error("processor: upstream accepted payment but persistence failed",
			"error", err, "gateway", g.String(), "correlationId", pending.CorrelationID.String())
	}
	return nil
}

func (p *Processor) recordAttempt(g gateway.Gateway, status string, duration time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordProcessorAttempt(g, status, duration)
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
