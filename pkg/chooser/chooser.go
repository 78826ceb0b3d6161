// Package chooser implements the Gateway Chooser (spec.md §4.D): a
// coordinator-only control loop that health-polls both upstream payment
// processors and publishes the preferred gateway for every replica to
// read lock-free.
//
// Structured as a Start/Stop control loop with a stop channel and
// WaitGroup, grounded on the pack's replication.HealthSurveyor.
package chooser

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dd0wney/paymentgw/pkg/gateway"
	"github.com/dd0wney/paymentgw/pkg/metrics"
)

// Shared is the lock-free published gateway choice. Both the chooser
// (writer, on tick or on processor override) and every reader (the
// Payment Processor on each replica) use it via atomic load/store —
// spec.md §5: "Gateway atomic: any process may load; any process may
// store."
type Shared struct {
	value atomic.Uint32
}

// NewShared creates a Shared initialized to gateway.Default.
func NewShared() *Shared {
	s := &Shared{}
	s.value.Store(uint32(gateway.Default))
	return s
}

// Load returns the currently preferred gateway.
func (s *Shared) Load() gateway.Gateway {
	return gateway.Gateway(s.value.Load())
}

// Store publishes g as the preferred gateway.
func (s *Shared) Store(g gateway.Gateway) {
	s.value.Store(uint32(g))
}

// Flip unconditionally stores g.Other(), the Payment Processor's
// eager-override reaction to an upstream failure (spec.md §4.D,
// "Processor-initiated override").
func (s *Shared) Flip(g gateway.Gateway) {
	s.Store(g.Other())
}

// Chooser runs the periodic health-poll loop. It is only ever
// constructed on the coordinator replica.
type Chooser struct {
	shared   *Shared
	def      *HealthClient
	fallback *HealthClient
	poll     time.Duration
	metrics  *metrics.Registry

	lastDefault  healthReading
	lastFallback healthReading

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// LastStatus reports whether the most recently polled reading for each
// upstream was "failing", for health.GatewayCheck and the operator
// dashboard. Before the first tick, both report false.
func (c *Chooser) LastStatus() (defaultFailing, fallbackFailing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastDefault.status == statusFailing, c.lastFallback.status == statusFailing
}

// New creates a Chooser polling def and fallback every poll interval.
// registry may be nil, in which case no metrics are recorded.
func New(shared *Shared, def, fallback *HealthClient, poll time.Duration, registry *metrics.Registry) *Chooser {
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &Chooser{
		shared:   shared,
		def:      def,
		fallback: fallback,
		poll:     poll,
		metrics:  registry,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the poll loop. Safe to call once; a second call is a
// no-op.
func (c *Chooser) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.wg.Add(1)
	go c.loop()
}

// Stop signals the loop to exit and waits for it to return.
func (c *Chooser) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	close(c.stopCh)
	c.wg.Wait()
}

func (c *Chooser) loop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

func (c *Chooser) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), c.poll)
	defer cancel()

	def := c.def.Check(ctx)
	fallback := c.fallback.Check(ctx)

	c.mu.Lock()
	if def.status == statusUnknown {
		def = c.lastDefault
	}
	if fallback.status == statusUnknown {
		fallback = c.lastFallback
	}
	c.lastDefault, c.lastFallback = def, fallback
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.SetGatewayHealth(gateway.Default, def.status.String())
		c.metrics.SetGatewayHealth(gateway.Fallback, fallback.status.String())
	}

	current := c.shared.Load()
	choice := decide(def, fallback, current)
	flipped := choice != current
	if flipped {
		slog.Info("gateway chooser switching preference",
			"from", current.String(), "to", choice.String(),
			"default_status", def.status.String(), "fallback_status", fallback.status.String())
		c.shared.Store(choice)
	}
	if c.metrics != nil {
		c.metrics.SetGatewaySelected(choice, flipped)
	}
}

// decide applies spec.md §4.D's decision table. current is the
// presently published gateway, used only to avoid thrash in the
// unknown/healthy case.
func decide(def, fallback healthReading, current gateway.Gateway) gateway.Gateway {
	switch {
	case def.status == statusHealthy && fallback.status == statusHealthy:
		if def.minResponseTimeMs > 100 && def.minResponseTimeMs > 2*fallback.minResponseTimeMs {
			return gateway.Fallback
		}
		return gateway.Default

	case def.status == statusHealthy && fallback.status == statusFailing:
		return gateway.Default

	case def.status == statusFailing && fallback.status == statusHealthy:
		return gateway.Fallback

	case def.status == statusFailing && fallback.status == statusFailing:
		return gateway.Default

	case def.status == statusHealthy && fallback.status == statusUnknown:
		return gateway.Default

	case def.status == statusFailing && fallback.status == statusUnknown:
		return gateway.Fallback

	case def.status == statusUnknown && fallback.status == statusHealthy:
		if current == gateway.Default {
			return gateway.Default
		}
		return gateway.Fallback

	case def.status == statusUnknown && fallback.status == statusFailing:
		return gateway.Default

	default: // both unknown
		return gateway.Default
	}
}
