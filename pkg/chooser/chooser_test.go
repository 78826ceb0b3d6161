package chooser

import (
	"testing"
	"time"

	"github.com/dd0wney/paymentgw/pkg/gateway"
)

func TestDecideTable(t *testing.T) {
	cases := []struct {
		name     string
		def      healthReading
		fallback healthReading
		current  gateway.Gateway
		want     gateway.Gateway
	}{
		{"both healthy, default fast", healthReading{status: statusHealthy, minResponseTimeMs: 10}, healthReading{status: statusHealthy, minResponseTimeMs: 10}, gateway.Default, gateway.Default},
		{"both healthy, default slow", healthReading{status: statusHealthy, minResponseTimeMs: 250}, healthReading{status: statusHealthy, minResponseTimeMs: 50}, gateway.Default, gateway.Fallback},
		{"both healthy, default slow but not 2x", healthReading{status: statusHealthy, minResponseTimeMs: 150}, healthReading{status: statusHealthy, minResponseTimeMs: 100}, gateway.Default, gateway.Default},
		{"default healthy, fallback failing", healthReading{status: statusHealthy}, healthReading{status: statusFailing}, gateway.Default, gateway.Default},
		{"default failing, fallback healthy", healthReading{status: statusFailing}, healthReading{status: statusHealthy}, gateway.Default, gateway.Fallback},
		{"both failing", healthReading{status: statusFailing}, healthReading{status: statusFailing}, gateway.Fallback, gateway.Default},
		{"default healthy, fallback unknown", healthReading{status: statusHealthy}, healthReading{status: statusUnknown}, gateway.Default, gateway.Default},
		{"default failing, fallback unknown", healthReading{status: statusFailing}, healthReading{status: statusUnknown}, gateway.Default, gateway.Fallback},
		{"default unknown, fallback healthy, current default", healthReading{status: statusUnknown}, healthReading{status: statusHealthy}, gateway.Default, gateway.Default},
		{"default unknown, fallback healthy, current fallback", healthReading{status: statusUnknown}, healthReading{status: statusHealthy}, gateway.Fallback, gateway.Fallback},
		{"default unknown, fallback failing", healthReading{status: statusUnknown}, healthReading{status: statusFailing}, gateway.Fallback, gateway.Default},
		{"both unknown", healthReading{status: statusUnknown}, healthReading{status: statusUnknown}, gateway.Fallback, gateway.Default},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := decide(tc.def, tc.fallback, tc.current)
			if got != tc.want {
				t.Errorf("decide() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSharedDefaultsToDefault(t *testing.T) {
	s := NewShared()
	if s.Load() != gateway.Default {
		t.Fatalf("Load() = %v, want Default", s.Load())
	}
}

func TestSharedFlipTogglesToOther(t *testing.T) {
	s := NewShared()
	s.Flip(gateway.Default)
	if s.Load() != gateway.Fallback {
		t.Fatalf("Load() = %v, want Fallback after Flip(Default)", s.Load())
	}
	s.Flip(gateway.Fallback)
	if s.Load() != gateway.Default {
		t.Fatalf("Load() = %v, want Default after Flip(Fallback)", s.Load())
	}
}

func TestStartStopIsIdempotent(t *testing.T) {
	shared := NewShared()
	def := NewHealthClient("http://127.0.0.1:1", 0)
	fallback := NewHealthClient("http://127.0.0.1:1", 0)
	c := New(shared, def, fallback, 0, nil)

	c.Start()
	c.Start() // no-op, must not deadlock or double-start the loop
	c.Stop()
	c.Stop() // no-op
}

func TestLastStatusBeforeFirstTick(t *testing.T) {
	shared := NewShared()
	def := NewHealthClient("http://127.0.0.1:1", 0)
	fallback := NewHealthClient("http://127.0.0.1:1", 0)
	c := New(shared, def, fallback, time.Hour, nil)

	defaultFailing, fallbackFailing := c.LastStatus()
	if defaultFailing || fallbackFailing {
		t.Fatalf("LastStatus() before any tick = (%v, %v), want (false, false)", defaultFailing, fallbackFailing)
	}
}
