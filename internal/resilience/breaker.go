// Package resilience provides a small circuit breaker guarding calls to
// the AgentLens backend. After a run of consecutive failures the breaker
// opens and calls fail fast with ErrOpen; once the cooldown elapses a
// single probe is let through, closing the breaker on success and
// re-opening it on failure.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without invoking the call while the breaker is open.
var ErrOpen = errors.New("backend circuit open")

// Breaker trips on consecutive failures and recovers via a cooldown probe.
type Breaker struct {
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time
	probing  bool
	now      func() time.Time
}

// New creates a breaker that opens after threshold consecutive failures
// and probes again after cooldown. A threshold below one disables tripping.
func New(threshold int, cooldown time.Duration) *Breaker {
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Do runs fn unless the breaker is open. The call's outcome feeds the
// failure count; Do returns fn's error unchanged.
func (b *Breaker) Do(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn()
	b.record(err == nil)
	return err
}

// Open reports whether calls would currently fail fast.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.threshold >= 1 && b.failures >= b.threshold &&
		b.now().Sub(b.openedAt) < b.cooldown
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.threshold < 1 || b.failures < b.threshold {
		return nil
	}
	if b.now().Sub(b.openedAt) < b.cooldown {
		return ErrOpen
	}
	// Cooldown elapsed: admit one probe, hold the rest until it resolves.
	if b.probing {
		return ErrOpen
	}
	b.probing = true
	return nil
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	if success {
		b.failures = 0
		return
	}
	b.failures++
	if b.threshold >= 1 && b.failures >= b.threshold {
		b.openedAt = b.now()
	}
}
