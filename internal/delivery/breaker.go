package delivery

import (
	"sync"
	"time"
)

const (
	defaultBreakerThreshold = 5
	defaultBreakerCooldown  = 5 * time.Minute
)

// Breaker is a consecutive-failure circuit breaker guarding the webhook.
//
// It opens once failures reach the threshold and stays open until the
// cooldown has elapsed since the last failure. There is no timer: the reset
// happens lazily inside IsOpen, so the breaker flips back to closed on the
// next check after the cooldown, not at the moment the cooldown expires.
type Breaker struct {
	mu          sync.Mutex
	failures    int
	threshold   int
	cooldown    time.Duration
	lastFailure time.Time

	now func() time.Time
}

func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = defaultBreakerThreshold
	}
	if cooldown <= 0 {
		cooldown = defaultBreakerCooldown
	}
	return &Breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// IsOpen reports whether sends should be short-circuited.
//
// This is deliberately not a pure query: once the cooldown window has
// elapsed since the last failure it resets the failure count to zero and
// reports closed. Callers that only want to inspect state use State().
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return false
	}
	if !b.lastFailure.IsZero() && b.now().Sub(b.lastFailure) < b.cooldown {
		return true
	}
	// Cooldown elapsed: heal.
	b.failures = 0
	return false
}

// RecordFailure counts one failed logical send.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	b.failures++
	b.lastFailure = b.now()
	b.mu.Unlock()
}

// Reset closes the breaker unconditionally. Called after a successful send.
func (b *Breaker) Reset() {
	b.mu.Lock()
	b.failures = 0
	b.mu.Unlock()
}

// Configure updates the policy knobs without touching the failure count,
// so a config reload during an outage doesn't mask the outage.
func (b *Breaker) Configure(threshold int, cooldown time.Duration) {
	b.mu.Lock()
	if threshold > 0 {
		b.threshold = threshold
	}
	if cooldown > 0 {
		b.cooldown = cooldown
	}
	b.mu.Unlock()
}

// BreakerState is a read-only snapshot for the status endpoint.
type BreakerState struct {
	Failures    int       `json:"failures"`
	Threshold   int       `json:"threshold"`
	Open        bool      `json:"open"`
	LastFailure time.Time `json:"last_failure,omitzero"`
}

// State snapshots the breaker without the healing side effect of IsOpen.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	open := b.failures >= b.threshold &&
		!b.lastFailure.IsZero() && b.now().Sub(b.lastFailure) < b.cooldown
	return BreakerState{
		Failures:    b.failures,
		Threshold:   b.threshold,
		Open:        open,
		LastFailure: b.lastFailure,
	}
}
