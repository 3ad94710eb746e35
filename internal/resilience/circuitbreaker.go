// Package resilience protects the interview pipeline from flapping providers.
//
// [Breaker] is a three-state circuit breaker (closed → open → half-open).
// [Chain] composes a primary provider with ordered fallbacks, each behind its
// own breaker, so a degraded STT, LLM, or TTS backend is bypassed instead of
// stalling the conversation.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrBreakerOpen is returned by [Breaker.Do] while the breaker is open and the
// cooldown has not yet elapsed.
var ErrBreakerOpen = errors.New("resilience: breaker open")

// BreakerState is the operating mode of a [Breaker].
type BreakerState int

const (
	// BreakerClosed forwards all calls.
	BreakerClosed BreakerState = iota

	// BreakerOpen rejects calls with [ErrBreakerOpen] until the cooldown
	// elapses.
	BreakerOpen

	// BreakerHalfOpen lets a single probe call through. Success closes the
	// breaker, failure re-opens it.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a [Breaker]. Zero fields get defaults.
type BreakerConfig struct {
	// Name labels the breaker in log output.
	Name string

	// Threshold is the number of consecutive failures that opens the
	// breaker. Default: 3.
	Threshold int

	// Cooldown is how long the breaker stays open before admitting a
	// half-open probe. Default: 20s.
	Cooldown time.Duration
}

// Breaker is a consecutive-failure circuit breaker with a single-probe
// half-open state.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time // stubbed in tests

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
	probing  bool
}

// NewBreaker creates a [Breaker] from cfg, applying defaults for zero fields.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 20 * time.Second
	}
	return &Breaker{
		name:      cfg.Name,
		threshold: cfg.Threshold,
		cooldown:  cfg.Cooldown,
		now:       time.Now,
		state:     BreakerClosed,
	}
}

// Do runs fn if the breaker admits the call, recording the outcome. While
// open it returns [ErrBreakerOpen] without invoking fn. After the cooldown a
// single probe call is admitted at a time.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
		b.state = BreakerHalfOpen
		b.probing = false
		slog.Debug("breaker half-open", "breaker", b.name)
		fallthrough
	case BreakerHalfOpen:
		if b.probing {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
		b.probing = true
	}
	probe := b.state == BreakerHalfOpen
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if probe {
		b.probing = false
	}

	if err != nil {
		b.failures++
		if probe || b.failures >= b.threshold {
			if b.state != BreakerOpen {
				slog.Warn("breaker opened",
					"breaker", b.name, "consecutive_failures", b.failures)
			}
			b.state = BreakerOpen
			b.openedAt = b.now()
		}
		return err
	}

	if probe {
		slog.Info("breaker closed after probe", "breaker", b.name)
	}
	b.state = BreakerClosed
	b.failures = 0
	return nil
}

// State reports the breaker's current state. An open breaker whose cooldown
// has elapsed reports [BreakerHalfOpen]; the transition itself happens on the
// next [Breaker.Do].
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		return BreakerHalfOpen
	}
	return b.state
}

// Reset forces the breaker back to [BreakerClosed] and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.failures = 0
	b.probing = false
}
