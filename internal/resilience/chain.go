package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrChainExhausted is returned when every provider in a [Chain] either
// failed or had an open breaker.
var ErrChainExhausted = errors.New("resilience: all providers failed")

// chainEntry pairs a provider with its dedicated breaker.
type chainEntry[T any] struct {
	name    string
	value   T
	breaker *Breaker
}

// Chain holds a primary provider and ordered fallbacks of the same type, each
// behind its own [Breaker]. Calls go to the first entry whose breaker admits
// them; on failure the next entry is tried.
//
// Chain is safe for concurrent use after construction. Append is not safe to
// call concurrently with Run.
type Chain[T any] struct {
	entries []chainEntry[T]
	breaker BreakerConfig
}

// NewChain creates a [Chain] with primary as its first entry. breaker is used
// as the template config for every entry's breaker (the Name field is
// overridden per entry).
func NewChain[T any](primaryName string, primary T, breaker BreakerConfig) *Chain[T] {
	c := &Chain[T]{breaker: breaker}
	c.Append(primaryName, primary)
	return c
}

// Append registers a fallback provider. Fallbacks are tried in registration
// order, after the primary.
func (c *Chain[T]) Append(name string, value T) {
	cfg := c.breaker
	cfg.Name = name
	c.entries = append(c.entries, chainEntry[T]{
		name:    name,
		value:   value,
		breaker: NewBreaker(cfg),
	})
}

// Names returns the entry names in trial order. Useful for logging the
// configured failover topology at startup.
func (c *Chain[T]) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.name
	}
	return names
}

// Run calls fn against each entry in order until one succeeds. Entries with
// open breakers are skipped. If every entry fails, the last error is wrapped
// in [ErrChainExhausted].
//
// This is a package-level function because Go does not allow extra type
// parameters on methods.
func Run[T, R any](c *Chain[T], fn func(T) (R, error)) (R, error) {
	var (
		lastErr error
		zero    R
	)
	for i := range c.entries {
		entry := &c.entries[i]
		var result R
		err := entry.breaker.Do(func() error {
			var callErr error
			result, callErr = fn(entry.value)
			return callErr
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, ErrBreakerOpen) {
			slog.Debug("skipping provider, breaker open", "provider", entry.name)
		} else {
			slog.Warn("provider failed, trying next",
				"provider", entry.name, "error", err)
		}
	}
	return zero, fmt.Errorf("%w: %v", ErrChainExhausted, lastErr)
}
