package retry

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

// BreakerConfig enables a circuit breaker on a client: Threshold failures
// within Window open the circuit for Cooldown, after which a single probe
// request decides whether it closes again.
type BreakerConfig struct {
	Threshold uint32
	Window    time.Duration
	Cooldown  time.Duration
}

// Breaker wraps transport execution in a circuit breaker. A nil *Breaker is
// a passthrough, so callers never branch on whether one is configured.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// NewBreaker builds a breaker for the given client name, or nil when the
// policy carries no breaker block.
func NewBreaker[T any](name string, cfg *BreakerConfig) *Breaker[T] {
	if cfg == nil {
		return nil
	}
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 5
	}
	cooldown := cfg.Cooldown
	if cooldown == 0 {
		cooldown = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Window,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.TotalFailures >= threshold
		},
		// Client-level API errors must not open the circuit; only network
		// failures and server-side trouble count.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if apiErr, ok := errdefs.AsAPI(err); ok {
				return apiErr.StatusCode < 500 &&
					apiErr.StatusCode != 429 &&
					apiErr.StatusCode != 408
			}
			return !errdefs.IsTransport(err)
		},
	}
	return &Breaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Do executes fn under the breaker. An open circuit surfaces as a transport
// error without invoking fn.
func (b *Breaker[T]) Do(fn func() (T, error)) (T, error) {
	if b == nil {
		return fn()
	}
	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return v, errdefs.Transportf("circuit breaker open: %v", err)
	}
	return v, err
}
