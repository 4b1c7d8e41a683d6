// Package retry defines the resilience policy governing every REST call:
// capped exponential backoff with jitter, status- and method-gated retry
// conditions, Retry-After handling, and an optional circuit breaker.
package retry

import (
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/joshrotenberg/redisctl/internal/config"
)

// Default policy values. Per-profile [profiles.<name>.resilience] blocks
// override individual fields.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 10 * time.Second
	DefaultMultiplier     = 2.0
	DefaultJitter         = 0.2
)

// jitterFloat is swappable for deterministic backoff tests.
var jitterFloat = rand.Float64

// Policy holds the knobs for one client's request execution.
type Policy struct {
	// Timeout bounds a single attempt end to end.
	Timeout time.Duration
	// ConnectTimeout bounds dialing and TLS handshake.
	ConnectTimeout time.Duration
	// MaxAttempts counts the first try plus retries.
	MaxAttempts int

	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	// Jitter is the fraction by which a computed backoff is randomized in
	// both directions, e.g. 0.2 spreads a 1s backoff across 0.8s to 1.2s.
	Jitter float64

	// RetryStatuses lists the HTTP statuses worth another attempt.
	RetryStatuses []int
	// RetryNetworkErrors allows retrying attempts that failed before any
	// response arrived. Never applies to POST, which may have reached the
	// server.
	RetryNetworkErrors bool

	// Breaker, when set, trips the client open after repeated failures.
	Breaker *BreakerConfig
}

// Default returns the stock policy applied when a profile carries no
// resilience block.
func Default() Policy {
	return Policy{
		Timeout:            DefaultTimeout,
		ConnectTimeout:     DefaultConnectTimeout,
		MaxAttempts:        DefaultMaxAttempts,
		InitialBackoff:     DefaultInitialBackoff,
		MaxBackoff:         DefaultMaxBackoff,
		Multiplier:         DefaultMultiplier,
		Jitter:             DefaultJitter,
		RetryStatuses:      []int{408, 429, 500, 502, 503, 504},
		RetryNetworkErrors: true,
	}
}

// FromConfig merges a profile's resilience override block over the defaults.
// Zero fields keep their default.
func FromConfig(r *config.Resilience) Policy {
	p := Default()
	if r == nil {
		return p
	}
	if r.TimeoutMS > 0 {
		p.Timeout = time.Duration(r.TimeoutMS) * time.Millisecond
	}
	if r.ConnectTimeoutMS > 0 {
		p.ConnectTimeout = time.Duration(r.ConnectTimeoutMS) * time.Millisecond
	}
	if r.MaxAttempts > 0 {
		p.MaxAttempts = r.MaxAttempts
	}
	if r.InitialBackoffMS > 0 {
		p.InitialBackoff = time.Duration(r.InitialBackoffMS) * time.Millisecond
	}
	if r.MaxBackoffMS > 0 {
		p.MaxBackoff = time.Duration(r.MaxBackoffMS) * time.Millisecond
	}
	if r.Multiplier > 1 {
		p.Multiplier = r.Multiplier
	}
	if r.Jitter > 0 {
		p.Jitter = min(r.Jitter, 1.0)
	}
	return p
}

// ShouldRetry decides whether a failed attempt is worth repeating. A non-nil
// err means the attempt died before a response arrived; otherwise status is
// the response code. Only idempotent methods retry freely; POST retries are
// restricted to statuses that guarantee the request was not processed.
func (p Policy) ShouldRetry(method string, status int, err error) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		if err != nil {
			return p.RetryNetworkErrors
		}
		return p.retryStatus(status)
	case http.MethodPost:
		if err != nil {
			return false
		}
		return status == http.StatusRequestTimeout ||
			status == http.StatusTooManyRequests ||
			status == http.StatusServiceUnavailable
	default:
		return false
	}
}

func (p Policy) retryStatus(status int) bool {
	for _, s := range p.RetryStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// BackoffFor computes the wait before retry number attempt (1-based), as a
// capped exponential of the initial backoff spread by the jitter fraction.
func (p Policy) BackoffFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.InitialBackoff)
	for i := 1; i < attempt; i++ {
		d *= p.Multiplier
		if d >= float64(p.MaxBackoff) {
			d = float64(p.MaxBackoff)
			break
		}
	}
	if p.Jitter > 0 {
		d *= 1 + p.Jitter*(2*jitterFloat()-1)
	}
	if capped := float64(p.MaxBackoff); d > capped {
		d = capped
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// RetryAfter reports the server-mandated wait from a 429 or 503 response.
// The header value may be delta-seconds or an HTTP date. Responses with
// other statuses, or without a parseable header, report false so the caller
// falls back to computed backoff.
func RetryAfter(resp *http.Response) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return 0, false
	}
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		d := time.Until(at)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}
