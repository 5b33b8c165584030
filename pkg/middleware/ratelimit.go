package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrymomot/elysium/handler"
	"github.com/dmitrymomot/elysium/pkg/httperror"
)

// RateLimitConfig configures a token bucket per key.
type RateLimitConfig struct {
	// Capacity is the burst size.
	Capacity int
	// RefillRate tokens are added every RefillInterval.
	RefillRate     int
	RefillInterval time.Duration
	// Key picks the bucket for a request. Defaults to ClientIP.
	Key func(r *http.Request) string
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// staleAfter is how long an idle bucket is kept.
const staleAfter = time.Hour

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// RateLimiter keeps one in-memory token bucket per key.
type RateLimiter struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewRateLimiter validates cfg and returns a limiter.
func NewRateLimiter(cfg RateLimitConfig) (*RateLimiter, error) {
	if cfg.Capacity <= 0 || cfg.RefillRate <= 0 || cfg.RefillInterval <= 0 {
		return nil, fmt.Errorf("%w: capacity, refill rate and refill interval must be positive", ErrInvalidRateLimit)
	}
	if cfg.Key == nil {
		cfg.Key = ClientIP
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &RateLimiter{cfg: cfg, buckets: make(map[string]*bucket)}, nil
}

// Allow takes one token for key. It reports the tokens left and when the
// next refill happens. A denied request consumes nothing.
func (l *RateLimiter) Allow(key string) (allowed bool, remaining int, resetAt time.Time) {
	now := l.cfg.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.cfg.Capacity, lastRefill: now}
		l.buckets[key] = b
	}
	b.lastAccess = now

	if intervals := now.Sub(b.lastRefill) / l.cfg.RefillInterval; intervals > 0 {
		add := int64(intervals) * int64(l.cfg.RefillRate)
		b.tokens = int(min(int64(b.tokens)+add, int64(l.cfg.Capacity), math.MaxInt32))
		b.lastRefill = b.lastRefill.Add(intervals * l.cfg.RefillInterval)
	}
	resetAt = b.lastRefill.Add(l.cfg.RefillInterval)

	if b.tokens == 0 {
		return false, 0, resetAt
	}
	b.tokens--
	return true, b.tokens, resetAt
}

func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < staleAfter {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if now.Sub(b.lastAccess) > staleAfter {
			delete(l.buckets, key)
		}
	}
}

// Middleware sets the X-RateLimit headers and answers exhausted keys with
// the TooManyRequests envelope and Retry-After.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining, resetAt := l.Allow(l.cfg.Key(r))

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			wait := int(math.Ceil(resetAt.Sub(l.cfg.Now()).Seconds()))
			h.Set("Retry-After", strconv.Itoa(max(wait, 1)))
			handler.WriteError(w, r, httperror.TooManyRequests(), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
