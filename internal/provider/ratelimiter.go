package provider

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrRateLimited is returned when a search API answers 429. The limiter is
// paused until the reset time the API announced.
var ErrRateLimited = errors.New("search API rate limit reached")

// RateLimiter is a token bucket shared by the calls of one provider. A
// provider that hits a server side limit pauses it with PauseUntil.
type RateLimiter struct {
	mu             sync.Mutex
	tokens         int
	maxTokens      int
	refillInterval time.Duration
	lastRefill     time.Time
	pausedUntil    time.Time
	now            func() time.Time
}

// NewRateLimiter allows a burst of maxTokens calls and adds one token per
// refillInterval.
func NewRateLimiter(maxTokens int, refillInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
		now:            time.Now,
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		delay := r.reserve()
		r.mu.Unlock()
		if delay <= 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// PauseUntil empties the bucket and holds every call until t.
func (r *RateLimiter) PauseUntil(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.After(r.pausedUntil) {
		r.pausedUntil = t
	}
	r.tokens = 0
	r.lastRefill = t
}

// reserve takes a token and returns zero, or returns how long to wait.
func (r *RateLimiter) reserve() time.Duration {
	now := r.now()
	if now.Before(r.pausedUntil) {
		return r.pausedUntil.Sub(now)
	}
	r.refill(now)
	if r.tokens > 0 {
		r.tokens--
		return 0
	}
	return r.refillInterval - now.Sub(r.lastRefill)
}

func (r *RateLimiter) refill(now time.Time) {
	elapsed := now.Sub(r.lastRefill)
	newTokens := int(elapsed / r.refillInterval)
	if newTokens > 0 {
		r.tokens += newTokens
		if r.tokens > r.maxTokens {
			r.tokens = r.maxTokens
		}
		r.lastRefill = r.lastRefill.Add(time.Duration(newTokens) * r.refillInterval)
	}
}

// resetFromHeader reads a rate limit reset header. Twitter sends the reset
// as a unix timestamp, Reddit as seconds from now; values below a day are
// taken as relative.
func resetFromHeader(h http.Header, key string, now time.Time) (time.Time, bool) {
	v := strings.TrimSpace(h.Get(key))
	if v == "" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs <= 0 {
		return time.Time{}, false
	}
	if secs < 86400 {
		return now.Add(time.Duration(secs * float64(time.Second))), true
	}
	return time.Unix(int64(secs), 0), true
}
