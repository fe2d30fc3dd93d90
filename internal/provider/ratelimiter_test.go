package provider

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestRateLimiterAllowsBurst(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	ctx := context.Background()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Fatalf("burst waits should return immediately")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	limiter := NewRateLimiter(1, 5*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("expected token after refill, got %v", err)
	}
}

func TestRateLimiterHonorsContext(t *testing.T) {
	limiter := NewRateLimiter(1, time.Second)
	ctx := context.Background()
	_ = limiter.Wait(ctx)

	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := limiter.Wait(timeoutCtx); err == nil {
		t.Fatal("expected context deadline error")
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Fatalf("wait should stop after context cancellation")
	}
}

func TestRateLimiterPauseUntil(t *testing.T) {
	limiter := NewRateLimiter(5, time.Millisecond)
	limiter.PauseUntil(time.Now().Add(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("expected paused limiter to block until the deadline")
	}
}

func TestResetFromHeader(t *testing.T) {
	now := time.Date(2023, 1, 5, 12, 0, 0, 0, time.UTC)

	h := http.Header{}
	h.Set("x-rate-limit-reset", "1672920900")
	got, ok := resetFromHeader(h, "x-rate-limit-reset", now)
	if !ok || !got.Equal(time.Unix(1672920900, 0)) {
		t.Fatalf("expected absolute reset, got %v %v", got, ok)
	}

	h.Set("x-ratelimit-reset", "42.0")
	got, ok = resetFromHeader(h, "x-ratelimit-reset", now)
	if !ok || !got.Equal(now.Add(42*time.Second)) {
		t.Fatalf("expected relative reset, got %v %v", got, ok)
	}

	if _, ok := resetFromHeader(http.Header{}, "x-rate-limit-reset", now); ok {
		t.Fatal("expected missing header to be ignored")
	}
}
