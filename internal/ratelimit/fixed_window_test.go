package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowLimiterRedis(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 2, time.Minute)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	if !limiter.Allow(ctx, "login:ip-1") {
		t.Fatalf("first request should pass")
	}
	if !limiter.Allow(ctx, "login:ip-1") {
		t.Fatalf("second request should pass")
	}
	if limiter.Allow(ctx, "login:ip-1") {
		t.Fatalf("third request should be blocked")
	}
	if !limiter.Allow(ctx, "login:ip-2") {
		t.Fatalf("other keys have their own quota")
	}

	now = now.Add(time.Minute)
	if !limiter.Allow(ctx, "login:ip-1") {
		t.Fatalf("next window should pass")
	}
}

func TestFixedWindowLimiterRedisFailClosed(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 1, time.Second)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	redis.Close()
	if limiter.Allow(context.Background(), "ip-1") {
		t.Fatalf("limiter should fail closed on redis errors")
	}
}

func TestFixedWindowLimiterRequiresRedisAddr(t *testing.T) {
	limiter, err := NewRedisFixedWindowLimiter("", "", "test:ratelimit", 1, time.Second)
	if err == nil || limiter != nil {
		t.Fatalf("expected constructor error for empty redis addr")
	}
}

func TestFixedWindowLimiterRequiresPositiveLimit(t *testing.T) {
	redis := miniredis.RunT(t)
	if _, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "", 0, time.Second); err == nil {
		t.Fatalf("expected constructor error for zero limit")
	}
}
