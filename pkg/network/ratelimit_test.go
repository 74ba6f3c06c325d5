package network

import (
	"testing"
	"time"
)

// TestDefaultRateLimitConfig verifies sane defaults.
func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()

	if cfg.CommandsPerSecond <= 0 {
		t.Error("expected positive commands-per-second")
	}
	if cfg.Burst <= 0 {
		t.Error("expected positive burst")
	}
	if cfg.CleanupInterval <= 0 {
		t.Error("expected positive cleanup interval")
	}
}

// TestConnectionRateLimiter_AllowsWithinBurst verifies a fresh connection
// can send up to its burst allowance immediately.
func TestConnectionRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl := NewConnectionRateLimiter(RateLimitConfig{
		CommandsPerSecond: 10,
		Burst:             5,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		if !rl.Allow(1) {
			t.Fatalf("expected command %d within burst to be allowed", i)
		}
	}
}

// TestConnectionRateLimiter_RejectsOverBurst verifies a command beyond the
// burst allowance is rejected until the limiter refills.
func TestConnectionRateLimiter_RejectsOverBurst(t *testing.T) {
	rl := NewConnectionRateLimiter(RateLimitConfig{
		CommandsPerSecond: 1,
		Burst:             2,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	rl.Allow(1)
	rl.Allow(1)

	if rl.Allow(1) {
		t.Error("expected third immediate command to be rejected")
	}
}

// TestConnectionRateLimiter_PerPlayerIsolation verifies one player's usage
// doesn't exhaust another player's allowance.
func TestConnectionRateLimiter_PerPlayerIsolation(t *testing.T) {
	rl := NewConnectionRateLimiter(RateLimitConfig{
		CommandsPerSecond: 1,
		Burst:             1,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	if !rl.Allow(1) {
		t.Fatal("expected player 1's first command to be allowed")
	}
	if !rl.Allow(2) {
		t.Error("expected player 2's first command to be allowed despite player 1's usage")
	}
}

// TestConnectionRateLimiter_Forget verifies forgetting a player resets their limiter.
func TestConnectionRateLimiter_Forget(t *testing.T) {
	rl := NewConnectionRateLimiter(RateLimitConfig{
		CommandsPerSecond: 1,
		Burst:             1,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	rl.Allow(1)
	if rl.Allow(1) {
		t.Fatal("expected second immediate command to be rejected before forgetting")
	}

	rl.Forget(1)

	if !rl.Allow(1) {
		t.Error("expected a fresh limiter to allow the first command again after Forget")
	}
}

// TestConnectionRateLimiter_GetStats verifies allowed/rejected counters track usage.
func TestConnectionRateLimiter_GetStats(t *testing.T) {
	rl := NewConnectionRateLimiter(RateLimitConfig{
		CommandsPerSecond: 1,
		Burst:             1,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	rl.Allow(1)
	rl.Allow(1) // rejected

	stats := rl.GetStats()
	if stats["allowed"] != 1 {
		t.Errorf("expected 1 allowed, got %d", stats["allowed"])
	}
	if stats["rejected"] != 1 {
		t.Errorf("expected 1 rejected, got %d", stats["rejected"])
	}
}
