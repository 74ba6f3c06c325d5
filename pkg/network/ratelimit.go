// Package network provides per-connection input throttling.
// This file adapts the pack's IP-based HTTP rate limiter to key on player
// connection ID instead of source address, since every input command already
// arrives tagged with the player it belongs to.
package network

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures per-connection input throttling.
type RateLimitConfig struct {
	CommandsPerSecond float64       // Sustained input commands allowed per second
	Burst             int           // Maximum burst size
	CleanupInterval   time.Duration // How often stale entries are reaped
}

// DefaultRateLimitConfig returns production-safe defaults: generous enough
// for 60Hz client input polling, tight enough to blunt a flooding client.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		CommandsPerSecond: 120,
		Burst:             30,
		CleanupInterval:   5 * time.Minute,
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ConnectionRateLimiter throttles input commands per connected player.
type ConnectionRateLimiter struct {
	limiters sync.Map // map[uint64]*limiterEntry
	config   RateLimitConfig
	stopChan chan struct{}
	stopOnce sync.Once

	allowedCount  uint64 // atomic
	rejectedCount uint64 // atomic
}

// NewConnectionRateLimiter creates a limiter and starts its cleanup goroutine.
func NewConnectionRateLimiter(cfg RateLimitConfig) *ConnectionRateLimiter {
	rl := &ConnectionRateLimiter{
		config:   cfg,
		stopChan: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop terminates the cleanup goroutine.
func (rl *ConnectionRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

func (rl *ConnectionRateLimiter) getLimiter(playerID uint64) *rate.Limiter {
	now := time.Now()

	if entry, ok := rl.limiters.Load(playerID); ok {
		e := entry.(*limiterEntry)
		e.lastSeen = now
		return e.limiter
	}

	entry := &limiterEntry{
		limiter:  rate.NewLimiter(rate.Limit(rl.config.CommandsPerSecond), rl.config.Burst),
		lastSeen: now,
	}
	actual, _ := rl.limiters.LoadOrStore(playerID, entry)
	return actual.(*limiterEntry).limiter
}

// Allow reports whether the next input command from playerID should be accepted.
func (rl *ConnectionRateLimiter) Allow(playerID uint64) bool {
	if rl.getLimiter(playerID).Allow() {
		atomic.AddUint64(&rl.allowedCount, 1)
		return true
	}
	atomic.AddUint64(&rl.rejectedCount, 1)
	return false
}

// Forget removes a player's limiter state, called on disconnect.
func (rl *ConnectionRateLimiter) Forget(playerID uint64) {
	rl.limiters.Delete(playerID)
}

func (rl *ConnectionRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *ConnectionRateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.config.CleanupInterval * 2)
	rl.limiters.Range(func(key, value interface{}) bool {
		entry := value.(*limiterEntry)
		if entry.lastSeen.Before(cutoff) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// GetStats returns allowed/rejected counters for monitoring.
func (rl *ConnectionRateLimiter) GetStats() map[string]uint64 {
	return map[string]uint64{
		"allowed":  atomic.LoadUint64(&rl.allowedCount),
		"rejected": atomic.LoadUint64(&rl.rejectedCount),
	}
}
