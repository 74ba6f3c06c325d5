// Package network provides anti-cheat violation tracking. This file
// generalizes the session-scoped rate-limiting idea behind
// ConnectionRateLimiter from "requests per second per key" to "violations
// per offense kind per player," with a kick threshold instead of a token
// bucket.
package network

import "sync"

// DefaultKickThreshold is how many violations, summed across all offense
// kinds, a player accumulates before AntiCheatMonitor recommends a kick.
const DefaultKickThreshold = 20

// AntiCheatMonitor tracks per-player violation counts across the bounded
// set of offense categories also used by the anticheat_violations_total
// metric ("speed", "range", "sequence") and reports when a player has
// crossed the kick threshold.
type AntiCheatMonitor struct {
	mu            sync.Mutex
	violations    map[uint64]int
	lastSeq       map[uint64]uint32
	kickThreshold int
}

// NewAntiCheatMonitor creates a monitor that recommends a kick once a
// player's violation count reaches kickThreshold.
func NewAntiCheatMonitor(kickThreshold int) *AntiCheatMonitor {
	if kickThreshold <= 0 {
		kickThreshold = DefaultKickThreshold
	}
	return &AntiCheatMonitor{
		violations:    make(map[uint64]int),
		lastSeq:       make(map[uint64]uint32),
		kickThreshold: kickThreshold,
	}
}

// record increments playerID's violation count for category and the
// matching Prometheus counter, returning whether the player has now
// crossed the kick threshold.
func (m *AntiCheatMonitor) record(playerID uint64, category string) bool {
	RecordAntiCheatViolation(category)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations[playerID]++
	return m.violations[playerID] >= m.kickThreshold
}

// CheckSequence validates that seq is greater than the last sequence number
// seen from playerID (out-of-order or replayed input is rejected). The
// first sequence number seen from a player is always accepted. Returns
// (accept, shouldKick).
func (m *AntiCheatMonitor) CheckSequence(playerID uint64, seq uint32) (accept, shouldKick bool) {
	m.mu.Lock()
	last, seen := m.lastSeq[playerID]
	if seen && seq <= last {
		m.mu.Unlock()
		return false, m.record(playerID, "sequence")
	}
	m.lastSeq[playerID] = seq
	m.mu.Unlock()
	return true, false
}

// CheckFrame flags a malformed or out-of-bounds input frame (wrong payload
// length, nonsensical field values). Returns whether the player should now
// be kicked.
func (m *AntiCheatMonitor) CheckFrame(playerID uint64) (shouldKick bool) {
	return m.record(playerID, "range")
}

// CheckSpeed validates that actualSpeed does not exceed maxSpeed by more
// than a 10% tolerance (matching the class-max * 1.1 allowance for network
// jitter and simulation rounding). Returns (accept, shouldKick).
func (m *AntiCheatMonitor) CheckSpeed(playerID uint64, actualSpeed, maxSpeed float64) (accept, shouldKick bool) {
	if actualSpeed <= maxSpeed*1.1 {
		return true, false
	}
	return false, m.record(playerID, "speed")
}

// Violations returns the total violation count recorded for playerID.
func (m *AntiCheatMonitor) Violations(playerID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.violations[playerID]
}

// Forget clears all anti-cheat state for playerID, called when the player
// disconnects (including when they're kicked) so a later reconnect under
// the same ID starts with a clean record.
func (m *AntiCheatMonitor) Forget(playerID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.violations, playerID)
	delete(m.lastSeq, playerID)
}
