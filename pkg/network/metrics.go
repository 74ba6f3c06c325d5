// Package network provides operator-facing metrics for the game server.
// This file registers Prometheus collectors for tick timing, connection
// counts, and message throughput, with bounded label cardinality so a
// hostile client can't inflate the metric set.
package network

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	simTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shardkeep_sim_tick_duration_seconds",
		Help:    "Time spent advancing the authoritative simulation one tick",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.02, 0.05, 0.1},
	})

	connectedPlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shardkeep_connected_players",
		Help: "Current number of connected players",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardkeep_connection_rejected_total",
		Help: "Connections rejected before a player entity was created",
	}, []string{"reason"}) // bounded: "origin", "capacity", "rate_limit"

	inputCommandsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shardkeep_input_commands_total",
		Help: "Total input commands accepted from clients",
	})

	inputCommandsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardkeep_input_commands_dropped_total",
		Help: "Input commands dropped before reaching the game loop",
	}, []string{"reason"}) // bounded: "rate_limit", "queue_full", "decode_error"

	stateUpdatesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shardkeep_state_updates_sent_total",
		Help: "Total state update messages written to client sockets",
	})

	antiCheatViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardkeep_anticheat_violations_total",
		Help: "Anti-cheat violations recorded per category",
	}, []string{"category"}) // bounded: "speed", "range", "sequence"

	aoiBatchTruncations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shardkeep_aoi_batch_truncations_total",
		Help: "Ticks where a client's visible entity count exceeded the AOI batch cap",
	})
)

// RecordSimTick records the wall-clock duration of one simulation tick.
func RecordSimTick(d time.Duration) {
	simTickDuration.Observe(d.Seconds())
}

// SetConnectedPlayers updates the connected-player gauge.
func SetConnectedPlayers(n int) {
	connectedPlayers.Set(float64(n))
}

// RecordConnectionRejected increments the rejection counter for a bounded reason.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordInputCommand increments the accepted input command counter.
func RecordInputCommand() {
	inputCommandsTotal.Inc()
}

// RecordInputDropped increments the dropped input command counter for a bounded reason.
func RecordInputDropped(reason string) {
	inputCommandsDropped.WithLabelValues(reason).Inc()
}

// RecordStateUpdateSent increments the sent state update counter.
func RecordStateUpdateSent() {
	stateUpdatesSent.Inc()
}

// RecordAntiCheatViolation increments the violation counter for a bounded category.
func RecordAntiCheatViolation(category string) {
	antiCheatViolations.WithLabelValues(category).Inc()
}

// RecordAOIBatchTruncated increments the counter for ticks where a client's
// in-view entity set exceeded the batch cap and had to be trimmed.
func RecordAOIBatchTruncated() {
	aoiBatchTruncations.Inc()
}
