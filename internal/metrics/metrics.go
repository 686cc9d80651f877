// Package metrics exposes the relay's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Poll cycle metrics
var (
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gardenbell_poll_cycles_total",
			Help: "Poll cycles run, by outcome.",
		},
		[]string{"outcome"}, // ok | fetch_error
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gardenbell_poll_cycle_duration_seconds",
			Help:    "Wall time of a full poll cycle.",
			Buckets: prometheus.DefBuckets,
		},
	)

	DeltasDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gardenbell_deltas_detected_total",
			Help: "Deltas produced by the change detector, by kind.",
		},
		[]string{"kind"}, // items | weather | event
	)
)

// Notification metrics
var (
	IntentsPlanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gardenbell_intents_planned_total",
			Help: "Notification intents produced by the policy engine, by kind.",
		},
		[]string{"kind"},
	)

	DedupeSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gardenbell_dedupe_suppressed_total",
			Help: "Intents dropped by the sliding-window dedup cache.",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gardenbell_notifications_sent_total",
			Help: "Gateway dispatch results, by status.",
		},
		[]string{"status"}, // sent | failed | compose_error
	)
)

// Registry metrics
var (
	RegisteredDevices = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gardenbell_registered_devices",
			Help: "Devices currently held in the in-memory registry.",
		},
	)
)
