// Package metrics defines the hub's Prometheus instrumentation.
// All collectors register on the default registry and are served by the
// HTTP server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SamplesAccepted counts telemetry samples that passed validation and
	// were applied to the state store.
	SamplesAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetglass_samples_accepted_total",
			Help: "Total number of accepted telemetry samples.",
		},
	)

	// SamplesRejected counts rejected samples by reason
	// (validation, stale_timestamp).
	SamplesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetglass_samples_rejected_total",
			Help: "Total number of rejected telemetry samples.",
		},
		[]string{"reason"},
	)

	// EventsPublished counts events handed to the broadcast hub.
	EventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetglass_events_published_total",
			Help: "Total number of events published to the broadcast hub.",
		},
	)

	// EventsDropped counts events evicted from a saturated observer queue.
	// Drops are policy (bounded staleness), not faults.
	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetglass_events_dropped_total",
			Help: "Total number of events dropped from saturated observer queues.",
		},
	)

	// ObserversConnected tracks the current number of live observers.
	ObserversConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetglass_observers_connected",
			Help: "Current number of connected observers.",
		},
	)

	// CommandsIssued counts operator-issued commands by command name.
	CommandsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetglass_commands_issued_total",
			Help: "Total number of commands issued by operators.",
		},
		[]string{"command"},
	)

	// CommandsDelivered counts commands handed out to polling vehicles.
	CommandsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetglass_commands_delivered_total",
			Help: "Total number of commands delivered to vehicles.",
		},
	)

	// RecorderAppends counts samples handed to the durable log.
	RecorderAppends = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetglass_recorder_appends_total",
			Help: "Total number of samples appended to the durable log.",
		},
	)

	// RecorderDropped counts samples dropped because the recorder queue
	// was full. Ingest never blocks on the durable log.
	RecorderDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetglass_recorder_dropped_total",
			Help: "Total number of samples dropped by the durable log buffer.",
		},
	)

	// RecorderFlushLatency observes the duration of recorder batch flushes.
	RecorderFlushLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetglass_recorder_flush_seconds",
			Help:    "Latency of durable log batch flushes.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PresenceTransitions counts presence state changes by target state.
	PresenceTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetglass_presence_transitions_total",
			Help: "Total number of vehicle presence transitions.",
		},
		[]string{"to"},
	)
)
