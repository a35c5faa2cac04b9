package core

import (
	"context"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
)

// Recorder is the durable-log port. Append is fire-and-forget: the hub
// writes every accepted sample out for unbounded history, but never reads
// it back and never waits for it. Implementations buffer internally and
// must not block the caller.
type Recorder interface {
	// Append hands one accepted sample to the durable log.
	Append(sample *model.LocationSample)

	// Close flushes buffered samples and releases resources.
	Close(ctx context.Context) error
}

// CommandNotifier is the push-delivery port for commands. In FleetGlass it
// is implemented by the MQTT outbound adapter; deployments without a push
// channel rely on vehicles polling instead.
type CommandNotifier interface {
	// Notify pushes a command towards the target vehicle.
	Notify(ctx context.Context, cmd *model.Command) error
}

// PresenceSink receives a liveness signal for every accepted sample.
type PresenceSink interface {
	// Observe records that the vehicle reported just now.
	Observe(vehicleID string)

	// Classify returns the current presence of a vehicle, or "" when the
	// vehicle is unknown to the tracker.
	Classify(vehicleID string) model.Presence
}
