package topic

import (
	"fmt"
	"strings"
)

// Constants defining the standard topic segments.
// These act as the protocol contract between the hub and vehicle agents.
// Changing these values will break compatibility with deployed agents.
const (
	// SuffixTelemetry is the upstream telemetry topic (Vehicle -> Hub).
	// Structure: {root}/telemetry/{vehicleID}
	SuffixTelemetry = "telemetry"

	// SuffixCommand is the downstream command topic (Hub -> Vehicle).
	// Structure: {root}/command/{vehicleID}
	SuffixCommand = "command"

	// SuffixStatus is the upstream connection status topic (Vehicle -> Hub),
	// also used for the agent's last-will message.
	// Structure: {root}/status/{vehicleID}
	SuffixStatus = "status"
)

// Builder encapsulates the logic for constructing MQTT topic strings.
// It ensures consistency between the hub and the vehicle agents.
type Builder struct {
	// root is the base namespace for all topics (e.g., "fleet/v1").
	root string
}

// NewBuilder creates a new Builder with the specified root namespace.
func NewBuilder(root string) *Builder {
	return &Builder{root: root}
}

// Telemetry returns the topic a specific vehicle publishes samples to.
// Direction: Vehicle -> Hub
func (b *Builder) Telemetry(vehicleID string) string {
	return b.build(SuffixTelemetry, vehicleID)
}

// TelemetryWildcard returns the wildcard filter the hub subscribes to for
// samples from ALL vehicles. Result: {root}/telemetry/+
func (b *Builder) TelemetryWildcard() string {
	return b.build(SuffixTelemetry, Wildcard)
}

// Command returns the topic for sending commands to a specific vehicle.
// Direction: Hub -> Vehicle
func (b *Builder) Command(vehicleID string) string {
	return b.build(SuffixCommand, vehicleID)
}

// Status returns the topic a vehicle reports connection status on.
// Direction: Vehicle -> Hub
func (b *Builder) Status(vehicleID string) string {
	return b.build(SuffixStatus, vehicleID)
}

// StatusWildcard returns the wildcard filter the hub subscribes to for
// status announcements from ALL vehicles. Result: {root}/status/+
func (b *Builder) StatusWildcard() string {
	return b.build(SuffixStatus, Wildcard)
}

// VehicleID extracts the trailing vehicle id from a concrete topic,
// e.g. "fleet/v1/telemetry/V001" -> "V001".
func (b *Builder) VehicleID(topic string) string {
	idx := strings.LastIndex(topic, "/")
	if idx < 0 || idx == len(topic)-1 {
		return ""
	}
	return topic[idx+1:]
}

// build is a private helper to construct the final topic string.
// Pattern: {root}/{suffix}/{identifier}
func (b *Builder) build(suffix, id string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, suffix, id)
}
