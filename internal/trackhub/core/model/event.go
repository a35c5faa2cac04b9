package model

import "encoding/json"

// EventType identifies the kind of state-change event fanned out to observers.
type EventType string

const (
	// EventLocationUpdate carries a VehicleState after an accepted sample.
	EventLocationUpdate EventType = "location_update"

	// EventCommand mirrors an issued command to observers.
	EventCommand EventType = "command"

	// EventPresence announces a presence transition (online/stale/offline).
	EventPresence EventType = "presence"
)

// Event is the wire shape delivered to observers:
// {"type": "...", "data": ...}, one event per state change, no batching.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// Encode serializes the event once so the hub can hand the same bytes to
// every observer queue.
func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// PresenceChange is the payload of an EventPresence event.
type PresenceChange struct {
	VehicleID string   `json:"vehicle_id"`
	Presence  Presence `json:"presence"`
}
