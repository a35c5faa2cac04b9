package model

import "time"

// VehicleStatus is the operational status reported with a telemetry sample.
type VehicleStatus string

const (
	StatusActive  VehicleStatus = "active"
	StatusIdle    VehicleStatus = "idle"
	StatusStopped VehicleStatus = "stopped"
	StatusError   VehicleStatus = "error"
)

// Valid reports whether s is one of the known status values.
func (s VehicleStatus) Valid() bool {
	switch s {
	case StatusActive, StatusIdle, StatusStopped, StatusError:
		return true
	}
	return false
}

// LocationSample is one accepted telemetry reading from a vehicle.
type LocationSample struct {
	// VehicleID is the reporting vehicle.
	VehicleID string `json:"vehicle_id"`

	// Lat is the WGS84 latitude in degrees, [-90, 90].
	Lat float64 `json:"lat"`

	// Lon is the WGS84 longitude in degrees, [-180, 180].
	Lon float64 `json:"lon"`

	// Speed in km/h, never negative.
	Speed float64 `json:"speed"`

	// Heading in degrees, [0, 360). Zero when the vehicle did not report one.
	Heading float64 `json:"heading"`

	// BatteryLevel in percent, [0, 100].
	BatteryLevel float64 `json:"battery_level"`

	// Status is the vehicle-reported operational status.
	Status VehicleStatus `json:"status"`

	// Timestamp is the sample's own UTC time, strictly increasing per vehicle.
	Timestamp time.Time `json:"timestamp"`

	// Extras carries free-form vendor fields passed through unmodified.
	Extras map[string]any `json:"extras,omitempty"`
}

// Presence is the advisory connectivity classification of a vehicle,
// derived from how recently it reported. It never affects stored state.
type Presence string

const (
	PresenceOnline  Presence = "online"
	PresenceStale   Presence = "stale"
	PresenceOffline Presence = "offline"
)

// VehicleState is the most recent accepted sample for a vehicle plus
// server-side bookkeeping. One VehicleState exists per known vehicle;
// it is created on first accepted sample and updated in place after,
// never deleted during the process lifetime.
type VehicleState struct {
	LocationSample

	// LastUpdate is the server acceptance time, distinct from the
	// sample's own timestamp.
	LastUpdate time.Time `json:"last_update"`

	// Presence is filled from the presence tracker on read paths when
	// staleness detection is enabled. Empty otherwise.
	Presence Presence `json:"presence,omitempty"`
}
