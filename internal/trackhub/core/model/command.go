package model

import "time"

// Command is an operator-issued instruction for a vehicle.
// Commands are latest-wins per vehicle: issuing a new command replaces any
// unconsumed prior command for the same vehicle.
type Command struct {
	// ID is a unique trace id assigned at issue time.
	ID string `json:"id"`

	// VehicleID is the target vehicle.
	VehicleID string `json:"vehicle_id"`

	// Name is the command verb, e.g. "stop", "start", "return_to_base".
	Name string `json:"command"`

	// Parameters contains command-specific arguments.
	Parameters map[string]string `json:"parameters,omitempty"`

	// IssuedAt is when the operator issued the command.
	IssuedAt time.Time `json:"issued_at"`
}
