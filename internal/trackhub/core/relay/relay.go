// Package relay holds the pending command slot for each vehicle.
// Semantics are latest-wins: issuing a command replaces any unconsumed
// prior command for the same vehicle, and a poll hands a command out at
// most once.
package relay

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
)

// Relay stores at most one pending command per vehicle.
type Relay struct {
	mu      sync.Mutex
	pending map[string]*model.Command

	now func() time.Time
}

// Option customizes a Relay.
type Option func(*Relay)

// WithClock injects the issue-time source. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(r *Relay) { r.now = now }
}

// New creates an empty Relay.
func New(opts ...Option) *Relay {
	r := &Relay{
		pending: make(map[string]*model.Command),
		now:     time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Issue stores a command for the vehicle, superseding any unconsumed prior
// command. It returns the stamped command immediately; there is no
// acknowledgment protocol.
func (r *Relay) Issue(vehicleID, name string, params map[string]string) *model.Command {
	cmd := &model.Command{
		ID:         uuid.NewString(),
		VehicleID:  vehicleID,
		Name:       name,
		Parameters: params,
		IssuedAt:   r.now().UTC(),
	}

	r.mu.Lock()
	r.pending[vehicleID] = cmd
	r.mu.Unlock()

	return cmd
}

// Poll returns the pending command for the vehicle and clears the slot.
// A command is handed out at most once; a second poll returns false.
func (r *Relay) Poll(vehicleID string) (*model.Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmd, ok := r.pending[vehicleID]
	if !ok {
		return nil, false
	}
	delete(r.pending, vehicleID)
	return cmd, true
}

// Pending returns the number of vehicles with an undelivered command.
func (r *Relay) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
