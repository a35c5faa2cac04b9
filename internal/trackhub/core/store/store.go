// Package store holds the authoritative in-memory last-known state and
// bounded recent history for every vehicle the hub has seen.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/fleetglass/fleetglass/internal/trackhub/core"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
)

const DefaultHistoryCapacity = 100

// Store maps vehicle ids to their state. Applies for distinct vehicles run
// concurrently; applies for the same vehicle are serialized by a per-entry
// mutex, which preserves the monotonic-timestamp invariant. Reads copy
// under the entry lock and never observe a partial update.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*vehicleEntry

	historyCap int
	now        func() time.Time
}

type vehicleEntry struct {
	mu      sync.Mutex
	state   model.VehicleState
	history *historyRing
}

// Option customizes a Store.
type Option func(*Store)

// WithHistoryCapacity overrides the per-vehicle history ring size.
func WithHistoryCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historyCap = n
		}
	}
}

// WithClock injects the acceptance-time source. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:    make(map[string]*vehicleEntry),
		historyCap: DefaultHistoryCapacity,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Apply validates the sample and, if accepted, updates the vehicle's state
// and history. It returns a snapshot of the new state. A rejected sample
// leaves all state untouched.
func (s *Store) Apply(sample *model.LocationSample) (*model.VehicleState, error) {
	if err := validate(sample); err != nil {
		return nil, err
	}

	entry := s.entry(sample.VehicleID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// First accepted sample has a zero stored timestamp and always passes.
	if !entry.state.Timestamp.IsZero() && !sample.Timestamp.After(entry.state.Timestamp) {
		return nil, core.ErrStaleTimestamp
	}

	entry.state = model.VehicleState{
		LocationSample: *sample,
		LastUpdate:     s.now().UTC(),
	}
	entry.history.push(*sample)

	snapshot := entry.state
	return &snapshot, nil
}

// Get returns a copy of the vehicle's current state.
func (s *Store) Get(vehicleID string) (*model.VehicleState, error) {
	s.mu.RLock()
	entry, ok := s.entries[vehicleID]
	s.mu.RUnlock()
	if !ok {
		return nil, core.ErrVehicleNotFound
	}

	entry.mu.Lock()
	snapshot := entry.state
	entry.mu.Unlock()
	return &snapshot, nil
}

// List returns copies of every vehicle's state, sorted by vehicle id.
// The order is stable but carries no meaning.
func (s *Store) List() []model.VehicleState {
	s.mu.RLock()
	entries := make([]*vehicleEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]model.VehicleState, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.state)
		e.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out
}

// History returns up to min(limit, ring capacity) recent samples for the
// vehicle, newest first.
func (s *Store) History(vehicleID string, limit int) ([]model.LocationSample, error) {
	s.mu.RLock()
	entry, ok := s.entries[vehicleID]
	s.mu.RUnlock()
	if !ok {
		return nil, core.ErrVehicleNotFound
	}

	if limit <= 0 || limit > s.historyCap {
		limit = s.historyCap
	}

	entry.mu.Lock()
	samples := entry.history.newest(limit)
	entry.mu.Unlock()
	return samples, nil
}

// Len returns the number of known vehicles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// entry returns the vehicle's entry, creating it on first use.
func (s *Store) entry(vehicleID string) *vehicleEntry {
	s.mu.RLock()
	entry, ok := s.entries[vehicleID]
	s.mu.RUnlock()
	if ok {
		return entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok = s.entries[vehicleID]; ok {
		return entry
	}
	entry = &vehicleEntry{history: newHistoryRing(s.historyCap)}
	s.entries[vehicleID] = entry
	return entry
}

// validate applies the range and required-field checks. A failing sample is
// rejected whole; nothing is partially applied.
func validate(sample *model.LocationSample) error {
	if sample.VehicleID == "" {
		return core.NewValidationError("vehicle_id", "must not be empty")
	}
	if sample.Lat < -90 || sample.Lat > 90 {
		return core.NewValidationError("lat", "%v out of range [-90, 90]", sample.Lat)
	}
	if sample.Lon < -180 || sample.Lon > 180 {
		return core.NewValidationError("lon", "%v out of range [-180, 180]", sample.Lon)
	}
	if sample.Speed < 0 {
		return core.NewValidationError("speed", "%v must not be negative", sample.Speed)
	}
	if sample.Heading < 0 || sample.Heading >= 360 {
		return core.NewValidationError("heading", "%v out of range [0, 360)", sample.Heading)
	}
	if sample.BatteryLevel < 0 || sample.BatteryLevel > 100 {
		return core.NewValidationError("battery_level", "%v out of range [0, 100]", sample.BatteryLevel)
	}
	if !sample.Status.Valid() {
		return core.NewValidationError("status", "unknown status %q", sample.Status)
	}
	if sample.Timestamp.IsZero() {
		return core.NewValidationError("timestamp", "must be set")
	}
	return nil
}
