package service

import (
	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
)

// GetState returns the last known state of one vehicle,
// decorated with its presence classification when tracking is enabled.
func (s *Service) GetState(vehicleID string) (*model.VehicleState, error) {
	state, err := s.store.Get(vehicleID)
	if err != nil {
		return nil, err
	}
	s.decorate(state)
	return state, nil
}

// ListStates returns a snapshot of every known vehicle's state,
// sorted by vehicle id.
func (s *Service) ListStates() []model.VehicleState {
	states := s.store.List()
	for i := range states {
		s.decorate(&states[i])
	}
	return states
}

// RecentHistory returns up to limit recent samples for the vehicle,
// newest first. Unbounded history lives in the durable log and is
// queried there, not here.
func (s *Service) RecentHistory(vehicleID string, limit int) ([]model.LocationSample, error) {
	return s.store.History(vehicleID, limit)
}

func (s *Service) decorate(state *model.VehicleState) {
	if s.presence == nil {
		return
	}
	state.Presence = s.presence.Classify(state.VehicleID)
}
