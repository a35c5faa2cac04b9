package service

import (
	"context"
	"errors"
	"time"

	"github.com/fleetglass/fleetglass/internal/pkg/metrics"
	"github.com/fleetglass/fleetglass/internal/trackhub/core"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
)

// TelemetryPayload is the raw inbound update before normalization.
// Optional fields are pointers so that "absent" and "zero" stay distinct.
type TelemetryPayload struct {
	VehicleID    string               `json:"vehicle_id"`
	Lat          *float64             `json:"lat"`
	Lon          *float64             `json:"lon"`
	Speed        *float64             `json:"speed,omitempty"`
	Heading      *float64             `json:"heading,omitempty"`
	BatteryLevel *float64             `json:"battery_level,omitempty"`
	Status       *model.VehicleStatus `json:"status,omitempty"`
	Timestamp    *time.Time           `json:"timestamp,omitempty"`
	Extras       map[string]any       `json:"extras,omitempty"`
}

// SubmitTelemetry validates and applies one inbound update. On acceptance
// it appends the sample to the durable log, publishes a location_update
// event to every observer, and feeds the presence tracker. The call never
// blocks on observer delivery or on the durable log.
//
// A rejected payload returns a typed error (ValidationError or
// ErrStaleTimestamp) and has no side effects.
func (s *Service) SubmitTelemetry(ctx context.Context, payload *TelemetryPayload) (*model.VehicleState, error) {
	sample, err := normalize(payload)
	if err != nil {
		metrics.SamplesRejected.WithLabelValues("validation").Inc()
		return nil, err
	}

	state, err := s.store.Apply(sample)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrStaleTimestamp):
			metrics.SamplesRejected.WithLabelValues("stale_timestamp").Inc()
		default:
			metrics.SamplesRejected.WithLabelValues("validation").Inc()
		}
		return nil, err
	}
	metrics.SamplesAccepted.Inc()

	if s.recorder != nil {
		s.recorder.Append(sample)
	}
	if s.presence != nil {
		s.presence.Observe(sample.VehicleID)
	}

	s.hub.Publish(&model.Event{
		Type: model.EventLocationUpdate,
		Data: state,
	})

	s.logger.Debug("Accepted telemetry", "vehicle", sample.VehicleID,
		"lat", sample.Lat, "lon", sample.Lon, "speed", sample.Speed)
	return state, nil
}

// normalize converts the raw payload into a LocationSample, applying the
// wire defaults: speed 0, heading 0, battery 100, status active,
// timestamp = server now.
func normalize(p *TelemetryPayload) (*model.LocationSample, error) {
	if p == nil {
		return nil, core.NewValidationError("payload", "must not be empty")
	}
	if p.VehicleID == "" {
		return nil, core.NewValidationError("vehicle_id", "must not be empty")
	}
	if p.Lat == nil {
		return nil, core.NewValidationError("lat", "is required")
	}
	if p.Lon == nil {
		return nil, core.NewValidationError("lon", "is required")
	}

	sample := &model.LocationSample{
		VehicleID:    p.VehicleID,
		Lat:          *p.Lat,
		Lon:          *p.Lon,
		BatteryLevel: 100,
		Status:       model.StatusActive,
		Timestamp:    time.Now().UTC(),
		Extras:       p.Extras,
	}

	if p.Speed != nil {
		sample.Speed = *p.Speed
	}
	if p.Heading != nil {
		sample.Heading = *p.Heading
	}
	if p.BatteryLevel != nil {
		sample.BatteryLevel = *p.BatteryLevel
	}
	if p.Status != nil {
		sample.Status = *p.Status
	}
	if p.Timestamp != nil {
		sample.Timestamp = p.Timestamp.UTC()
	}

	return sample, nil
}
