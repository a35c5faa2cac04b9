package mqtt

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fleetglass/fleetglass/internal/trackhub/core"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/service"
	"github.com/fleetglass/fleetglass/pkg/log"
)

// handleTelemetry ingests one sample published by a vehicle. The vehicle
// id in the topic is authoritative: a payload claiming another id is
// overridden, so an agent cannot report for a different vehicle.
func (s *Server) handleTelemetry(ctx context.Context, topic string, payload []byte) {
	vehicleID := s.topics.VehicleID(topic)
	if vehicleID == "" {
		log.Warn("Dropping telemetry with no vehicle id", "topic", topic)
		return
	}

	var p service.TelemetryPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Error(err, "Failed to unmarshal telemetry", "topic", topic)
		return
	}
	p.VehicleID = vehicleID

	if _, err := s.svc.SubmitTelemetry(ctx, &p); err != nil {
		// Rejections are expected traffic (out of order retries, bad
		// payloads from misbehaving agents), so log and move on.
		if core.IsValidation(err) || errors.Is(err, core.ErrStaleTimestamp) {
			log.Warn("Rejected telemetry", "vehicle", vehicleID, "reason", err.Error())
			return
		}
		log.Error(err, "Failed to ingest telemetry", "vehicle", vehicleID)
	}
}

// handleStatus logs connect/disconnect announcements, including last-will
// messages the broker publishes for vehicles that drop off.
func (s *Server) handleStatus(_ context.Context, topic string, payload []byte) {
	vehicleID := s.topics.VehicleID(topic)
	log.Info("Vehicle status announcement", "vehicle", vehicleID, "status", string(payload))
}
