// Package vehicleagent implements a simulated vehicle: it drives a random
// walk over the map, reports telemetry to the hub over MQTT, and obeys
// commands pushed to its command topic.
package vehicleagent

import (
	"math"
	"math/rand"
	"time"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/service"
)

const (
	speedChangeRate   = 0.5 // km/h per step
	headingChangeRate = 5.0 // degrees per step
	degreesPerMeter   = 1.0 / 111000
)

// Simulator produces a plausible telemetry stream: jittered speed and
// heading, dead-reckoned position, battery drain while moving.
type Simulator struct {
	vehicleID string
	maxSpeed  float64

	lat     float64
	lon     float64
	speed   float64
	heading float64
	battery float64
	halted  bool

	rng *rand.Rand
}

// NewSimulator creates a simulator at the given start position.
func NewSimulator(vehicleID string, startLat, startLon, maxSpeed float64, seed int64) *Simulator {
	return &Simulator{
		vehicleID: vehicleID,
		maxSpeed:  maxSpeed,
		lat:       startLat,
		lon:       startLon,
		battery:   100.0,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Halt stops the vehicle: speed drops to zero and stays there until Resume.
func (s *Simulator) Halt() { s.halted = true }

// Resume lets the vehicle move again after a Halt.
func (s *Simulator) Resume() { s.halted = false }

// Halted reports whether the vehicle is under a stop command.
func (s *Simulator) Halted() bool { return s.halted }

// Step advances the simulation by elapsed wall time and returns the next
// telemetry payload to report.
func (s *Simulator) Step(elapsed time.Duration, now time.Time) *service.TelemetryPayload {
	if s.halted {
		s.speed = 0
	} else {
		s.speed += s.rng.Float64()*2*speedChangeRate - speedChangeRate
		s.speed = math.Max(0, math.Min(s.maxSpeed, s.speed))

		s.heading += s.rng.Float64()*2*headingChangeRate - headingChangeRate
		s.heading = math.Mod(s.heading+360, 360)
	}

	if s.speed > 0 {
		s.battery = math.Max(0, s.battery-(0.1+s.rng.Float64()*0.2))

		// Dead reckoning: km/h over the elapsed interval, one degree
		// approximated as 111 km.
		distDeg := s.speed * 1000 / 3600 * elapsed.Seconds() * degreesPerMeter
		s.lat += distDeg * math.Cos(s.heading*math.Pi/180)
		s.lon += distDeg * math.Sin(s.heading*math.Pi/180)
	}

	// Copy the state so the payload is a stable snapshot.
	lat, lon, speed, heading, battery := s.lat, s.lon, s.speed, s.heading, s.battery
	status := s.status()
	ts := now.UTC()
	return &service.TelemetryPayload{
		VehicleID:    s.vehicleID,
		Lat:          &lat,
		Lon:          &lon,
		Speed:        &speed,
		Heading:      &heading,
		BatteryLevel: &battery,
		Status:       &status,
		Timestamp:    &ts,
		Extras: map[string]any{
			"temperature":     15 + s.rng.Float64()*20,
			"signal_strength": 70 + s.rng.Float64()*30,
		},
	}
}

func (s *Simulator) status() model.VehicleStatus {
	switch {
	case s.battery <= 0:
		return model.StatusError
	case s.halted:
		return model.StatusStopped
	case s.speed == 0:
		return model.StatusIdle
	default:
		return model.StatusActive
	}
}
