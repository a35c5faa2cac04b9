package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*AgentOptions)(nil)

// AgentOptions configures the simulated vehicle agent.
type AgentOptions struct {
	// VehicleID identifies this vehicle in topics and payloads.
	VehicleID string `json:"vehicle-id" mapstructure:"vehicle-id"`

	// ReportInterval is the time between telemetry reports.
	ReportInterval time.Duration `json:"report-interval" mapstructure:"report-interval"`

	// StartLat and StartLon are the initial position.
	StartLat float64 `json:"start-lat" mapstructure:"start-lat"`
	StartLon float64 `json:"start-lon" mapstructure:"start-lon"`

	// MaxSpeed caps the simulated speed in km/h.
	MaxSpeed float64 `json:"max-speed" mapstructure:"max-speed"`
}

func NewAgentOptions() *AgentOptions {
	return &AgentOptions{
		VehicleID:      "V001",
		ReportInterval: 5 * time.Second,
		StartLat:       40.7128,
		StartLon:       -74.0060,
		MaxSpeed:       50.0,
	}
}

func (o *AgentOptions) Validate() []error {
	errors := []error{}

	if o.VehicleID == "" {
		errors = append(errors, fmt.Errorf("agent vehicle-id must not be empty"))
	}
	if o.ReportInterval <= 0 {
		errors = append(errors, fmt.Errorf("agent report-interval must be positive"))
	}
	if o.StartLat < -90 || o.StartLat > 90 {
		errors = append(errors, fmt.Errorf("agent start-lat %.4f out of range [-90, 90]", o.StartLat))
	}
	if o.StartLon < -180 || o.StartLon > 180 {
		errors = append(errors, fmt.Errorf("agent start-lon %.4f out of range [-180, 180]", o.StartLon))
	}
	if o.MaxSpeed <= 0 {
		errors = append(errors, fmt.Errorf("agent max-speed must be positive"))
	}

	return errors
}

func (o *AgentOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.VehicleID, "agent.vehicle-id", o.VehicleID, "Vehicle id reported by this agent.")
	fs.DurationVar(&o.ReportInterval, "agent.report-interval", o.ReportInterval, "Time between telemetry reports.")
	fs.Float64Var(&o.StartLat, "agent.start-lat", o.StartLat, "Initial latitude of the simulated vehicle.")
	fs.Float64Var(&o.StartLon, "agent.start-lon", o.StartLon, "Initial longitude of the simulated vehicle.")
	fs.Float64Var(&o.MaxSpeed, "agent.max-speed", o.MaxSpeed, "Maximum simulated speed in km/h.")
}
