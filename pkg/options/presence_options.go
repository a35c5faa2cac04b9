package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*PresenceOptions)(nil)

// PresenceOptions configures time-based vehicle staleness detection.
// Presence is advisory: last-known state is never removed, vehicles are
// only flagged stale/offline after prolonged silence.
type PresenceOptions struct {
	// Enabled switches the presence tracker on.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// StaleAfter is the silence duration after which a vehicle is marked stale.
	StaleAfter time.Duration `json:"stale-after" mapstructure:"stale-after"`

	// OfflineAfter is the silence duration after which a vehicle is marked offline.
	OfflineAfter time.Duration `json:"offline-after" mapstructure:"offline-after"`

	// SweepInterval is how often silence is evaluated.
	SweepInterval time.Duration `json:"sweep-interval" mapstructure:"sweep-interval"`
}

func NewPresenceOptions() *PresenceOptions {
	return &PresenceOptions{
		Enabled:       true,
		StaleAfter:    30 * time.Second,
		OfflineAfter:  5 * time.Minute,
		SweepInterval: 10 * time.Second,
	}
}

func (o *PresenceOptions) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}

	errors := []error{}

	if o.StaleAfter <= 0 || o.OfflineAfter <= 0 || o.SweepInterval <= 0 {
		errors = append(errors, fmt.Errorf("presence durations must be positive"))
	}
	if o.OfflineAfter <= o.StaleAfter {
		errors = append(errors, fmt.Errorf("offline-after (%s) must be greater than stale-after (%s)", o.OfflineAfter, o.StaleAfter))
	}

	return errors
}

func (o *PresenceOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, "presence.enabled", o.Enabled, "Enable time-based vehicle staleness detection.")
	fs.DurationVar(&o.StaleAfter, "presence.stale-after", o.StaleAfter, "Silence duration after which a vehicle is marked stale.")
	fs.DurationVar(&o.OfflineAfter, "presence.offline-after", o.OfflineAfter, "Silence duration after which a vehicle is marked offline.")
	fs.DurationVar(&o.SweepInterval, "presence.sweep-interval", o.SweepInterval, "How often vehicle silence is evaluated.")
}
