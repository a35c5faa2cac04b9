package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*HubOptions)(nil)

// HubOptions configures the broadcast hub's per-observer delivery path.
type HubOptions struct {
	// ObserverQueueSize is the capacity of each observer's outbound queue.
	// When full, the oldest queued event is dropped in favor of the new one.
	ObserverQueueSize int `json:"observer-queue-size" mapstructure:"observer-queue-size"`
}

func NewHubOptions() *HubOptions {
	return &HubOptions{
		ObserverQueueSize: 32,
	}
}

func (o *HubOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.ObserverQueueSize <= 0 {
		errors = append(errors, fmt.Errorf("observer queue size must be positive, got %d", o.ObserverQueueSize))
	}

	return errors
}

func (o *HubOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ObserverQueueSize, "hub.observer-queue-size", o.ObserverQueueSize, "Capacity of each observer's outbound event queue.")
}
