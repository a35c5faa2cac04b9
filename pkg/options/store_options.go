package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*StoreOptions)(nil)

// StoreOptions configures the in-memory vehicle state store.
type StoreOptions struct {
	// HistoryCapacity is the number of recent samples retained per vehicle.
	HistoryCapacity int `json:"history-capacity" mapstructure:"history-capacity"`
}

func NewStoreOptions() *StoreOptions {
	return &StoreOptions{
		HistoryCapacity: 100,
	}
}

func (o *StoreOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.HistoryCapacity <= 0 {
		errors = append(errors, fmt.Errorf("history capacity must be positive, got %d", o.HistoryCapacity))
	}

	return errors
}

func (o *StoreOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.HistoryCapacity, "store.history-capacity", o.HistoryCapacity, "Number of recent samples retained per vehicle.")
}
