package options

import (
	"github.com/spf13/pflag"

	"github.com/fleetglass/fleetglass/internal/vehicleagent"
	"github.com/fleetglass/fleetglass/pkg/app"
	"github.com/fleetglass/fleetglass/pkg/log"
	"github.com/fleetglass/fleetglass/pkg/options"
)

// AgentOptions aggregates all configuration for the fglass-agent binary.
type AgentOptions struct {
	AgentOptions *options.AgentOptions `json:"agent" mapstructure:"agent"`
	MqttOptions  *options.MqttOptions  `json:"mqtt" mapstructure:"mqtt"`
	Log          *log.Options          `json:"log" mapstructure:"log"`
}

var _ app.Options = (*AgentOptions)(nil)

func NewAgentOptions() *AgentOptions {
	return &AgentOptions{
		AgentOptions: options.NewAgentOptions(),
		MqttOptions:  options.NewMqttOptions(),
		Log:          log.NewOptions(),
	}
}

func (o *AgentOptions) AddFlags(fs *pflag.FlagSet) {
	o.AgentOptions.AddFlags(fs)
	o.MqttOptions.AddFlags(fs)
	o.Log.AddFlags(fs)
}

func (o *AgentOptions) Complete() error {
	// The agent has no transport besides MQTT.
	o.MqttOptions.Enabled = true
	return nil
}

func (o *AgentOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.AgentOptions.Validate()...)
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return app.AggregateErrors(errs)
}

func (o *AgentOptions) LogOptions() *log.Options {
	return o.Log
}

func (o *AgentOptions) Config() (*vehicleagent.Config, error) {
	return &vehicleagent.Config{
		AgentOptions: o.AgentOptions,
		MqttOptions:  o.MqttOptions,
	}, nil
}
