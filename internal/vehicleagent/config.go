package vehicleagent

import "github.com/fleetglass/fleetglass/pkg/options"

type Config struct {
	AgentOptions *options.AgentOptions
	MqttOptions  *options.MqttOptions
}

func (cfg *Config) NewAgent() (*Agent, error) {
	return NewAgent(cfg.AgentOptions, cfg.MqttOptions)
}
