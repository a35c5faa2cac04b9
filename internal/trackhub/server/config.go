package server

import "github.com/fleetglass/fleetglass/pkg/options"

type Config struct {
	HttpOptions *options.HttpOptions
	MqttOptions *options.MqttOptions
}
