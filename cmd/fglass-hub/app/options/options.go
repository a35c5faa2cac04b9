package options

import (
	"github.com/spf13/pflag"

	"github.com/fleetglass/fleetglass/internal/trackhub"
	"github.com/fleetglass/fleetglass/pkg/app"
	"github.com/fleetglass/fleetglass/pkg/log"
	"github.com/fleetglass/fleetglass/pkg/options"
)

// HubOptions aggregates all configuration for the fglass-hub server.
type HubOptions struct {
	HttpOptions     *options.HttpOptions     `json:"http" mapstructure:"http"`
	MqttOptions     *options.MqttOptions     `json:"mqtt" mapstructure:"mqtt"`
	S3Options       *options.S3Options       `json:"s3" mapstructure:"s3"`
	RecorderOptions *options.RecorderOptions `json:"recorder" mapstructure:"recorder"`
	StoreOptions    *options.StoreOptions    `json:"store" mapstructure:"store"`
	HubOptions      *options.HubOptions      `json:"hub" mapstructure:"hub"`
	PresenceOptions *options.PresenceOptions `json:"presence" mapstructure:"presence"`
	Log             *log.Options             `json:"log" mapstructure:"log"`
}

var _ app.Options = (*HubOptions)(nil)

func NewHubOptions() *HubOptions {
	return &HubOptions{
		HttpOptions:     options.NewHttpOptions(),
		MqttOptions:     options.NewMqttOptions(),
		S3Options:       options.NewS3Options(),
		RecorderOptions: options.NewRecorderOptions(),
		StoreOptions:    options.NewStoreOptions(),
		HubOptions:      options.NewHubOptions(),
		PresenceOptions: options.NewPresenceOptions(),
		Log:             log.NewOptions(),
	}
}

func (o *HubOptions) AddFlags(fs *pflag.FlagSet) {
	o.HttpOptions.AddFlags(fs)
	o.MqttOptions.AddFlags(fs)
	o.S3Options.AddFlags(fs)
	o.RecorderOptions.AddFlags(fs)
	o.StoreOptions.AddFlags(fs)
	o.HubOptions.AddFlags(fs)
	o.PresenceOptions.AddFlags(fs)
	o.Log.AddFlags(fs)
}

func (o *HubOptions) Complete() error {
	return nil
}

func (o *HubOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.S3Options.Validate()...)
	errs = append(errs, o.RecorderOptions.Validate()...)
	errs = append(errs, o.StoreOptions.Validate()...)
	errs = append(errs, o.HubOptions.Validate()...)
	errs = append(errs, o.PresenceOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return app.AggregateErrors(errs)
}

func (o *HubOptions) LogOptions() *log.Options {
	return o.Log
}

func (o *HubOptions) Config() (*trackhub.Config, error) {
	return &trackhub.Config{
		HttpOptions:     o.HttpOptions,
		MqttOptions:     o.MqttOptions,
		S3Options:       o.S3Options,
		RecorderOptions: o.RecorderOptions,
		StoreOptions:    o.StoreOptions,
		HubOptions:      o.HubOptions,
		PresenceOptions: o.PresenceOptions,
	}, nil
}
