package trackhub

import (
	"context"
	"fmt"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/hub"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/relay"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/service"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/store"
	"github.com/fleetglass/fleetglass/internal/trackhub/notifier"
	"github.com/fleetglass/fleetglass/internal/trackhub/presence"
	"github.com/fleetglass/fleetglass/internal/trackhub/recorder"
	"github.com/fleetglass/fleetglass/internal/trackhub/server"
	"github.com/fleetglass/fleetglass/pkg/options"
)

type Config struct {
	HttpOptions     *options.HttpOptions
	MqttOptions     *options.MqttOptions
	S3Options       *options.S3Options
	RecorderOptions *options.RecorderOptions
	StoreOptions    *options.StoreOptions
	HubOptions      *options.HubOptions
	PresenceOptions *options.PresenceOptions
}

// NewTrackHubServer assembles the hub: core components first, then the
// secondary adapters, then the ingress servers around the service.
func (cfg *Config) NewTrackHubServer(ctx context.Context) (*TrackHubServer, error) {
	// 1. Core state: store, broadcast hub, command relay.
	st := store.New(store.WithHistoryCapacity(cfg.StoreOptions.HistoryCapacity))
	h := hub.New(hub.WithObserverQueueSize(cfg.HubOptions.ObserverQueueSize))
	rl := relay.New()

	svcOpts := []service.Option{}

	// 2. Secondary adapters.
	rec, err := recorder.NewFromOptions(ctx, cfg.RecorderOptions, cfg.S3Options)
	if err != nil {
		return nil, fmt.Errorf("failed to init recorder: %w", err)
	}
	if rec != nil {
		svcOpts = append(svcOpts, service.WithRecorder(rec))
	}

	var commandNotifier *notifier.MQTTNotifier
	if cfg.MqttOptions.Enabled {
		commandNotifier, err = notifier.NewMQTTNotifier(ctx, cfg.MqttOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to init notifier: %w", err)
		}
		svcOpts = append(svcOpts, service.WithNotifier(commandNotifier))
	}

	var tracker *presence.Tracker
	if cfg.PresenceOptions.Enabled {
		tracker = presence.New(cfg.PresenceOptions, h)
		svcOpts = append(svcOpts, service.WithPresence(tracker))
	}

	// 3. Core domain service.
	svc := service.New(st, h, rl, svcOpts...)

	// 4. Ingress servers around the service.
	serverConfig := &server.Config{
		HttpOptions: cfg.HttpOptions,
		MqttOptions: cfg.MqttOptions,
	}
	srvManager, err := server.NewManager(serverConfig, svc)
	if err != nil {
		return nil, fmt.Errorf("failed to init server manager: %w", err)
	}

	return &TrackHubServer{
		serverManager: srvManager,
		recorder:      rec,
		notifier:      commandNotifier,
		presence:      tracker,
	}, nil
}
