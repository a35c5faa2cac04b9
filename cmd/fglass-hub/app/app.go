package app

import (
	"fmt"

	"github.com/fleetglass/fleetglass/cmd/fglass-hub/app/options"
	"github.com/fleetglass/fleetglass/pkg/app"
)

const (
	commandName = "fglass-hub"
	commandDesc = `The FleetGlass hub ingests vehicle telemetry over HTTP and MQTT,
keeps the authoritative last-known state of every vehicle in memory,
streams live updates to dashboard observers over WebSocket, and relays
operator commands back to vehicles.`
)

func NewApp() *app.App {
	opts := options.NewHubOptions()
	return app.NewApp(
		commandName,
		"Launch the FleetGlass tracking hub",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

func run(opts *options.HubOptions) app.RunFunc {
	return func() error {
		ctx := app.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		server, err := cfg.NewTrackHubServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create hub server: %w", err)
		}

		return server.Run(ctx)
	}
}
