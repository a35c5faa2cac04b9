package app

import (
	"fmt"

	"github.com/fleetglass/fleetglass/cmd/fglass-agent/app/options"
	"github.com/fleetglass/fleetglass/pkg/app"
)

const (
	commandName = "fglass-agent"
	commandDesc = `The FleetGlass agent simulates a vehicle: it reports GPS telemetry
to the hub over MQTT and executes commands such as stop and resume.`
)

func NewApp() *app.App {
	opts := options.NewAgentOptions()
	return app.NewApp(
		commandName,
		"Launch a simulated FleetGlass vehicle agent",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

func run(opts *options.AgentOptions) app.RunFunc {
	return func() error {
		ctx := app.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		agent, err := cfg.NewAgent()
		if err != nil {
			return fmt.Errorf("failed to create agent: %w", err)
		}

		return agent.Run(ctx)
	}
}
