// Package app implements fglass-ctl, the operator CLI for the hub's
// REST API and WebSocket feed.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	server string
}

// Root wraps the fglass-ctl command tree.
type Root struct {
	cmd *cobra.Command
}

func NewRootCommand() *Root {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "fglass-ctl",
		Short:         "Operate a FleetGlass tracking hub",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.server, "server", "s",
		"http://localhost:8080", "Base URL of the hub's HTTP endpoint.")

	cmd.AddCommand(
		newVehiclesCommand(opts),
		newHistoryCommand(opts),
		newCommandCommand(opts),
		newWatchCommand(opts),
	)

	return &Root{cmd: cmd}
}

func (r *Root) Run() {
	if err := r.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fglass-ctl: %v\n", err)
		os.Exit(1)
	}
}
