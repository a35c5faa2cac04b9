package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
)

func newCommandCommand(opts *rootOptions) *cobra.Command {
	var params map[string]string

	cmd := &cobra.Command{
		Use:   "command <vehicle-id> <name>",
		Short: "Issue a command to a vehicle (latest-wins)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"command":    args[1],
				"parameters": params,
			}

			var issued model.Command
			path := fmt.Sprintf("/api/v1/vehicles/%s/commands", args[0])
			if err := postJSON(opts.server, path, body, &issued); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "command %s issued to %s (id %s)\n",
				issued.Name, issued.VehicleID, issued.ID)
			return nil
		},
	}

	cmd.Flags().StringToStringVarP(&params, "param", "p", nil,
		"Command parameter as key=value; repeatable.")
	return cmd
}
