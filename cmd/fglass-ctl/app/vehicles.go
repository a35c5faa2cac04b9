package app

import (
	"fmt"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
)

func newVehiclesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "vehicles",
		Short: "List the last known state of every vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var states []model.VehicleState
			if err := getJSON(opts.server, "/api/v1/vehicles", &states); err != nil {
				return err
			}

			table := uitable.New()
			table.AddRow("VEHICLE", "LAT", "LON", "SPEED", "BATTERY", "STATUS", "PRESENCE", "LAST UPDATE")
			for _, s := range states {
				table.AddRow(s.VehicleID,
					fmt.Sprintf("%.6f", s.Lat),
					fmt.Sprintf("%.6f", s.Lon),
					fmt.Sprintf("%.1f", s.Speed),
					fmt.Sprintf("%.1f%%", s.BatteryLevel),
					string(s.Status),
					string(s.Presence),
					s.LastUpdate.Local().Format(time.RFC3339))
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}
