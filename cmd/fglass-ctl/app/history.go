package app

import (
	"fmt"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <vehicle-id>",
		Short: "Show recent samples for a vehicle, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/vehicles/%s/history?limit=%d", args[0], limit)

			var samples []model.LocationSample
			if err := getJSON(opts.server, path, &samples); err != nil {
				return err
			}

			table := uitable.New()
			table.AddRow("TIMESTAMP", "LAT", "LON", "SPEED", "HEADING", "BATTERY", "STATUS")
			for _, s := range samples {
				table.AddRow(s.Timestamp.Local().Format(time.RFC3339),
					fmt.Sprintf("%.6f", s.Lat),
					fmt.Sprintf("%.6f", s.Lon),
					fmt.Sprintf("%.1f", s.Speed),
					fmt.Sprintf("%.0f", s.Heading),
					fmt.Sprintf("%.1f%%", s.BatteryLevel),
					string(s.Status))
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of samples to show.")
	return cmd
}
