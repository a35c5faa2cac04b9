package app

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream live hub events to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wsURL := toWebSocketURL(opts.server) + "/ws"

			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			if err != nil {
				return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
			}
			defer conn.Close()

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-interrupt
				conn.Close()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", wsURL)
			for {
				_, payload, err := conn.ReadMessage()
				if err != nil {
					// Closing the connection on interrupt surfaces here.
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			}
		},
	}
}

func toWebSocketURL(server string) string {
	switch {
	case strings.HasPrefix(server, "https://"):
		return "wss://" + strings.TrimPrefix(server, "https://")
	case strings.HasPrefix(server, "http://"):
		return "ws://" + strings.TrimPrefix(server, "http://")
	default:
		return "ws://" + server
	}
}
