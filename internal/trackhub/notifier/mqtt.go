// Package notifier pushes issued commands towards vehicles over MQTT.
package notifier

import (
	"context"
	"encoding/json"
	"os"

	"github.com/fleetglass/fleetglass/internal/trackhub/core"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
	pkgmqtt "github.com/fleetglass/fleetglass/pkg/mqtt"
	"github.com/fleetglass/fleetglass/pkg/mqtt/topic"
	"github.com/fleetglass/fleetglass/pkg/options"
)

// MQTTNotifier publishes commands to each vehicle's command topic over a
// dedicated egress connection, separate from the telemetry ingress one.
type MQTTNotifier struct {
	client pkgmqtt.Client
	topics *topic.Builder
}

// NewMQTTNotifier creates and starts the egress client.
func NewMQTTNotifier(ctx context.Context, opts *options.MqttOptions) (*MQTTNotifier, error) {
	cfg := opts.ToClientConfig()
	if cfg.ClientID == "" {
		hostname, _ := os.Hostname()
		cfg.ClientID = "fglass-hub-" + hostname
	}
	// Distinct ClientID: egress rides its own connection so a slow command
	// push never backs up telemetry ingress.
	cfg.ClientID = cfg.ClientID + "-notifier"

	client, err := pkgmqtt.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := client.Start(ctx); err != nil {
		return nil, err
	}

	return &MQTTNotifier{
		client: client,
		topics: topic.NewBuilder(opts.TopicRoot),
	}, nil
}

// Notify publishes the command as JSON at QoS 1.
func (n *MQTTNotifier) Notify(ctx context.Context, cmd *model.Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, n.topics.Command(cmd.VehicleID), 1, false, payload)
}

// Close disconnects the egress client.
func (n *MQTTNotifier) Close(ctx context.Context) error {
	n.client.Disconnect(ctx)
	return nil
}

var _ core.CommandNotifier = (*MQTTNotifier)(nil)
