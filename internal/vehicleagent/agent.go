package vehicleagent

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
	"github.com/fleetglass/fleetglass/pkg/log"
	pkgmqtt "github.com/fleetglass/fleetglass/pkg/mqtt"
	"github.com/fleetglass/fleetglass/pkg/mqtt/topic"
	"github.com/fleetglass/fleetglass/pkg/options"
)

const qos = 1

// Agent connects the simulator to the hub: telemetry out, commands in.
type Agent struct {
	client   pkgmqtt.Client
	topics   *topic.Builder
	sim      *Simulator
	interval time.Duration
}

// NewAgent builds the agent with a broker last-will, so the hub learns
// about unclean disconnects on the status topic.
func NewAgent(opts *options.AgentOptions, mqttOpts *options.MqttOptions) (*Agent, error) {
	topics := topic.NewBuilder(mqttOpts.TopicRoot)

	cfg := mqttOpts.ToClientConfig()
	cfg.ClientID = "fglass-agent-" + opts.VehicleID
	cfg.WillTopic = topics.Status(opts.VehicleID)
	cfg.WillPayload = []byte("offline")
	cfg.WillQoS = qos

	client, err := pkgmqtt.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Agent{
		client:   client,
		topics:   topics,
		sim:      NewSimulator(opts.VehicleID, opts.StartLat, opts.StartLon, opts.MaxSpeed, time.Now().UnixNano()),
		interval: opts.ReportInterval,
	}, nil
}

// Run connects, announces itself, and reports telemetry until the context
// is canceled.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.client.Start(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.client.Publish(shutdownCtx, a.topics.Status(a.sim.vehicleID), qos, false, []byte("offline"))
		a.client.Disconnect(shutdownCtx)
	}()

	log.Info("Waiting for MQTT connection...")
	if err := a.client.AwaitConnection(ctx); err != nil {
		return err
	}
	log.Info("Connected", "vehicle", a.sim.vehicleID)

	if err := a.client.Subscribe(ctx, a.topics.Command(a.sim.vehicleID), qos, a.handleCommand); err != nil {
		return err
	}
	if err := a.client.Publish(ctx, a.topics.Status(a.sim.vehicleID), qos, false, []byte("online")); err != nil {
		log.Error(err, "Failed to announce online status")
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			a.report(ctx, now.Sub(last), now)
			last = now
		}
	}
}

func (a *Agent) report(ctx context.Context, elapsed time.Duration, now time.Time) {
	payload := a.sim.Step(elapsed, now)

	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error(err, "Failed to marshal telemetry")
		return
	}

	if err := a.client.Publish(ctx, a.topics.Telemetry(a.sim.vehicleID), qos, false, raw); err != nil {
		log.Error(err, "Failed to publish telemetry")
		return
	}
	log.Debug("Reported telemetry",
		"lat", *payload.Lat, "lon", *payload.Lon,
		"speed", *payload.Speed, "battery", *payload.BatteryLevel)
}

// handleCommand reacts to commands pushed by the hub. Unknown commands are
// logged and ignored so newer hubs stay compatible with older agents.
func (a *Agent) handleCommand(_ context.Context, _ string, payload []byte) {
	var cmd model.Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		log.Error(err, "Failed to unmarshal command")
		return
	}

	log.Info("Received command", "command", cmd.Name, "id", cmd.ID)
	switch cmd.Name {
	case "stop":
		a.sim.Halt()
	case "start", "resume":
		a.sim.Resume()
	default:
		log.Warn("Ignoring unknown command", "command", cmd.Name)
	}
}
