// Package mqtt implements the MQTT ingress layer: vehicles publish
// telemetry under <root>/telemetry/<vehicle_id>, the hub ingests it.
package mqtt

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/service"
	"github.com/fleetglass/fleetglass/pkg/log"
	pkgmqtt "github.com/fleetglass/fleetglass/pkg/mqtt"
	"github.com/fleetglass/fleetglass/pkg/mqtt/topic"
	"github.com/fleetglass/fleetglass/pkg/options"
)

const qos = 1

// Server implements the MQTT ingress layer.
type Server struct {
	client pkgmqtt.Client
	topics *topic.Builder
	svc    *service.Service
}

// NewServer creates a new MQTT server (client).
func NewServer(opts *options.MqttOptions, svc *service.Service) (*Server, error) {
	cfg := opts.ToClientConfig()
	if cfg.ClientID == "" {
		hostname, _ := os.Hostname()
		cfg.ClientID = fmt.Sprintf("fglass-hub-%s", hostname)
	}

	client, err := pkgmqtt.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Server{
		client: client,
		topics: topic.NewBuilder(opts.TopicRoot),
		svc:    svc,
	}, nil
}

// Start connects to the broker and subscribes to topics.
func (s *Server) Start(ctx context.Context) error {
	// 1. Start the connection manager (Non-blocking)
	if err := s.client.Start(ctx); err != nil {
		return err
	}

	// Ensure MQTT disconnects when Start exits (LIFO order)
	defer func() {
		log.Info("Disconnecting MQTT client...")
		// Use a fresh context with timeout to ensure disconnect packet sends
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.client.Disconnect(shutdownCtx)
		log.Info("MQTT client disconnected")
	}()

	// 2. Wait for the initial connection before serving traffic.
	log.Info("Waiting for MQTT connection...")
	if err := s.client.AwaitConnection(ctx); err != nil {
		return err
	}
	log.Info("MQTT Connected")

	if err := s.initMQTTSubscriptions(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	return nil
}

func (s *Server) initMQTTSubscriptions(ctx context.Context) error {
	telemetryTopic := s.topics.TelemetryWildcard()
	if err := s.client.Subscribe(ctx, telemetryTopic, qos, s.handleTelemetry); err != nil {
		return fmt.Errorf("failed to subscribe to topic: %s, err: %w", telemetryTopic, err)
	}

	statusTopic := s.topics.StatusWildcard()
	if err := s.client.Subscribe(ctx, statusTopic, qos, s.handleStatus); err != nil {
		return fmt.Errorf("failed to subscribe to topic: %s, err: %w", statusTopic, err)
	}

	return nil
}
