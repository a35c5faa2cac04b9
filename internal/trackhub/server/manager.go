package server

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/service"
	"github.com/fleetglass/fleetglass/internal/trackhub/server/http"
	"github.com/fleetglass/fleetglass/internal/trackhub/server/mqtt"
	"github.com/fleetglass/fleetglass/pkg/log"
)

// Server defines the common interface for all sub-servers (http, mqtt).
type Server interface {
	Start(ctx context.Context) error
}

// Manager manages the lifecycle of all protocol servers.
type Manager struct {
	servers []Server
}

// NewManager creates a new server manager and initializes all sub-servers.
func NewManager(cfg *Config, svc *service.Service) (*Manager, error) {
	var servers []Server

	// MQTT ingress is optional: HTTP-only deployments skip the broker.
	if cfg.MqttOptions.Enabled {
		mqttSrv, err := mqtt.NewServer(cfg.MqttOptions, svc)
		if err != nil {
			return nil, fmt.Errorf("failed to init mqtt server: %w", err)
		}
		servers = append(servers, mqttSrv)
	}

	// HTTP carries the REST API, the WebSocket feed, health and metrics.
	servers = append(servers, http.NewServer(cfg.HttpOptions, svc))

	return &Manager{
		servers: servers,
	}, nil
}

// Start launches all servers in parallel and waits for termination.
func (m *Manager) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, s := range m.servers {
		srv := s // capture loop variable
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	log.Info("All servers starting...")
	return g.Wait()
}
