// Package service implements the hub's use cases: telemetry ingest,
// state queries, and command handling. It orchestrates the state store,
// the broadcast hub, the command relay, and the secondary adapters
// (durable log, command notifier, presence tracker).
package service

import (
	"github.com/fleetglass/fleetglass/internal/trackhub/core"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/hub"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/relay"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/store"
	"github.com/fleetglass/fleetglass/pkg/log"
)

// Service wires the hub's core components together.
// Dependency injection happens in New.
type Service struct {
	store    *store.Store
	hub      *hub.Hub
	relay    *relay.Relay
	recorder core.Recorder
	notifier core.CommandNotifier
	presence core.PresenceSink

	logger log.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithRecorder attaches the durable log adapter.
func WithRecorder(r core.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithNotifier attaches the command push adapter.
func WithNotifier(n core.CommandNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithPresence attaches the presence tracker.
func WithPresence(p core.PresenceSink) Option {
	return func(s *Service) { s.presence = p }
}

// WithLogger sets the service logger.
func WithLogger(l log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates the core service around the given store, hub and relay.
func New(st *store.Store, h *hub.Hub, r *relay.Relay, opts ...Option) *Service {
	s := &Service{
		store:  st,
		hub:    h,
		relay:  r,
		logger: log.WithName("service"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Hub exposes the broadcast hub for transport adapters that register
// observers directly.
func (s *Service) Hub() *hub.Hub {
	return s.hub
}
