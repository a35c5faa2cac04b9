// Package trackhub assembles the vehicle tracking hub from its parts:
// the in-memory state store, the broadcast hub, the command relay, the
// durable log, and the HTTP and MQTT ingress servers.
package trackhub

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fleetglass/fleetglass/internal/trackhub/notifier"
	"github.com/fleetglass/fleetglass/internal/trackhub/presence"
	"github.com/fleetglass/fleetglass/internal/trackhub/recorder"
	"github.com/fleetglass/fleetglass/internal/trackhub/server"
	"github.com/fleetglass/fleetglass/pkg/log"
)

// TrackHubServer is the assembled hub process.
type TrackHubServer struct {
	serverManager *server.Manager
	recorder      *recorder.Recorder
	notifier      *notifier.MQTTNotifier
	presence      *presence.Tracker
}

// Run serves until the context is canceled, then shuts the adapters down
// in reverse order of their position in the pipeline.
func (s *TrackHubServer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if s.presence != nil {
		g.Go(func() error {
			return s.presence.Run(ctx)
		})
	}
	g.Go(func() error {
		return s.serverManager.Start(ctx)
	})

	err := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.recorder != nil {
		if closeErr := s.recorder.Close(shutdownCtx); closeErr != nil {
			log.Error(closeErr, "Failed to close recorder")
		}
	}
	if s.notifier != nil {
		if closeErr := s.notifier.Close(shutdownCtx); closeErr != nil {
			log.Error(closeErr, "Failed to close notifier")
		}
	}

	log.Info("TrackHub server stopped gracefully.")
	return err
}
