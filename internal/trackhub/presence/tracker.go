// Package presence classifies vehicle liveness from telemetry arrival
// times. A vehicle that reports is online, one that goes quiet becomes
// stale, and after a longer silence it is offline. Presence is advisory:
// it decorates read snapshots and emits events, but never removes state.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/fleetglass/fleetglass/internal/pkg/metrics"
	"github.com/fleetglass/fleetglass/internal/trackhub/core"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
	"github.com/fleetglass/fleetglass/pkg/log"
	"github.com/fleetglass/fleetglass/pkg/options"
)

const (
	eventReport = "report"
	eventAge    = "age"
	eventExpire = "expire"
)

// Broadcaster receives presence change events for connected observers.
type Broadcaster interface {
	Publish(event *model.Event)
}

type vehicleTrack struct {
	machine  *fsm.FSM
	lastSeen time.Time
}

// Tracker keeps one liveness state machine per vehicle and sweeps them
// against the configured thresholds.
type Tracker struct {
	mu       sync.Mutex
	vehicles map[string]*vehicleTrack

	staleAfter    time.Duration
	offlineAfter  time.Duration
	sweepInterval time.Duration

	broadcaster Broadcaster
	logger      log.Logger
	now         func() time.Time
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock overrides the tracker's time source.
func WithClock(fn func() time.Time) Option {
	return func(t *Tracker) { t.now = fn }
}

// WithLogger sets the tracker logger.
func WithLogger(l log.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// New creates a Tracker from the given thresholds. Presence changes are
// published to the broadcaster, which may be nil.
func New(opts *options.PresenceOptions, broadcaster Broadcaster, trackerOpts ...Option) *Tracker {
	t := &Tracker{
		vehicles:      make(map[string]*vehicleTrack),
		staleAfter:    opts.StaleAfter,
		offlineAfter:  opts.OfflineAfter,
		sweepInterval: opts.SweepInterval,
		broadcaster:   broadcaster,
		logger:        log.WithName("presence"),
		now:           time.Now,
	}
	for _, o := range trackerOpts {
		o(t)
	}
	return t
}

// Observe records a report from the vehicle, moving it back to online if
// it had aged out.
func (t *Tracker) Observe(vehicleID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	track, ok := t.vehicles[vehicleID]
	if !ok {
		track = &vehicleTrack{machine: t.newMachine(vehicleID)}
		t.vehicles[vehicleID] = track
	}
	track.lastSeen = t.now()

	if track.machine.Current() != string(model.PresenceOnline) {
		t.fire(track, vehicleID, eventReport)
	}
}

// Classify returns the vehicle's current presence, or "" when the vehicle
// has never been observed.
func (t *Tracker) Classify(vehicleID string) model.Presence {
	t.mu.Lock()
	defer t.mu.Unlock()

	track, ok := t.vehicles[vehicleID]
	if !ok {
		return ""
	}
	return model.Presence(track.machine.Current())
}

// Run sweeps the tracked vehicles until the context is canceled.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.sweep(t.now())
		}
	}
}

// sweep ages out vehicles whose last report is older than the thresholds.
func (t *Tracker) sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for vehicleID, track := range t.vehicles {
		silence := now.Sub(track.lastSeen)
		switch track.machine.Current() {
		case string(model.PresenceOnline):
			if silence >= t.staleAfter {
				t.fire(track, vehicleID, eventAge)
			}
		case string(model.PresenceStale):
			if silence >= t.offlineAfter {
				t.fire(track, vehicleID, eventExpire)
			}
		}
	}
}

func (t *Tracker) fire(track *vehicleTrack, vehicleID, event string) {
	if err := track.machine.Event(context.Background(), event); err != nil {
		t.logger.Error(err, "Presence transition failed", "vehicle", vehicleID, "event", event)
	}
}

func (t *Tracker) newMachine(vehicleID string) *fsm.FSM {
	return fsm.NewFSM(
		string(model.PresenceOnline),
		fsm.Events{
			{Name: eventReport, Src: []string{string(model.PresenceStale), string(model.PresenceOffline)}, Dst: string(model.PresenceOnline)},
			{Name: eventAge, Src: []string{string(model.PresenceOnline)}, Dst: string(model.PresenceStale)},
			{Name: eventExpire, Src: []string{string(model.PresenceStale)}, Dst: string(model.PresenceOffline)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				t.onTransition(vehicleID, model.Presence(e.Dst))
			},
		},
	)
}

func (t *Tracker) onTransition(vehicleID string, to model.Presence) {
	metrics.PresenceTransitions.WithLabelValues(string(to)).Inc()
	t.logger.Info("Presence changed", "vehicle", vehicleID, "presence", to)

	if t.broadcaster == nil {
		return
	}
	t.broadcaster.Publish(&model.Event{
		Type: model.EventPresence,
		Data: &model.PresenceChange{VehicleID: vehicleID, Presence: to},
	})
}

var _ core.PresenceSink = (*Tracker)(nil)
