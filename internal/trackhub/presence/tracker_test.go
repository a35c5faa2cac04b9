package presence

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
	"github.com/fleetglass/fleetglass/pkg/log"
	"github.com/fleetglass/fleetglass/pkg/options"
)

type captureBroadcaster struct {
	mu     sync.Mutex
	events []*model.Event
}

func (c *captureBroadcaster) Publish(event *model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureBroadcaster) changes() []*model.PresenceChange {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*model.PresenceChange, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Data.(*model.PresenceChange))
	}
	return out
}

func newTestTracker(b Broadcaster, clock func() time.Time) *Tracker {
	opts := options.NewPresenceOptions()
	opts.StaleAfter = 30 * time.Second
	opts.OfflineAfter = 5 * time.Minute
	return New(opts, b, WithClock(clock), WithLogger(log.NewNopLogger()))
}

func TestObservedVehicleIsOnline(t *testing.T) {
	now := time.Now()
	tr := newTestTracker(nil, func() time.Time { return now })

	tr.Observe("V001")
	assert.Equal(t, model.PresenceOnline, tr.Classify("V001"))
}

func TestUnknownVehicleHasNoPresence(t *testing.T) {
	tr := newTestTracker(nil, time.Now)
	assert.Equal(t, model.Presence(""), tr.Classify("ghost"))
}

func TestSilenceAgesVehicleOut(t *testing.T) {
	now := time.Now()
	tr := newTestTracker(nil, func() time.Time { return now })

	tr.Observe("V001")

	tr.sweep(now.Add(29 * time.Second))
	assert.Equal(t, model.PresenceOnline, tr.Classify("V001"))

	tr.sweep(now.Add(31 * time.Second))
	assert.Equal(t, model.PresenceStale, tr.Classify("V001"))

	tr.sweep(now.Add(6 * time.Minute))
	assert.Equal(t, model.PresenceOffline, tr.Classify("V001"))
}

func TestReportRecoversPresence(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	tr := newTestTracker(nil, clock)

	tr.Observe("V001")
	tr.sweep(now.Add(time.Minute))
	require.Equal(t, model.PresenceStale, tr.Classify("V001"))

	tr.Observe("V001")
	assert.Equal(t, model.PresenceOnline, tr.Classify("V001"))
}

func TestTransitionsArePublished(t *testing.T) {
	now := time.Now()
	b := &captureBroadcaster{}
	tr := newTestTracker(b, func() time.Time { return now })

	tr.Observe("V001")
	tr.sweep(now.Add(time.Minute))
	tr.Observe("V001")

	changes := b.changes()
	require.Len(t, changes, 2)
	assert.Equal(t, "V001", changes[0].VehicleID)
	assert.Equal(t, model.PresenceStale, changes[0].Presence)
	assert.Equal(t, model.PresenceOnline, changes[1].Presence)
}

func TestOfflineVehicleKeepsItsTrack(t *testing.T) {
	now := time.Now()
	tr := newTestTracker(nil, func() time.Time { return now })

	tr.Observe("V001")
	tr.sweep(now.Add(time.Minute))
	tr.sweep(now.Add(10 * time.Minute))
	require.Equal(t, model.PresenceOffline, tr.Classify("V001"))

	// Repeated sweeps leave an offline vehicle where it is.
	tr.sweep(now.Add(time.Hour))
	assert.Equal(t, model.PresenceOffline, tr.Classify("V001"))
}
