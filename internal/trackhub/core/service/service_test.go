package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetglass/fleetglass/internal/trackhub/core"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/hub"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/relay"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/store"
	"github.com/fleetglass/fleetglass/pkg/log"
)

type fakeRecorder struct {
	mu      sync.Mutex
	samples []*model.LocationSample
}

func (f *fakeRecorder) Append(sample *model.LocationSample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, sample)
}

func (f *fakeRecorder) Close(context.Context) error { return nil }

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.samples)
}

type fakeNotifier struct {
	mu   sync.Mutex
	cmds []*model.Command
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, cmd *model.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds = append(f.cmds, cmd)
	return f.err
}

type fakePresence struct {
	mu       sync.Mutex
	observed []string
	presence model.Presence
}

func (f *fakePresence) Observe(vehicleID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observed = append(f.observed, vehicleID)
}

func (f *fakePresence) Classify(string) model.Presence {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presence
}

func newTestService(opts ...Option) *Service {
	base := []Option{WithLogger(log.NewNopLogger())}
	return New(store.New(), hub.New(), relay.New(), append(base, opts...)...)
}

func ptr[T any](v T) *T { return &v }

func TestSubmitTelemetryDefaults(t *testing.T) {
	svc := newTestService()

	state, err := svc.SubmitTelemetry(context.Background(), &TelemetryPayload{
		VehicleID: "V001",
		Lat:       ptr(37.7749),
		Lon:       ptr(-122.4194),
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, state.Speed)
	assert.Equal(t, 0.0, state.Heading)
	assert.Equal(t, 100.0, state.BatteryLevel)
	assert.Equal(t, model.StatusActive, state.Status)
	assert.False(t, state.Timestamp.IsZero())
}

func TestSubmitTelemetryValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.SubmitTelemetry(ctx, &TelemetryPayload{
		Lat: ptr(1.0), Lon: ptr(2.0),
	})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))

	_, err = svc.SubmitTelemetry(ctx, &TelemetryPayload{
		VehicleID: "V001", Lon: ptr(2.0),
	})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))

	_, err = svc.SubmitTelemetry(ctx, &TelemetryPayload{
		VehicleID: "V001", Lat: ptr(1.0),
	})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))

	// Nothing was stored.
	_, err = svc.GetState("V001")
	assert.ErrorIs(t, err, core.ErrVehicleNotFound)
}

func TestSubmitTelemetrySideEffects(t *testing.T) {
	rec := &fakeRecorder{}
	pres := &fakePresence{presence: model.PresenceOnline}
	svc := newTestService(WithRecorder(rec), WithPresence(pres))

	received := make(chan []byte, 1)
	svc.Hub().Register(func(payload []byte) error {
		received <- payload
		return nil
	})

	_, err := svc.SubmitTelemetry(context.Background(), &TelemetryPayload{
		VehicleID: "V001",
		Lat:       ptr(48.85),
		Lon:       ptr(2.35),
		Speed:     ptr(42.0),
	})
	require.NoError(t, err)

	select {
	case payload := <-received:
		assert.Contains(t, string(payload), `"type":"location_update"`)
		assert.Contains(t, string(payload), `"vehicle_id":"V001"`)
	case <-time.After(time.Second):
		t.Fatal("no event delivered to observer")
	}

	assert.Equal(t, 1, rec.count())
	assert.Equal(t, []string{"V001"}, pres.observed)
}

func TestSubmitTelemetryStaleRejected(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newTestService(WithRecorder(rec))
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := svc.SubmitTelemetry(ctx, &TelemetryPayload{
		VehicleID: "V001", Lat: ptr(1.0), Lon: ptr(2.0), Timestamp: ptr(now),
	})
	require.NoError(t, err)

	_, err = svc.SubmitTelemetry(ctx, &TelemetryPayload{
		VehicleID: "V001", Lat: ptr(3.0), Lon: ptr(4.0),
		Timestamp: ptr(now.Add(-time.Minute)),
	})
	assert.ErrorIs(t, err, core.ErrStaleTimestamp)

	// The stale sample never reached the durable log.
	assert.Equal(t, 1, rec.count())

	state, err := svc.GetState("V001")
	require.NoError(t, err)
	assert.Equal(t, 1.0, state.Lat)
}

func TestGetStateDecoratesPresence(t *testing.T) {
	pres := &fakePresence{presence: model.PresenceStale}
	svc := newTestService(WithPresence(pres))

	_, err := svc.SubmitTelemetry(context.Background(), &TelemetryPayload{
		VehicleID: "V001", Lat: ptr(1.0), Lon: ptr(2.0),
	})
	require.NoError(t, err)

	state, err := svc.GetState("V001")
	require.NoError(t, err)
	assert.Equal(t, model.PresenceStale, state.Presence)

	states := svc.ListStates()
	require.Len(t, states, 1)
	assert.Equal(t, model.PresenceStale, states[0].Presence)
}

func TestIssueCommandBroadcastsAndNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(WithNotifier(notifier))

	received := make(chan []byte, 1)
	svc.Hub().Register(func(payload []byte) error {
		received <- payload
		return nil
	})

	cmd, err := svc.IssueCommand(context.Background(), "V001", "stop", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, cmd.ID)

	select {
	case payload := <-received:
		assert.Contains(t, string(payload), `"type":"command"`)
		assert.Contains(t, string(payload), `"command":"stop"`)
	case <-time.After(time.Second):
		t.Fatal("no command event delivered to observer")
	}

	require.Len(t, notifier.cmds, 1)
	assert.Equal(t, "V001", notifier.cmds[0].VehicleID)
}

func TestIssueCommandNotifierFailureIsNotFatal(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("broker unreachable")}
	svc := newTestService(WithNotifier(notifier))

	_, err := svc.IssueCommand(context.Background(), "V001", "stop", nil)
	require.NoError(t, err)

	// The command is still available for polling.
	cmd, ok := svc.PollCommand("V001")
	require.True(t, ok)
	assert.Equal(t, "stop", cmd.Name)
}

func TestPollCommandClearsSlot(t *testing.T) {
	svc := newTestService()

	_, err := svc.IssueCommand(context.Background(), "V001", "return_to_base",
		map[string]string{"reason": "low_battery"})
	require.NoError(t, err)

	cmd, ok := svc.PollCommand("V001")
	require.True(t, ok)
	assert.Equal(t, "return_to_base", cmd.Name)
	assert.Equal(t, "low_battery", cmd.Parameters["reason"])

	_, ok = svc.PollCommand("V001")
	assert.False(t, ok)
}

func TestRecentHistory(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		_, err := svc.SubmitTelemetry(ctx, &TelemetryPayload{
			VehicleID: "V001",
			Lat:       ptr(float64(i)),
			Lon:       ptr(0.0),
			Timestamp: ptr(base.Add(time.Duration(i) * time.Second)),
		})
		require.NoError(t, err)
	}

	samples, err := svc.RecentHistory("V001", 2)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 2.0, samples[0].Lat)
	assert.Equal(t, 1.0, samples[1].Lat)
}
