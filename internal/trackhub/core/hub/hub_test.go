package hub

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
)

// collector is a test SendFunc that records delivered payloads.
type collector struct {
	mu       sync.Mutex
	payloads [][]byte
	delay    time.Duration
	failWith error
}

func (c *collector) send(payload []byte) error {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func locationEvent(vehicleID string) *model.Event {
	return &model.Event{
		Type: model.EventLocationUpdate,
		Data: model.VehicleState{
			LocationSample: model.LocationSample{VehicleID: vehicleID, Status: model.StatusActive},
		},
	}
}

func TestPublishReachesAllObservers(t *testing.T) {
	h := New()
	a, b := &collector{}, &collector{}

	obsA := h.Register(a.send)
	obsB := h.Register(b.send)
	defer h.Unregister(obsA)
	defer h.Unregister(obsB)

	h.Publish(locationEvent("V001"))

	waitFor(t, func() bool { return a.count() == 1 && b.count() == 1 })
	assert.JSONEq(t, string(a.payloads[0]), string(b.payloads[0]))
}

func TestSlowObserverDoesNotStallOthers(t *testing.T) {
	h := New(WithObserverQueueSize(2))

	slow := &collector{delay: 200 * time.Millisecond}
	fast := &collector{}

	obsSlow := h.Register(slow.send)
	obsFast := h.Register(fast.send)
	defer h.Unregister(obsSlow)
	defer h.Unregister(obsFast)

	const events = 20
	start := time.Now()
	for i := 0; i < events; i++ {
		h.Publish(locationEvent("V001"))
	}
	elapsed := time.Since(start)

	// Publishing must not block on the saturated slow observer.
	assert.Less(t, elapsed, 100*time.Millisecond, "publish blocked on a slow observer")

	// The fast observer gets everything.
	waitFor(t, func() bool { return fast.count() == events })

	// The slow observer saw drop-oldest: it can never receive more than
	// its queue bound plus in-flight sends.
	assert.Less(t, slow.count(), events)
}

func TestFailedSendUnregistersObserver(t *testing.T) {
	h := New()

	failing := &collector{failWith: errors.New("broken pipe")}
	healthy := &collector{}

	h.Register(failing.send)
	obsOK := h.Register(healthy.send)
	defer h.Unregister(obsOK)

	h.Publish(locationEvent("V001"))

	// The failing observer is removed automatically.
	waitFor(t, func() bool { return h.Observers() == 1 })

	// Subsequent publishes are delivered to the healthy observer only,
	// with no error surfacing anywhere.
	h.Publish(locationEvent("V002"))
	waitFor(t, func() bool { return healthy.count() == 2 })
}

func TestUnregisterIdempotent(t *testing.T) {
	h := New()
	c := &collector{}

	obs := h.Register(c.send)
	h.Unregister(obs)
	h.Unregister(obs) // second call is a no-op
	h.Unregister(nil)

	assert.Equal(t, 0, h.Observers())
}

func TestNoReplayForLateObserver(t *testing.T) {
	h := New()
	early := &collector{}
	obsEarly := h.Register(early.send)
	defer h.Unregister(obsEarly)

	h.Publish(locationEvent("V001"))
	waitFor(t, func() bool { return early.count() == 1 })

	late := &collector{}
	obsLate := h.Register(late.send)
	defer h.Unregister(obsLate)

	h.Publish(locationEvent("V002"))
	waitFor(t, func() bool { return late.count() == 1 })

	require.Equal(t, 2, early.count())
	assert.Contains(t, string(late.payloads[0]), "V002")
}

func TestPerObserverOrdering(t *testing.T) {
	h := New(WithObserverQueueSize(64))
	c := &collector{}
	obs := h.Register(c.send)
	defer h.Unregister(obs)

	ids := []string{"V001", "V002", "V003", "V004", "V005"}
	for _, id := range ids {
		h.Publish(locationEvent(id))
	}

	waitFor(t, func() bool { return c.count() == len(ids) })

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, id := range ids {
		assert.Contains(t, string(c.payloads[i]), id, "delivery order matches publish order")
	}
}
