// Package hub fans out state-change events to every connected observer.
// Delivery is at-most-once, per-observer FIFO, and never blocks the
// publisher: each observer has its own bounded queue and sender goroutine,
// with drop-oldest on overflow.
package hub

import (
	"sync"

	"github.com/fleetglass/fleetglass/internal/pkg/metrics"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
	"github.com/fleetglass/fleetglass/pkg/log"
)

const DefaultObserverQueueSize = 32

// Hub manages the live observer set.
type Hub struct {
	mu        sync.RWMutex
	observers map[string]*Observer

	queueSize int
	logger    log.Logger
}

// Option customizes a Hub.
type Option func(*Hub)

// WithObserverQueueSize overrides the per-observer queue capacity.
func WithObserverQueueSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.queueSize = n
		}
	}
}

// WithLogger sets the hub's logger.
func WithLogger(l log.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// New creates a Hub with no observers.
func New(opts ...Option) *Hub {
	h := &Hub{
		observers: make(map[string]*Observer),
		queueSize: DefaultObserverQueueSize,
		logger:    log.WithName("hub"),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Register adds an observer and starts its delivery goroutine. The observer
// receives events published after registration; there is no replay.
func (h *Hub) Register(send SendFunc) *Observer {
	obs := newObserver(send, h.queueSize)

	h.mu.Lock()
	h.observers[obs.id] = obs
	count := len(h.observers)
	h.mu.Unlock()

	go h.deliver(obs)

	metrics.ObserversConnected.Set(float64(count))
	h.logger.Info("Observer registered", "observer", obs.id, "total", count)
	return obs
}

// Unregister removes an observer and stops its delivery goroutine.
// It is idempotent and safe to call after the connection already failed.
func (h *Hub) Unregister(obs *Observer) {
	if obs == nil {
		return
	}

	h.mu.Lock()
	_, present := h.observers[obs.id]
	delete(h.observers, obs.id)
	count := len(h.observers)
	h.mu.Unlock()

	obs.stop()

	if present {
		metrics.ObserversConnected.Set(float64(count))
		h.logger.Info("Observer unregistered", "observer", obs.id, "total", count)
	}
}

// Publish delivers the event to every currently registered observer.
// It completes in bounded time regardless of observer queue state and
// never returns an error: observer failures are contained per observer.
func (h *Hub) Publish(event *model.Event) {
	payload, err := event.Encode()
	if err != nil {
		// An unencodable event is a programming error; log and drop.
		h.logger.Error(err, "Failed to encode event", "type", event.Type)
		return
	}

	h.mu.RLock()
	snapshot := make([]*Observer, 0, len(h.observers))
	for _, obs := range h.observers {
		snapshot = append(snapshot, obs)
	}
	h.mu.RUnlock()

	for _, obs := range snapshot {
		if obs.enqueue(payload) {
			metrics.EventsDropped.Inc()
		}
	}

	metrics.EventsPublished.Inc()
}

// Observers returns the current number of registered observers.
func (h *Hub) Observers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// deliver drains one observer's queue until the observer is stopped or a
// send fails. A failed send unregisters the observer; the error never
// reaches the publisher or other observers.
func (h *Hub) deliver(obs *Observer) {
	for {
		select {
		case <-obs.done:
			return
		case payload := <-obs.queue:
			if err := obs.send(payload); err != nil {
				h.logger.Warn("Observer send failed, dropping connection", "observer", obs.id, "err", err.Error())
				h.Unregister(obs)
				return
			}
		}
	}
}
