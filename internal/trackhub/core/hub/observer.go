package hub

import (
	"sync"

	"github.com/google/uuid"
)

// SendFunc pushes one serialized event onto the observer's real connection.
// It is provided by the transport layer (e.g. a WebSocket write).
type SendFunc func(payload []byte) error

// Observer is one live subscription. Each observer owns a bounded outbound
// queue drained by its own goroutine, so a slow consumer only ever delays
// itself.
type Observer struct {
	id     string
	send   SendFunc
	queue  chan []byte
	done   chan struct{}
	closed sync.Once
}

func newObserver(send SendFunc, queueSize int) *Observer {
	return &Observer{
		id:    uuid.NewString(),
		send:  send,
		queue: make(chan []byte, queueSize),
		done:  make(chan struct{}),
	}
}

// ID returns the observer's unique handle id.
func (o *Observer) ID() string { return o.id }

// enqueue attempts a non-blocking hand-off. When the queue is full the
// oldest queued payload is dropped in favor of the new one: for a live
// position feed only the latest state matters.
func (o *Observer) enqueue(payload []byte) (dropped bool) {
	select {
	case o.queue <- payload:
		return false
	default:
	}

	select {
	case <-o.queue:
		dropped = true
	default:
	}

	select {
	case o.queue <- payload:
	default:
		// Lost the race with a concurrent publisher; count as dropped.
		dropped = true
	}
	return dropped
}

// stop terminates the delivery goroutine. Safe to call more than once.
func (o *Observer) stop() {
	o.closed.Do(func() { close(o.done) })
}
