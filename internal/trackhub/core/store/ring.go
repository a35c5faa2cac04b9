package store

import "github.com/fleetglass/fleetglass/internal/trackhub/core/model"

// historyRing is a fixed-capacity ring of the most recent samples for one
// vehicle. Insertion evicts the oldest entry when full. It is not
// goroutine-safe; the owning vehicle entry serializes access.
type historyRing struct {
	buf  []model.LocationSample
	head int // index of the next write slot
	size int
}

func newHistoryRing(capacity int) *historyRing {
	return &historyRing{buf: make([]model.LocationSample, capacity)}
}

// push appends a sample, evicting the oldest when at capacity.
func (r *historyRing) push(s model.LocationSample) {
	r.buf[r.head] = s
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// newest returns up to limit samples, newest first.
func (r *historyRing) newest(limit int) []model.LocationSample {
	if limit > r.size {
		limit = r.size
	}
	if limit <= 0 {
		return nil
	}

	out := make([]model.LocationSample, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.head - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}

func (r *historyRing) len() int { return r.size }
