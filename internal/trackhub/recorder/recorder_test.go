package recorder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
	"github.com/fleetglass/fleetglass/pkg/log"
)

type captureSink struct {
	mu      sync.Mutex
	batches [][]*model.LocationSample
	closed  bool
}

func (c *captureSink) WriteBatch(_ context.Context, samples []*model.LocationSample) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := make([]*model.LocationSample, len(samples))
	copy(batch, samples)
	c.batches = append(c.batches, batch)
	return nil
}

func (c *captureSink) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *captureSink) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.batches {
		n += len(b)
	}
	return n
}

func sample(id string) *model.LocationSample {
	return &model.LocationSample{
		VehicleID: id,
		Lat:       1, Lon: 2,
		Timestamp: time.Now().UTC(),
	}
}

func TestFlushOnBatchSize(t *testing.T) {
	sink := &captureSink{}
	rec := New(sink,
		WithBatchSize(3),
		WithFlushInterval(time.Hour),
		WithLogger(log.NewNopLogger()))
	defer rec.Close(context.Background())

	for i := 0; i < 3; i++ {
		rec.Append(sample("V001"))
	}

	require.Eventually(t, func() bool {
		return sink.total() == 3
	}, time.Second, 10*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 3)
}

func TestFlushOnInterval(t *testing.T) {
	sink := &captureSink{}
	rec := New(sink,
		WithBatchSize(100),
		WithFlushInterval(20*time.Millisecond),
		WithLogger(log.NewNopLogger()))
	defer rec.Close(context.Background())

	rec.Append(sample("V001"))

	require.Eventually(t, func() bool {
		return sink.total() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAppendNeverBlocksWhenFull(t *testing.T) {
	sink := &captureSink{}
	rec := New(sink,
		WithBufferSize(2),
		WithBatchSize(1000),
		WithFlushInterval(time.Hour),
		WithLogger(log.NewNopLogger()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			rec.Append(sample("V001"))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Append blocked on a full queue")
	}

	require.NoError(t, rec.Close(context.Background()))
}

func TestCloseDrainsAndClosesSink(t *testing.T) {
	sink := &captureSink{}
	rec := New(sink,
		WithBatchSize(1000),
		WithFlushInterval(time.Hour),
		WithLogger(log.NewNopLogger()))

	for i := 0; i < 5; i++ {
		rec.Append(sample("V001"))
	}

	require.NoError(t, rec.Close(context.Background()))

	assert.Equal(t, 5, sink.total())
	assert.True(t, sink.closed)
}
