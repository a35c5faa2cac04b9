// Package recorder implements the durable log: an asynchronous pipeline
// that batches accepted telemetry samples and writes them to a storage
// backend. The in-memory store keeps only recent history; the recorder
// keeps everything.
package recorder

import (
	"context"
	"time"

	"github.com/fleetglass/fleetglass/internal/pkg/metrics"
	"github.com/fleetglass/fleetglass/internal/trackhub/core"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
	"github.com/fleetglass/fleetglass/pkg/log"
)

const (
	// DefaultBufferSize bounds the in-flight queue between ingest and the
	// flush loop. A full queue drops the newest sample rather than block.
	DefaultBufferSize = 4096

	// DefaultBatchSize is the number of samples flushed in one write.
	DefaultBatchSize = 500

	// DefaultFlushInterval caps how long a partial batch may wait.
	DefaultFlushInterval = 2 * time.Second
)

// Sink is a storage backend for the durable log. WriteBatch must be safe
// for calls from a single flush goroutine; it is never called concurrently.
type Sink interface {
	WriteBatch(ctx context.Context, samples []*model.LocationSample) error
	Close(ctx context.Context) error
}

// Recorder buffers samples from the ingest path and flushes them to a
// Sink in batches. It implements the hub's durable-log port.
type Recorder struct {
	sink Sink

	queue         chan *model.LocationSample
	batchSize     int
	flushInterval time.Duration

	done    chan struct{}
	stopped chan struct{}
	logger  log.Logger
}

// Option customizes a Recorder.
type Option func(*Recorder)

// WithBufferSize sets the in-flight queue capacity.
func WithBufferSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.queue = make(chan *model.LocationSample, n)
		}
	}
}

// WithBatchSize sets the flush batch size.
func WithBatchSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithFlushInterval sets the maximum age of a partial batch.
func WithFlushInterval(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.flushInterval = d
		}
	}
}

// WithLogger sets the recorder logger.
func WithLogger(l log.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// New creates a Recorder around the given sink and starts its flush loop.
func New(sink Sink, opts ...Option) *Recorder {
	r := &Recorder{
		sink:          sink,
		queue:         make(chan *model.LocationSample, DefaultBufferSize),
		batchSize:     DefaultBatchSize,
		flushInterval: DefaultFlushInterval,
		done:          make(chan struct{}),
		stopped:       make(chan struct{}),
		logger:        log.WithName("recorder"),
	}
	for _, o := range opts {
		o(r)
	}
	go r.loop()
	return r
}

// Append queues one sample for the durable log. It never blocks: when the
// queue is full the sample is dropped and counted.
func (r *Recorder) Append(sample *model.LocationSample) {
	select {
	case r.queue <- sample:
		metrics.RecorderAppends.Inc()
	default:
		metrics.RecorderDropped.Inc()
	}
}

// Close stops the flush loop, flushes the remaining samples, and closes
// the sink. The context bounds the final flush.
func (r *Recorder) Close(ctx context.Context) error {
	close(r.done)
	<-r.stopped

	// Drain whatever is still queued into one final batch.
	var batch []*model.LocationSample
	for {
		select {
		case sample := <-r.queue:
			batch = append(batch, sample)
			continue
		default:
		}
		break
	}
	if len(batch) > 0 {
		if err := r.flush(ctx, batch); err != nil {
			r.logger.Error(err, "Final flush failed", "samples", len(batch))
		}
	}

	return r.sink.Close(ctx)
}

func (r *Recorder) loop() {
	defer close(r.stopped)

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	batch := make([]*model.LocationSample, 0, r.batchSize)
	for {
		select {
		case <-r.done:
			if len(batch) > 0 {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := r.flush(ctx, batch); err != nil {
					r.logger.Error(err, "Shutdown flush failed, samples lost", "samples", len(batch))
				}
				cancel()
			}
			return
		case sample := <-r.queue:
			batch = append(batch, sample)
			if len(batch) < r.batchSize {
				continue
			}
		case <-ticker.C:
			if len(batch) == 0 {
				continue
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := r.flush(ctx, batch); err != nil {
			r.logger.Error(err, "Batch flush failed, samples lost", "samples", len(batch))
		}
		cancel()
		batch = batch[:0]
	}
}

func (r *Recorder) flush(ctx context.Context, batch []*model.LocationSample) error {
	start := time.Now()
	err := r.sink.WriteBatch(ctx, batch)
	metrics.RecorderFlushLatency.Observe(time.Since(start).Seconds())
	return err
}

var _ core.Recorder = (*Recorder)(nil)
