package recorder

import (
	"context"
	"fmt"

	"github.com/fleetglass/fleetglass/pkg/options"
)

// NewFromOptions builds the configured durable log. It returns nil when
// recording is disabled; callers treat a nil recorder as "no durable log".
func NewFromOptions(ctx context.Context, recOpts *options.RecorderOptions, s3Opts *options.S3Options) (*Recorder, error) {
	var (
		sink Sink
		err  error
	)
	switch recOpts.Backend {
	case options.RecorderBackendNone:
		return nil, nil
	case options.RecorderBackendS3:
		sink, err = NewS3Sink(ctx, s3Opts)
	case options.RecorderBackendPostgres:
		sink, err = NewPostgresSink(ctx, recOpts.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown recorder backend %q", recOpts.Backend)
	}
	if err != nil {
		return nil, err
	}

	return New(sink,
		WithBufferSize(recOpts.BufferSize),
		WithBatchSize(recOpts.BatchSize),
		WithFlushInterval(recOpts.FlushInterval),
	), nil
}
