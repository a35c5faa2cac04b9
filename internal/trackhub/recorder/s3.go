package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
	"github.com/fleetglass/fleetglass/pkg/log"
	"github.com/fleetglass/fleetglass/pkg/options"
)

// s3Sink writes each batch as one NDJSON object. Objects are keyed by
// flush time, so a day of telemetry lists as an ordered segment series.
type s3Sink struct {
	client     *minio.Client
	bucketName string
}

// NewS3Sink creates a durable-log sink backed by any S3-compatible store.
func NewS3Sink(ctx context.Context, opts *options.S3Options) (Sink, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	s := &s3Sink{
		client:     client,
		bucketName: opts.BucketName,
	}
	if err := s.checkBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *s3Sink) checkBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		log.Info("Bucket does not exist, creating...", "bucket", s.bucketName)
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

func (s *s3Sink) WriteBatch(ctx context.Context, samples []*model.LocationSample) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, sample := range samples {
		if err := enc.Encode(sample); err != nil {
			return fmt.Errorf("failed to encode sample: %w", err)
		}
	}

	key := segmentKey(time.Now().UTC())
	_, err := s.client.PutObject(ctx, s.bucketName, key, &buf, int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "application/x-ndjson"})
	if err != nil {
		return fmt.Errorf("failed to put segment %s: %w", key, err)
	}
	return nil
}

func (s *s3Sink) Close(context.Context) error {
	return nil
}

// segmentKey builds an object key that sorts chronologically:
// telemetry/2026/08/31/143005.123456789.ndjson
func segmentKey(t time.Time) string {
	return fmt.Sprintf("telemetry/%s/%s.ndjson",
		t.Format("2006/01/02"), t.Format("150405.000000000"))
}
