package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
)

const createTableStmt = `
CREATE TABLE IF NOT EXISTS location_samples (
	vehicle_id    TEXT             NOT NULL,
	lat           DOUBLE PRECISION NOT NULL,
	lon           DOUBLE PRECISION NOT NULL,
	speed         DOUBLE PRECISION NOT NULL,
	heading       DOUBLE PRECISION NOT NULL,
	battery_level DOUBLE PRECISION NOT NULL,
	status        TEXT             NOT NULL,
	ts            TIMESTAMPTZ      NOT NULL,
	extras        JSONB
);
CREATE INDEX IF NOT EXISTS location_samples_vehicle_ts
	ON location_samples (vehicle_id, ts DESC);
`

// postgresSink writes batches into a location_samples table using the
// COPY protocol, one round trip per batch.
type postgresSink struct {
	db *sql.DB
}

// NewPostgresSink opens the database, verifies connectivity, and ensures
// the telemetry table exists.
func NewPostgresSink(ctx context.Context, dsn string) (Sink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure telemetry table: %w", err)
	}
	return &postgresSink{db: db}, nil
}

func (s *postgresSink) WriteBatch(ctx context.Context, samples []*model.LocationSample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("location_samples",
		"vehicle_id", "lat", "lon", "speed", "heading",
		"battery_level", "status", "ts", "extras"))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}

	for _, sample := range samples {
		var extras any
		if len(sample.Extras) > 0 {
			raw, err := json.Marshal(sample.Extras)
			if err != nil {
				return fmt.Errorf("failed to encode extras: %w", err)
			}
			extras = string(raw)
		}
		if _, err := stmt.ExecContext(ctx,
			sample.VehicleID, sample.Lat, sample.Lon, sample.Speed,
			sample.Heading, sample.BatteryLevel, string(sample.Status),
			sample.Timestamp, extras,
		); err != nil {
			return fmt.Errorf("failed to buffer row: %w", err)
		}
	}

	// Flush the COPY stream.
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close copy: %w", err)
	}
	return tx.Commit()
}

func (s *postgresSink) Close(context.Context) error {
	return s.db.Close()
}
