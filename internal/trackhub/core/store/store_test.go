package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetglass/fleetglass/internal/trackhub/core"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
)

func sampleAt(vehicleID string, ts time.Time) *model.LocationSample {
	return &model.LocationSample{
		VehicleID:    vehicleID,
		Lat:          48.1371,
		Lon:          11.5754,
		Speed:        42,
		Heading:      90,
		BatteryLevel: 80,
		Status:       model.StatusActive,
		Timestamp:    ts,
	}
}

func TestApplyThenGet(t *testing.T) {
	s := New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s1 := sampleAt("V001", base)
	s2 := sampleAt("V001", base.Add(time.Second))
	s2.Speed = 55

	state, err := s.Apply(s1)
	require.NoError(t, err)
	assert.Equal(t, "V001", state.VehicleID)

	state, err = s.Apply(s2)
	require.NoError(t, err)
	assert.Equal(t, 55.0, state.Speed)

	got, err := s.Get("V001")
	require.NoError(t, err)
	assert.Equal(t, s2.Timestamp, got.Timestamp)
	assert.Equal(t, 55.0, got.Speed)

	hist, err := s.History("V001", 2)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, s2.Timestamp, hist[0].Timestamp, "newest first")
	assert.Equal(t, s1.Timestamp, hist[1].Timestamp)
}

func TestApplyRejectsStaleTimestamp(t *testing.T) {
	s := New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.Apply(sampleAt("V001", base.Add(time.Minute)))
	require.NoError(t, err)

	older := sampleAt("V001", base)
	older.Speed = 99
	_, err = s.Apply(older)
	require.ErrorIs(t, err, core.ErrStaleTimestamp)

	// State unchanged by the rejected sample.
	got, err := s.Get("V001")
	require.NoError(t, err)
	assert.Equal(t, 42.0, got.Speed)
	assert.Equal(t, base.Add(time.Minute), got.Timestamp)
}

func TestApplyValidation(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(*model.LocationSample)
	}{
		{"missing vehicle id", func(s *model.LocationSample) { s.VehicleID = "" }},
		{"latitude too high", func(s *model.LocationSample) { s.Lat = 90.5 }},
		{"latitude too low", func(s *model.LocationSample) { s.Lat = -91 }},
		{"longitude out of range", func(s *model.LocationSample) { s.Lon = 181 }},
		{"negative speed", func(s *model.LocationSample) { s.Speed = -1 }},
		{"heading 360", func(s *model.LocationSample) { s.Heading = 360 }},
		{"battery over 100", func(s *model.LocationSample) { s.BatteryLevel = 101 }},
		{"unknown status", func(s *model.LocationSample) { s.Status = "cruising" }},
		{"zero timestamp", func(s *model.LocationSample) { s.Timestamp = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			sample := sampleAt("V001", base)
			tt.mutate(sample)

			_, err := s.Apply(sample)
			require.Error(t, err)
			assert.True(t, core.IsValidation(err), "expected validation error, got %v", err)

			// A rejected sample must never create state.
			_, err = s.Get("V001")
			assert.True(t, errors.Is(err, core.ErrVehicleNotFound))
		})
	}
}

func TestHistoryEviction(t *testing.T) {
	const capacity = 5
	s := New(WithHistoryCapacity(capacity))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < capacity+1; i++ {
		_, err := s.Apply(sampleAt("V001", base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	hist, err := s.History("V001", capacity+10)
	require.NoError(t, err)
	require.Len(t, hist, capacity, "ring keeps exactly N most recent")

	// Oldest (i=0) evicted; newest first ordering.
	assert.Equal(t, base.Add(5*time.Second), hist[0].Timestamp)
	assert.Equal(t, base.Add(1*time.Second), hist[capacity-1].Timestamp)
}

func TestHistoryLimit(t *testing.T) {
	s := New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		_, err := s.Apply(sampleAt("V001", base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	hist, err := s.History("V001", 3)
	require.NoError(t, err)
	assert.Len(t, hist, 3)
	assert.Equal(t, base.Add(9*time.Second), hist[0].Timestamp)
}

func TestGetUnknownVehicle(t *testing.T) {
	s := New()
	_, err := s.Get("ghost")
	assert.ErrorIs(t, err, core.ErrVehicleNotFound)

	_, err = s.History("ghost", 10)
	assert.ErrorIs(t, err, core.ErrVehicleNotFound)
}

func TestListSortedSnapshot(t *testing.T) {
	s := New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"V003", "V001", "V002"} {
		_, err := s.Apply(sampleAt(id, base))
		require.NoError(t, err)
	}

	states := s.List()
	require.Len(t, states, 3)
	assert.Equal(t, "V001", states[0].VehicleID)
	assert.Equal(t, "V002", states[1].VehicleID)
	assert.Equal(t, "V003", states[2].VehicleID)

	// Mutating the returned slice must not affect the store.
	states[0].Speed = 999
	got, err := s.Get("V001")
	require.NoError(t, err)
	assert.Equal(t, 42.0, got.Speed)
}

func TestConcurrentAppliesDistinctVehicles(t *testing.T) {
	const n = 200
	s := New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for _, id := range []string{"V001", "V002"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < n; i++ {
				_, err := s.Apply(sampleAt(id, base.Add(time.Duration(i)*time.Millisecond)))
				if err != nil {
					t.Errorf("unexpected apply error for %s: %v", id, err)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	for _, id := range []string{"V001", "V002"} {
		got, err := s.Get(id)
		require.NoError(t, err)
		assert.Equal(t, base.Add((n-1)*time.Millisecond), got.Timestamp,
			fmt.Sprintf("final state for %s matches its highest-timestamp input", id))
	}
}

func TestConcurrentSameVehicleSerialized(t *testing.T) {
	// Interleaved applies for one vehicle: exactly the in-order subset is
	// accepted, the rest are stale; the final state carries the max timestamp.
	s := New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Apply(sampleAt("V001", base.Add(time.Duration(i)*time.Second)))
			if err != nil && !errors.Is(err, core.ErrStaleTimestamp) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := s.Get("V001")
	require.NoError(t, err)
	assert.Equal(t, base.Add(99*time.Second), got.Timestamp)
}
