// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package sync

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileSkipsRecordsWithoutIdentifier(t *testing.T) {
	store := newFakeStore()
	created := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)

	raws := []json.RawMessage{
		rawRecovery(100, created, 72),
		json.RawMessage(`{"score":{"recovery_score":50}}`),
		json.RawMessage(`not json at all`),
		rawRecovery(101, created, 33),
	}

	inserted, updated, err := reconcileRecoveries(context.Background(), store, raws)
	require.NoError(t, err)

	// Malformed records are skipped without counting or aborting.
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 0, updated)
	assert.Len(t, store.recoveries, 2)
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := newFakeStore()
	created := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	raws := []json.RawMessage{rawRecovery(100, created, 72)}

	inserted, updated, err := reconcileRecoveries(context.Background(), store, raws)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 0, updated)

	inserted, updated, err = reconcileRecoveries(context.Background(), store, raws)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
	assert.Equal(t, 1, updated)
	assert.Len(t, store.recoveries, 1)
}

func TestParseRecoveryMissingScoreDefaultsToZero(t *testing.T) {
	created := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	raw := json.RawMessage(`{"cycle_id":5,"created_at":"2026-08-30T08:00:00.000Z","score_state":"PENDING_SCORE"}`)

	rec, err := parseRecovery(raw)
	require.NoError(t, err)

	assert.Equal(t, int64(5), rec.CycleID)
	assert.Equal(t, created, rec.Date)
	assert.Zero(t, rec.Score)
	assert.Zero(t, rec.HRVMilli)
}

func TestParseSleepConvertsDurations(t *testing.T) {
	start := time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC)
	rec, err := parseSleep(rawSleep("sleep-1", 200, start, false))
	require.NoError(t, err)

	assert.Equal(t, "sleep-1", rec.SleepID)
	assert.Equal(t, int64(200), rec.CycleID)
	assert.Equal(t, start, rec.StartTime)
	assert.Equal(t, start.Add(8*time.Hour), rec.EndTime)
	assert.False(t, rec.Nap)

	// 27000000 ms in bed is 7.5 hours; stage durations land in minutes.
	assert.InDelta(t, 7.5, rec.InBedHours, 0.001)
	assert.InDelta(t, 30.0, rec.AwakeMinutes, 0.001)
	assert.InDelta(t, 210.0, rec.LightSleepMinutes, 0.001)
	assert.InDelta(t, 90.0, rec.SlowWaveSleepMinutes, 0.001)
	assert.InDelta(t, 120.0, rec.REMSleepMinutes, 0.001)
	assert.Equal(t, 5, rec.SleepCycleCount)
	assert.Equal(t, 8, rec.DisturbanceCount)
	assert.InDelta(t, 15.2, rec.RespiratoryRate, 0.001)
}

func TestParseSleepRejectsBadTimestamp(t *testing.T) {
	raw := json.RawMessage(`{"id":"sleep-1","cycle_id":1,"start":"yesterday-ish"}`)

	_, err := parseSleep(raw)
	assert.ErrorIs(t, err, errSkipRecord)
}

func TestParseWorkout(t *testing.T) {
	start := time.Date(2026, 8, 30, 17, 0, 0, 0, time.UTC)
	rec, err := parseWorkout(rawWorkout("w-1", start))
	require.NoError(t, err)

	assert.Equal(t, "w-1", rec.WorkoutID)
	assert.Equal(t, "running", rec.SportName)
	assert.InDelta(t, 12.3, rec.Strain, 0.001)
	assert.InDelta(t, 8046.0, rec.DistanceMeter, 0.001)
}

func TestParseCycleOpenCycleHasNoEnd(t *testing.T) {
	start := time.Date(2026, 8, 31, 4, 0, 0, 0, time.UTC)
	rec, err := parseCycle(rawCycle(9, start))
	require.NoError(t, err)

	assert.Equal(t, int64(9), rec.CycleID)
	assert.Nil(t, rec.EndTime)
	assert.InDelta(t, 9.5, rec.Strain, 0.001)

	closed := json.RawMessage(`{"id":9,"start":"2026-08-31T04:00:00.000Z","end":"2026-09-01T04:00:00.000Z"}`)
	rec, err = parseCycle(closed)
	require.NoError(t, err)
	require.NotNil(t, rec.EndTime)
	assert.Equal(t, time.Date(2026, 9, 1, 4, 0, 0, 0, time.UTC), *rec.EndTime)
}
