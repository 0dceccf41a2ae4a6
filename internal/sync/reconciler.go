// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/Samarth2709/pulseboard/internal/logging"
	"github.com/Samarth2709/pulseboard/internal/models"
	"github.com/Samarth2709/pulseboard/internal/whoop"
)

// errSkipRecord marks a raw record that cannot be reconciled (missing
// natural identifier or unparseable timestamp). Skipped records are logged
// and counted; one malformed record never fails a batch.
var errSkipRecord = errors.New("record skipped")

const (
	milliPerMinute = 60 * 1000
	milliPerHour   = 60 * 60 * 1000
)

// reconcileRecoveries converts raw recovery records and upserts them as one
// batch. Returns new and updated counts; a store failure fails the whole
// call with no partial commit assumed.
func reconcileRecoveries(ctx context.Context, store Store, raws []json.RawMessage) (int, int, error) {
	records := make([]models.Recovery, 0, len(raws))
	skipped := 0

	for _, raw := range raws {
		rec, err := parseRecovery(raw)
		if err != nil {
			skipped++
			logging.Warn().Err(err).Msg("Skipping malformed recovery record")
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		logging.Info().Int("skipped", skipped).Msg("Recovery records skipped during reconcile")
	}

	inserted, updated, err := store.UpsertRecoveries(ctx, records)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to persist recoveries: %w", err)
	}
	return inserted, updated, nil
}

func reconcileSleeps(ctx context.Context, store Store, raws []json.RawMessage) (int, int, error) {
	records := make([]models.Sleep, 0, len(raws))
	skipped := 0

	for _, raw := range raws {
		rec, err := parseSleep(raw)
		if err != nil {
			skipped++
			logging.Warn().Err(err).Msg("Skipping malformed sleep record")
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		logging.Info().Int("skipped", skipped).Msg("Sleep records skipped during reconcile")
	}

	inserted, updated, err := store.UpsertSleeps(ctx, records)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to persist sleeps: %w", err)
	}
	return inserted, updated, nil
}

func reconcileWorkouts(ctx context.Context, store Store, raws []json.RawMessage) (int, int, error) {
	records := make([]models.Workout, 0, len(raws))
	skipped := 0

	for _, raw := range raws {
		rec, err := parseWorkout(raw)
		if err != nil {
			skipped++
			logging.Warn().Err(err).Msg("Skipping malformed workout record")
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		logging.Info().Int("skipped", skipped).Msg("Workout records skipped during reconcile")
	}

	inserted, updated, err := store.UpsertWorkouts(ctx, records)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to persist workouts: %w", err)
	}
	return inserted, updated, nil
}

func reconcileCycles(ctx context.Context, store Store, raws []json.RawMessage) (int, int, error) {
	records := make([]models.Cycle, 0, len(raws))
	skipped := 0

	for _, raw := range raws {
		rec, err := parseCycle(raw)
		if err != nil {
			skipped++
			logging.Warn().Err(err).Msg("Skipping malformed cycle record")
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		logging.Info().Int("skipped", skipped).Msg("Cycle records skipped during reconcile")
	}

	inserted, updated, err := store.UpsertCycles(ctx, records)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to persist cycles: %w", err)
	}
	return inserted, updated, nil
}

// parseRecovery extracts a Recovery from a raw provider record. Missing
// score fields default to zero; a missing cycle id or bad timestamp skips
// the record.
func parseRecovery(raw json.RawMessage) (models.Recovery, error) {
	var r whoop.RawRecovery
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.Recovery{}, fmt.Errorf("%w: %v", errSkipRecord, err)
	}
	if r.CycleID == nil {
		return models.Recovery{}, fmt.Errorf("%w: recovery without cycle_id", errSkipRecord)
	}

	date, err := whoop.ParseTimestamp(r.CreatedAt)
	if err != nil {
		return models.Recovery{}, fmt.Errorf("%w: %v", errSkipRecord, err)
	}

	rec := models.Recovery{
		CycleID:   *r.CycleID,
		Date:      date,
		UpdatedAt: time.Now().UTC(),
	}
	if r.Score != nil {
		rec.Score = r.Score.RecoveryScore
		rec.RestingHeartRate = r.Score.RestingHeartRate
		rec.HRVMilli = r.Score.HRVRmssdMilli
		rec.SpO2Percentage = r.Score.SpO2Percentage
		rec.SkinTempCelsius = r.Score.SkinTempCelsius
		rec.UserCalibrating = r.Score.UserCalibrating
	}
	return rec, nil
}

// parseSleep extracts a Sleep from a raw provider record, converting stage
// durations from milliseconds to minutes and in-bed time to hours.
func parseSleep(raw json.RawMessage) (models.Sleep, error) {
	var s whoop.RawSleep
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.Sleep{}, fmt.Errorf("%w: %v", errSkipRecord, err)
	}
	if s.ID == nil || *s.ID == "" {
		return models.Sleep{}, fmt.Errorf("%w: sleep without id", errSkipRecord)
	}

	start, err := whoop.ParseTimestamp(s.Start)
	if err != nil {
		return models.Sleep{}, fmt.Errorf("%w: %v", errSkipRecord, err)
	}

	rec := models.Sleep{
		SleepID:   *s.ID,
		CycleID:   s.CycleID,
		Date:      start,
		StartTime: start,
		Nap:       s.Nap,
		UpdatedAt: time.Now().UTC(),
	}
	if end, err := whoop.ParseTimestamp(s.End); err == nil {
		rec.EndTime = end
	}

	if s.Score != nil {
		rec.PerformancePct = s.Score.SleepPerformancePercentage
		rec.ConsistencyPct = s.Score.SleepConsistencyPercentage
		rec.EfficiencyPct = s.Score.SleepEfficiencyPercentage
		rec.RespiratoryRate = s.Score.RespiratoryRate

		if stages := s.Score.StageSummary; stages != nil {
			rec.InBedHours = float64(stages.TotalInBedTimeMilli) / milliPerHour
			rec.AwakeMinutes = float64(stages.TotalAwakeTimeMilli) / milliPerMinute
			rec.LightSleepMinutes = float64(stages.TotalLightSleepTimeMilli) / milliPerMinute
			rec.SlowWaveSleepMinutes = float64(stages.TotalSlowWaveSleepTimeMilli) / milliPerMinute
			rec.REMSleepMinutes = float64(stages.TotalRemSleepTimeMilli) / milliPerMinute
			rec.SleepCycleCount = stages.SleepCycleCount
			rec.DisturbanceCount = stages.DisturbanceCount
		}
	}
	return rec, nil
}

func parseWorkout(raw json.RawMessage) (models.Workout, error) {
	var w whoop.RawWorkout
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.Workout{}, fmt.Errorf("%w: %v", errSkipRecord, err)
	}
	if w.ID == nil || *w.ID == "" {
		return models.Workout{}, fmt.Errorf("%w: workout without id", errSkipRecord)
	}

	start, err := whoop.ParseTimestamp(w.Start)
	if err != nil {
		return models.Workout{}, fmt.Errorf("%w: %v", errSkipRecord, err)
	}

	rec := models.Workout{
		WorkoutID: *w.ID,
		SportName: w.SportName,
		StartTime: start,
		UpdatedAt: time.Now().UTC(),
	}
	if end, err := whoop.ParseTimestamp(w.End); err == nil {
		rec.EndTime = end
	}

	if w.Score != nil {
		rec.Strain = w.Score.Strain
		rec.AverageHeartRate = w.Score.AverageHeartRate
		rec.MaxHeartRate = w.Score.MaxHeartRate
		rec.Kilojoules = w.Score.Kilojoule
		rec.DistanceMeter = w.Score.DistanceMeter
		rec.AltitudeGainMeter = w.Score.AltitudeGainMeter
		rec.PercentRecorded = w.Score.PercentRecorded
	}
	return rec, nil
}

func parseCycle(raw json.RawMessage) (models.Cycle, error) {
	var c whoop.RawCycle
	if err := json.Unmarshal(raw, &c); err != nil {
		return models.Cycle{}, fmt.Errorf("%w: %v", errSkipRecord, err)
	}
	if c.ID == nil {
		return models.Cycle{}, fmt.Errorf("%w: cycle without id", errSkipRecord)
	}

	start, err := whoop.ParseTimestamp(c.Start)
	if err != nil {
		return models.Cycle{}, fmt.Errorf("%w: %v", errSkipRecord, err)
	}

	rec := models.Cycle{
		CycleID:        *c.ID,
		StartTime:      start,
		TimezoneOffset: c.TimezoneOffset,
		UpdatedAt:      time.Now().UTC(),
	}
	// An open cycle (today) has no end yet.
	if c.End != nil {
		if end, err := whoop.ParseTimestamp(*c.End); err == nil {
			rec.EndTime = &end
		}
	}

	if c.Score != nil {
		rec.Strain = c.Score.Strain
		rec.Kilojoules = c.Score.Kilojoule
		rec.AverageHeartRate = c.Score.AverageHeartRate
		rec.MaxHeartRate = c.Score.MaxHeartRate
	}
	return rec, nil
}
