// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Samarth2709/pulseboard/internal/models"
)

// GetFitnessMetrics aggregates stored fitness data over the trailing window
// of the given number of days. Recovery bands follow the provider's app
// coloring: green >= 67, yellow 34-66, red < 34.
func (db *DB) GetFitnessMetrics(ctx context.Context, days int) (*models.FitnessMetrics, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	since := time.Now().UTC().AddDate(0, 0, -days)
	m := &models.FitnessMetrics{PeriodDays: days}

	err := db.conn.QueryRowContext(ctx, `SELECT
			coalesce(avg(score), 0),
			coalesce(avg(hrv_rmssd_milli), 0),
			coalesce(avg(resting_heart_rate), 0),
			coalesce(sum(CASE WHEN score >= 67 THEN 1 ELSE 0 END), 0),
			coalesce(sum(CASE WHEN score >= 34 AND score < 67 THEN 1 ELSE 0 END), 0),
			coalesce(sum(CASE WHEN score < 34 THEN 1 ELSE 0 END), 0)
		FROM recoveries WHERE date >= ?`, since).Scan(
		&m.AvgRecoveryScore, &m.AvgHRVMilli, &m.AvgRestingHeartRate,
		&m.RecoveryBands.Green, &m.RecoveryBands.Yellow, &m.RecoveryBands.Red,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate recoveries: %w", err)
	}

	err = db.conn.QueryRowContext(ctx, `SELECT
			coalesce(avg(performance_pct), 0),
			coalesce(avg(in_bed_hours), 0)
		FROM sleeps WHERE date >= ? AND NOT nap`, since).Scan(
		&m.AvgSleepPerformance, &m.AvgSleepHours,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sleeps: %w", err)
	}

	err = db.conn.QueryRowContext(ctx, `SELECT
			coalesce(avg(strain), 0)
		FROM cycles WHERE start_time >= ?`, since).Scan(&m.AvgStrain)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate cycles: %w", err)
	}

	var workoutCount int64
	err = db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM workouts WHERE start_time >= ?`, since).Scan(&workoutCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count workouts: %w", err)
	}
	m.WorkoutCount = int(workoutCount)

	return m, nil
}
