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

// UpsertWorkouts reconciles a batch of workout records in a single
// transaction, keyed by workout_id. Returns inserted and updated row counts.
func (db *DB) UpsertWorkouts(ctx context.Context, records []models.Workout) (inserted, updated int, err error) {
	if len(records) == 0 {
		return 0, 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	upsert, err := tx.PrepareContext(ctx, `INSERT INTO workouts (
			workout_id, sport_name, start_time, end_time, strain,
			average_heart_rate, max_heart_rate, kilojoule,
			distance_meter, altitude_gain_meter, percent_recorded, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (workout_id) DO UPDATE SET
			sport_name = EXCLUDED.sport_name,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			strain = EXCLUDED.strain,
			average_heart_rate = EXCLUDED.average_heart_rate,
			max_heart_rate = EXCLUDED.max_heart_rate,
			kilojoule = EXCLUDED.kilojoule,
			distance_meter = EXCLUDED.distance_meter,
			altitude_gain_meter = EXCLUDED.altitude_gain_meter,
			percent_recorded = EXCLUDED.percent_recorded,
			updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare workout upsert: %w", err)
	}
	defer closeWithLog(upsert, "workout upsert statement")

	for _, w := range records {
		exists, existsErr := rowExists(ctx, tx, `SELECT 1 FROM workouts WHERE workout_id = ?`, w.WorkoutID)
		if existsErr != nil {
			err = existsErr
			return 0, 0, err
		}

		if _, err = upsert.ExecContext(ctx,
			w.WorkoutID, w.SportName, w.StartTime, w.EndTime, w.Strain,
			w.AverageHeartRate, w.MaxHeartRate, w.Kilojoules,
			w.DistanceMeter, w.AltitudeGainMeter, w.PercentRecorded, w.UpdatedAt,
		); err != nil {
			err = fmt.Errorf("failed to upsert workout %s: %w", w.WorkoutID, err)
			return 0, 0, err
		}

		if exists {
			updated++
		} else {
			inserted++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit workout batch: %w", err)
	}
	return inserted, updated, nil
}

// GetWorkouts returns stored workouts within [start, end], newest first.
func (db *DB) GetWorkouts(ctx context.Context, start, end time.Time, limit int) ([]models.Workout, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT
			workout_id, sport_name, start_time, end_time, strain,
			average_heart_rate, max_heart_rate, kilojoule,
			distance_meter, altitude_gain_meter, percent_recorded, updated_at
		FROM workouts
		WHERE start_time >= ? AND start_time <= ?
		ORDER BY start_time DESC
		LIMIT ?`, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query workouts: %w", err)
	}
	defer closeWithLog(rows, "workout rows")

	var out []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(
			&w.WorkoutID, &w.SportName, &w.StartTime, &w.EndTime, &w.Strain,
			&w.AverageHeartRate, &w.MaxHeartRate, &w.Kilojoules,
			&w.DistanceMeter, &w.AltitudeGainMeter, &w.PercentRecorded, &w.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// LatestWorkoutStart returns the workout watermark: the start time of the
// freshest stored workout. ok is false when the store is empty.
func (db *DB) LatestWorkoutStart(ctx context.Context) (time.Time, bool, error) {
	return db.maxTimestamp(ctx, `SELECT max(start_time) FROM workouts`)
}

// CountWorkouts returns the number of stored workout rows.
func (db *DB) CountWorkouts(ctx context.Context) (int64, error) {
	return db.countRows(ctx, `SELECT count(*) FROM workouts`)
}
