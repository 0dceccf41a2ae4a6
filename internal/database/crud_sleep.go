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

// UpsertSleeps reconciles a batch of sleep records in a single transaction,
// keyed by sleep_id. Returns inserted and updated row counts.
func (db *DB) UpsertSleeps(ctx context.Context, records []models.Sleep) (inserted, updated int, err error) {
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

	upsert, err := tx.PrepareContext(ctx, `INSERT INTO sleeps (
			sleep_id, cycle_id, date, start_time, end_time, nap,
			performance_pct, consistency_pct, efficiency_pct,
			in_bed_hours, awake_minutes, light_sleep_minutes,
			slow_wave_sleep_minutes, rem_sleep_minutes,
			sleep_cycle_count, disturbance_count, respiratory_rate, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (sleep_id) DO UPDATE SET
			cycle_id = EXCLUDED.cycle_id,
			date = EXCLUDED.date,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			nap = EXCLUDED.nap,
			performance_pct = EXCLUDED.performance_pct,
			consistency_pct = EXCLUDED.consistency_pct,
			efficiency_pct = EXCLUDED.efficiency_pct,
			in_bed_hours = EXCLUDED.in_bed_hours,
			awake_minutes = EXCLUDED.awake_minutes,
			light_sleep_minutes = EXCLUDED.light_sleep_minutes,
			slow_wave_sleep_minutes = EXCLUDED.slow_wave_sleep_minutes,
			rem_sleep_minutes = EXCLUDED.rem_sleep_minutes,
			sleep_cycle_count = EXCLUDED.sleep_cycle_count,
			disturbance_count = EXCLUDED.disturbance_count,
			respiratory_rate = EXCLUDED.respiratory_rate,
			updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare sleep upsert: %w", err)
	}
	defer closeWithLog(upsert, "sleep upsert statement")

	for _, s := range records {
		exists, existsErr := rowExists(ctx, tx, `SELECT 1 FROM sleeps WHERE sleep_id = ?`, s.SleepID)
		if existsErr != nil {
			err = existsErr
			return 0, 0, err
		}

		if _, err = upsert.ExecContext(ctx,
			s.SleepID, s.CycleID, s.Date, s.StartTime, s.EndTime, s.Nap,
			s.PerformancePct, s.ConsistencyPct, s.EfficiencyPct,
			s.InBedHours, s.AwakeMinutes, s.LightSleepMinutes,
			s.SlowWaveSleepMinutes, s.REMSleepMinutes,
			s.SleepCycleCount, s.DisturbanceCount, s.RespiratoryRate, s.UpdatedAt,
		); err != nil {
			err = fmt.Errorf("failed to upsert sleep %s: %w", s.SleepID, err)
			return 0, 0, err
		}

		if exists {
			updated++
		} else {
			inserted++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit sleep batch: %w", err)
	}
	return inserted, updated, nil
}

// GetSleeps returns stored sleeps within [start, end], newest first.
func (db *DB) GetSleeps(ctx context.Context, start, end time.Time, limit int) ([]models.Sleep, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT
			sleep_id, cycle_id, date, start_time, end_time, nap,
			performance_pct, consistency_pct, efficiency_pct,
			in_bed_hours, awake_minutes, light_sleep_minutes,
			slow_wave_sleep_minutes, rem_sleep_minutes,
			sleep_cycle_count, disturbance_count, respiratory_rate, updated_at
		FROM sleeps
		WHERE date >= ? AND date <= ?
		ORDER BY date DESC
		LIMIT ?`, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sleeps: %w", err)
	}
	defer closeWithLog(rows, "sleep rows")

	var out []models.Sleep
	for rows.Next() {
		var s models.Sleep
		if err := rows.Scan(
			&s.SleepID, &s.CycleID, &s.Date, &s.StartTime, &s.EndTime, &s.Nap,
			&s.PerformancePct, &s.ConsistencyPct, &s.EfficiencyPct,
			&s.InBedHours, &s.AwakeMinutes, &s.LightSleepMinutes,
			&s.SlowWaveSleepMinutes, &s.REMSleepMinutes,
			&s.SleepCycleCount, &s.DisturbanceCount, &s.RespiratoryRate, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sleep: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetLatestSleep returns the freshest stored sleep, or nil when empty.
func (db *DB) GetLatestSleep(ctx context.Context) (*models.Sleep, error) {
	sleeps, err := db.GetSleeps(ctx, time.Time{}, farFuture(), 1)
	if err != nil {
		return nil, err
	}
	if len(sleeps) == 0 {
		return nil, nil
	}
	return &sleeps[0], nil
}

// LatestSleepDate returns the sleep watermark. ok is false when empty.
func (db *DB) LatestSleepDate(ctx context.Context) (time.Time, bool, error) {
	return db.maxTimestamp(ctx, `SELECT max(date) FROM sleeps`)
}

// CountSleeps returns the number of stored sleep rows.
func (db *DB) CountSleeps(ctx context.Context) (int64, error) {
	return db.countRows(ctx, `SELECT count(*) FROM sleeps`)
}
