// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Samarth2709/pulseboard/internal/models"
)

// UpsertCycles reconciles a batch of cycle records in a single transaction,
// keyed by cycle_id. Returns inserted and updated row counts.
func (db *DB) UpsertCycles(ctx context.Context, records []models.Cycle) (inserted, updated int, err error) {
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

	upsert, err := tx.PrepareContext(ctx, `INSERT INTO cycles (
			cycle_id, start_time, end_time, timezone_offset, strain,
			kilojoule, average_heart_rate, max_heart_rate, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (cycle_id) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			timezone_offset = EXCLUDED.timezone_offset,
			strain = EXCLUDED.strain,
			kilojoule = EXCLUDED.kilojoule,
			average_heart_rate = EXCLUDED.average_heart_rate,
			max_heart_rate = EXCLUDED.max_heart_rate,
			updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare cycle upsert: %w", err)
	}
	defer closeWithLog(upsert, "cycle upsert statement")

	for _, c := range records {
		exists, existsErr := rowExists(ctx, tx, `SELECT 1 FROM cycles WHERE cycle_id = ?`, c.CycleID)
		if existsErr != nil {
			err = existsErr
			return 0, 0, err
		}

		var endTime interface{}
		if c.EndTime != nil {
			endTime = *c.EndTime
		}

		if _, err = upsert.ExecContext(ctx,
			c.CycleID, c.StartTime, endTime, c.TimezoneOffset, c.Strain,
			c.Kilojoules, c.AverageHeartRate, c.MaxHeartRate, c.UpdatedAt,
		); err != nil {
			err = fmt.Errorf("failed to upsert cycle %d: %w", c.CycleID, err)
			return 0, 0, err
		}

		if exists {
			updated++
		} else {
			inserted++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit cycle batch: %w", err)
	}
	return inserted, updated, nil
}

// GetCycles returns stored cycles within [start, end], newest first.
func (db *DB) GetCycles(ctx context.Context, start, end time.Time, limit int) ([]models.Cycle, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT
			cycle_id, start_time, end_time, timezone_offset, strain,
			kilojoule, average_heart_rate, max_heart_rate, updated_at
		FROM cycles
		WHERE start_time >= ? AND start_time <= ?
		ORDER BY start_time DESC
		LIMIT ?`, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer closeWithLog(rows, "cycle rows")

	var out []models.Cycle
	for rows.Next() {
		var c models.Cycle
		var endTime sql.NullTime
		if err := rows.Scan(
			&c.CycleID, &c.StartTime, &endTime, &c.TimezoneOffset, &c.Strain,
			&c.Kilojoules, &c.AverageHeartRate, &c.MaxHeartRate, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		if endTime.Valid {
			t := endTime.Time
			c.EndTime = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LatestCycleStart returns the cycle watermark: the start time of the
// freshest stored cycle. ok is false when the store is empty.
func (db *DB) LatestCycleStart(ctx context.Context) (time.Time, bool, error) {
	return db.maxTimestamp(ctx, `SELECT max(start_time) FROM cycles`)
}

// CountCycles returns the number of stored cycle rows.
func (db *DB) CountCycles(ctx context.Context) (int64, error) {
	return db.countRows(ctx, `SELECT count(*) FROM cycles`)
}
