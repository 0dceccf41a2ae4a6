// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Samarth2709/pulseboard/internal/models"
)

// UpsertRecoveries reconciles a batch of recovery records in a single
// transaction. A record whose cycle_id already exists updates the stored row
// in place. Returns how many rows were newly inserted and how many updated;
// on error the transaction is rolled back and nothing is committed.
func (db *DB) UpsertRecoveries(ctx context.Context, records []models.Recovery) (inserted, updated int, err error) {
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

	upsert, err := tx.PrepareContext(ctx, `INSERT INTO recoveries (
			cycle_id, date, score, resting_heart_rate, hrv_rmssd_milli,
			spo2_percentage, skin_temp_celsius, user_calibrating, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (cycle_id) DO UPDATE SET
			date = EXCLUDED.date,
			score = EXCLUDED.score,
			resting_heart_rate = EXCLUDED.resting_heart_rate,
			hrv_rmssd_milli = EXCLUDED.hrv_rmssd_milli,
			spo2_percentage = EXCLUDED.spo2_percentage,
			skin_temp_celsius = EXCLUDED.skin_temp_celsius,
			user_calibrating = EXCLUDED.user_calibrating,
			updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare recovery upsert: %w", err)
	}
	defer closeWithLog(upsert, "recovery upsert statement")

	for _, r := range records {
		exists, existsErr := rowExists(ctx, tx, `SELECT 1 FROM recoveries WHERE cycle_id = ?`, r.CycleID)
		if existsErr != nil {
			err = existsErr
			return 0, 0, err
		}

		if _, err = upsert.ExecContext(ctx,
			r.CycleID, r.Date, r.Score, r.RestingHeartRate, r.HRVMilli,
			r.SpO2Percentage, r.SkinTempCelsius, r.UserCalibrating, r.UpdatedAt,
		); err != nil {
			err = fmt.Errorf("failed to upsert recovery %d: %w", r.CycleID, err)
			return 0, 0, err
		}

		if exists {
			updated++
		} else {
			inserted++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit recovery batch: %w", err)
	}
	return inserted, updated, nil
}

// GetRecoveries returns stored recoveries within [start, end], newest first.
func (db *DB) GetRecoveries(ctx context.Context, start, end time.Time, limit int) ([]models.Recovery, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT
			cycle_id, date, score, resting_heart_rate, hrv_rmssd_milli,
			spo2_percentage, skin_temp_celsius, user_calibrating, updated_at
		FROM recoveries
		WHERE date >= ? AND date <= ?
		ORDER BY date DESC
		LIMIT ?`, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recoveries: %w", err)
	}
	defer closeWithLog(rows, "recovery rows")

	var out []models.Recovery
	for rows.Next() {
		var r models.Recovery
		if err := rows.Scan(
			&r.CycleID, &r.Date, &r.Score, &r.RestingHeartRate, &r.HRVMilli,
			&r.SpO2Percentage, &r.SkinTempCelsius, &r.UserCalibrating, &r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recovery: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetLatestRecovery returns the freshest stored recovery, or nil when the
// store is empty.
func (db *DB) GetLatestRecovery(ctx context.Context) (*models.Recovery, error) {
	recoveries, err := db.GetRecoveries(ctx, time.Time{}, farFuture(), 1)
	if err != nil {
		return nil, err
	}
	if len(recoveries) == 0 {
		return nil, nil
	}
	return &recoveries[0], nil
}

// LatestRecoveryDate returns the recovery watermark: the date of the
// freshest stored recovery. ok is false when the store is empty.
func (db *DB) LatestRecoveryDate(ctx context.Context) (time.Time, bool, error) {
	return db.maxTimestamp(ctx, `SELECT max(date) FROM recoveries`)
}

// CountRecoveries returns the number of stored recovery rows.
func (db *DB) CountRecoveries(ctx context.Context) (int64, error) {
	return db.countRows(ctx, `SELECT count(*) FROM recoveries`)
}

// rowExists runs an existence probe inside the given transaction.
func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("existence probe failed: %w", err)
	}
	return true, nil
}

// maxTimestamp runs a max() watermark query. ok is false for an empty table.
func (db *DB) maxTimestamp(ctx context.Context, query string) (time.Time, bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var ts sql.NullTime
	if err := db.conn.QueryRowContext(ctx, query).Scan(&ts); err != nil {
		return time.Time{}, false, fmt.Errorf("watermark query failed: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return ts.Time, true, nil
}

// countRows runs a count(*) query.
func (db *DB) countRows(ctx context.Context, query string) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return n, nil
}

// farFuture is the open upper bound used by "no end filter" queries.
func farFuture() time.Time {
	return time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
}
