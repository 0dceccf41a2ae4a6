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

// SetSyncStatus overwrites the single sync-status snapshot row. The snapshot
// reflects only the most recent run; history is not kept.
func (db *DB) SetSyncStatus(ctx context.Context, status *models.SyncStatus) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `INSERT INTO sync_status (
			id, last_sync_at, sync_type, records_synced, status, error_message
		) VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			last_sync_at = EXCLUDED.last_sync_at,
			sync_type = EXCLUDED.sync_type,
			records_synced = EXCLUDED.records_synced,
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message`,
		status.LastSyncAt, status.SyncType, status.RecordsSynced,
		status.Status, status.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to write sync status: %w", err)
	}
	return nil
}

// GetSyncStatus returns the most recent sync snapshot, or nil when no sync
// has run yet.
func (db *DB) GetSyncStatus(ctx context.Context) (*models.SyncStatus, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var s models.SyncStatus
	err := db.conn.QueryRowContext(ctx, `SELECT
			last_sync_at, sync_type, records_synced, status, error_message
		FROM sync_status WHERE id = 1`).Scan(
		&s.LastSyncAt, &s.SyncType, &s.RecordsSynced, &s.Status, &s.ErrorMessage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync status: %w", err)
	}
	return &s, nil
}

// GetSyncOverview combines the snapshot with per-entity store counts and
// freshest record dates for the sync-status endpoint.
func (db *DB) GetSyncOverview(ctx context.Context) (*models.SyncOverview, error) {
	overview := &models.SyncOverview{
		Counts:      make(map[string]int64),
		LatestDates: make(map[string]time.Time),
	}

	if status, err := db.GetSyncStatus(ctx); err != nil {
		return nil, err
	} else if status != nil {
		overview.SyncStatus = *status
	}

	counts := []struct {
		name string
		fn   func(context.Context) (int64, error)
	}{
		{"recovery", db.CountRecoveries},
		{"sleep", db.CountSleeps},
		{"workout", db.CountWorkouts},
		{"cycle", db.CountCycles},
	}
	for _, c := range counts {
		n, err := c.fn(ctx)
		if err != nil {
			return nil, err
		}
		overview.Counts[c.name] = n
	}

	dates := []struct {
		name string
		fn   func(context.Context) (time.Time, bool, error)
	}{
		{"recovery", db.LatestRecoveryDate},
		{"sleep", db.LatestSleepDate},
		{"workout", db.LatestWorkoutStart},
		{"cycle", db.LatestCycleStart},
	}
	for _, d := range dates {
		ts, ok, err := d.fn(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			overview.LatestDates[d.name] = ts
		}
	}

	return overview, nil
}
