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

	"github.com/google/uuid"

	"github.com/Samarth2709/pulseboard/internal/models"
)

// InsertRefreshJob records a newly queued project refresh job.
func (db *DB) InsertRefreshJob(ctx context.Context, job *models.RefreshJob) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `INSERT INTO refresh_jobs (
			id, status, total, processed, failed, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID.String(), job.Status, job.Total, job.Processed, job.Failed,
		job.Error, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert refresh job: %w", err)
	}
	return nil
}

// UpdateRefreshJob persists job progress and terminal state.
func (db *DB) UpdateRefreshJob(ctx context.Context, job *models.RefreshJob) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var startedAt, completedAt interface{}
	if job.StartedAt != nil {
		startedAt = *job.StartedAt
	}
	if job.CompletedAt != nil {
		completedAt = *job.CompletedAt
	}

	_, err := db.conn.ExecContext(ctx, `UPDATE refresh_jobs SET
			status = ?, total = ?, processed = ?, failed = ?,
			error_message = ?, started_at = ?, completed_at = ?
		WHERE id = ?`,
		job.Status, job.Total, job.Processed, job.Failed,
		job.Error, startedAt, completedAt, job.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update refresh job %s: %w", job.ID, err)
	}
	return nil
}

// GetRefreshJob returns one job by id, or nil when unknown.
func (db *DB) GetRefreshJob(ctx context.Context, id uuid.UUID) (*models.RefreshJob, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		job         models.RefreshJob
		rawID       string
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)
	err := db.conn.QueryRowContext(ctx, `SELECT
			id, status, total, processed, failed, error_message,
			created_at, started_at, completed_at
		FROM refresh_jobs WHERE id = ?`, id.String()).Scan(
		&rawID, &job.Status, &job.Total, &job.Processed, &job.Failed,
		&job.Error, &job.CreatedAt, &startedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh job %s: %w", id, err)
	}

	job.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored job id %q is not a UUID: %w", rawID, err)
	}
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return &job, nil
}
