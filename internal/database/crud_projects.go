// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Samarth2709/pulseboard/internal/models"
)

// UpsertProject stores repository statistics for one project, keyed by name.
func (db *DB) UpsertProject(ctx context.Context, p *models.Project) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var lastCommit interface{}
	if p.LastCommitDate != nil {
		lastCommit = *p.LastCommitDate
	}

	_, err := db.conn.ExecContext(ctx, `INSERT INTO projects (
			name, description, commit_count, active_days, primary_language,
			loc, repository_size_kb, last_commit_date, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			commit_count = EXCLUDED.commit_count,
			active_days = EXCLUDED.active_days,
			primary_language = EXCLUDED.primary_language,
			loc = EXCLUDED.loc,
			repository_size_kb = EXCLUDED.repository_size_kb,
			last_commit_date = EXCLUDED.last_commit_date,
			updated_at = EXCLUDED.updated_at`,
		p.Name, p.Description, p.CommitCount, p.ActiveDays, p.PrimaryLanguage,
		p.LinesOfCode, p.SizeKB, lastCommit, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert project %s: %w", p.Name, err)
	}
	return nil
}

// GetProjects returns all tracked projects ordered by last commit, newest
// first; projects with no commits yet sort last.
func (db *DB) GetProjects(ctx context.Context) ([]models.Project, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT
			name, description, commit_count, active_days, primary_language,
			loc, repository_size_kb, last_commit_date, updated_at
		FROM projects
		ORDER BY last_commit_date DESC NULLS LAST, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer closeWithLog(rows, "project rows")

	var out []models.Project
	for rows.Next() {
		var p models.Project
		var lastCommit sql.NullTime
		if err := rows.Scan(
			&p.Name, &p.Description, &p.CommitCount, &p.ActiveDays, &p.PrimaryLanguage,
			&p.LinesOfCode, &p.SizeKB, &lastCommit, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if lastCommit.Valid {
			t := lastCommit.Time
			p.LastCommitDate = &t
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
