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

	"github.com/Samarth2709/pulseboard/internal/models"
)

// UpsertProfile stores the account profile, replacing any previous row for
// the same user.
func (db *DB) UpsertProfile(ctx context.Context, p *models.Profile) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `INSERT INTO profile (
			user_id, email, first_name, last_name,
			height_meter, weight_kilogram, max_heart_rate, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			height_meter = EXCLUDED.height_meter,
			weight_kilogram = EXCLUDED.weight_kilogram,
			max_heart_rate = EXCLUDED.max_heart_rate,
			fetched_at = EXCLUDED.fetched_at`,
		p.UserID, p.Email, p.FirstName, p.LastName,
		p.HeightMeter, p.WeightKilogram, p.MaxHeartRate, p.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// GetProfile returns the cached profile, or nil when none has been fetched.
func (db *DB) GetProfile(ctx context.Context) (*models.Profile, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var p models.Profile
	err := db.conn.QueryRowContext(ctx, `SELECT
			user_id, email, first_name, last_name,
			height_meter, weight_kilogram, max_heart_rate, fetched_at
		FROM profile
		ORDER BY fetched_at DESC
		LIMIT 1`).Scan(
		&p.UserID, &p.Email, &p.FirstName, &p.LastName,
		&p.HeightMeter, &p.WeightKilogram, &p.MaxHeartRate, &p.FetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return &p, nil
}
