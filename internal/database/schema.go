// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package database

import (
	"context"
	"fmt"
	"time"
)

// createTables creates the schema if it does not exist. Natural keys are
// primary keys so that INSERT ... ON CONFLICT upserts enforce identifier
// uniqueness at the storage layer.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS recoveries (
			cycle_id BIGINT PRIMARY KEY,
			date TIMESTAMP NOT NULL,
			score DOUBLE NOT NULL DEFAULT 0,
			resting_heart_rate DOUBLE NOT NULL DEFAULT 0,
			hrv_rmssd_milli DOUBLE NOT NULL DEFAULT 0,
			spo2_percentage DOUBLE NOT NULL DEFAULT 0,
			skin_temp_celsius DOUBLE NOT NULL DEFAULT 0,
			user_calibrating BOOLEAN NOT NULL DEFAULT false,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sleeps (
			sleep_id VARCHAR PRIMARY KEY,
			cycle_id BIGINT NOT NULL DEFAULT 0,
			date TIMESTAMP NOT NULL,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			nap BOOLEAN NOT NULL DEFAULT false,
			performance_pct DOUBLE NOT NULL DEFAULT 0,
			consistency_pct DOUBLE NOT NULL DEFAULT 0,
			efficiency_pct DOUBLE NOT NULL DEFAULT 0,
			in_bed_hours DOUBLE NOT NULL DEFAULT 0,
			awake_minutes DOUBLE NOT NULL DEFAULT 0,
			light_sleep_minutes DOUBLE NOT NULL DEFAULT 0,
			slow_wave_sleep_minutes DOUBLE NOT NULL DEFAULT 0,
			rem_sleep_minutes DOUBLE NOT NULL DEFAULT 0,
			sleep_cycle_count INTEGER NOT NULL DEFAULT 0,
			disturbance_count INTEGER NOT NULL DEFAULT 0,
			respiratory_rate DOUBLE NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS workouts (
			workout_id VARCHAR PRIMARY KEY,
			sport_name VARCHAR NOT NULL DEFAULT '',
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			strain DOUBLE NOT NULL DEFAULT 0,
			average_heart_rate DOUBLE NOT NULL DEFAULT 0,
			max_heart_rate DOUBLE NOT NULL DEFAULT 0,
			kilojoule DOUBLE NOT NULL DEFAULT 0,
			distance_meter DOUBLE NOT NULL DEFAULT 0,
			altitude_gain_meter DOUBLE NOT NULL DEFAULT 0,
			percent_recorded DOUBLE NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cycles (
			cycle_id BIGINT PRIMARY KEY,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP,
			timezone_offset VARCHAR NOT NULL DEFAULT '',
			strain DOUBLE NOT NULL DEFAULT 0,
			kilojoule DOUBLE NOT NULL DEFAULT 0,
			average_heart_rate DOUBLE NOT NULL DEFAULT 0,
			max_heart_rate DOUBLE NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS profile (
			user_id BIGINT PRIMARY KEY,
			email VARCHAR NOT NULL DEFAULT '',
			first_name VARCHAR NOT NULL DEFAULT '',
			last_name VARCHAR NOT NULL DEFAULT '',
			height_meter DOUBLE NOT NULL DEFAULT 0,
			weight_kilogram DOUBLE NOT NULL DEFAULT 0,
			max_heart_rate DOUBLE NOT NULL DEFAULT 0,
			fetched_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sync_status (
			id INTEGER PRIMARY KEY,
			last_sync_at TIMESTAMP NOT NULL,
			sync_type VARCHAR NOT NULL,
			records_synced INTEGER NOT NULL DEFAULT 0,
			status VARCHAR NOT NULL,
			error_message VARCHAR NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			name VARCHAR PRIMARY KEY,
			description VARCHAR NOT NULL DEFAULT '',
			commit_count INTEGER NOT NULL DEFAULT 0,
			active_days INTEGER NOT NULL DEFAULT 0,
			primary_language VARCHAR NOT NULL DEFAULT '',
			loc INTEGER NOT NULL DEFAULT 0,
			repository_size_kb INTEGER NOT NULL DEFAULT 0,
			last_commit_date TIMESTAMP,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_jobs (
			id VARCHAR PRIMARY KEY,
			status VARCHAR NOT NULL,
			total INTEGER NOT NULL DEFAULT 0,
			processed INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			error_message VARCHAR NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			started_at TIMESTAMP,
			completed_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recoveries_date ON recoveries (date)`,
		`CREATE INDEX IF NOT EXISTS idx_sleeps_date ON sleeps (date)`,
		`CREATE INDEX IF NOT EXISTS idx_sleeps_cycle ON sleeps (cycle_id)`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_start ON workouts (start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_start ON cycles (start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_jobs_created ON refresh_jobs (created_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
