// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

// Package sync implements the fitness synchronization engine: the
// full/incremental/quick-refresh decision, the record reconciler that
// upserts provider records by natural key, the periodic sync manager, and
// the read-only dashboard join.
package sync

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/Samarth2709/pulseboard/internal/models"
	"github.com/Samarth2709/pulseboard/internal/whoop"
)

// Store is the persistence surface the engine needs. *database.DB satisfies
// it; tests substitute an in-memory fake.
//
// Upsert methods commit their whole batch in one transaction and report how
// many records were newly inserted versus updated in place.
type Store interface {
	UpsertRecoveries(ctx context.Context, records []models.Recovery) (inserted, updated int, err error)
	UpsertSleeps(ctx context.Context, records []models.Sleep) (inserted, updated int, err error)
	UpsertWorkouts(ctx context.Context, records []models.Workout) (inserted, updated int, err error)
	UpsertCycles(ctx context.Context, records []models.Cycle) (inserted, updated int, err error)
	UpsertProfile(ctx context.Context, p *models.Profile) error

	// Latest* derive the per-entity sync watermark from the freshest
	// stored record. ok is false when the store is empty.
	LatestRecoveryDate(ctx context.Context) (time.Time, bool, error)
	LatestSleepDate(ctx context.Context) (time.Time, bool, error)
	LatestWorkoutStart(ctx context.Context) (time.Time, bool, error)
	LatestCycleStart(ctx context.Context) (time.Time, bool, error)

	SetSyncStatus(ctx context.Context, status *models.SyncStatus) error
}

// Provider is the fitness-provider surface the engine needs. *whoop.Client
// satisfies it.
type Provider interface {
	EnsureAuthenticated(ctx context.Context) error
	FetchRange(ctx context.Context, endpoint string, version whoop.Version,
		start, end time.Time, direction whoop.Direction) ([]json.RawMessage, error)
	GetProfile(ctx context.Context) (*whoop.RawProfile, error)
	GetBodyMeasurement(ctx context.Context) (*whoop.RawBodyMeasurement, error)
}
