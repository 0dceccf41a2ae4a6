// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/Samarth2709/pulseboard/internal/config"
	"github.com/Samarth2709/pulseboard/internal/logging"
	"github.com/Samarth2709/pulseboard/internal/metrics"
	"github.com/Samarth2709/pulseboard/internal/models"
	"github.com/Samarth2709/pulseboard/internal/whoop"
)

// incrementalFallbackDays is the lookback for an entity with no watermark
// while other entities have one.
const incrementalFallbackDays = 30

// entityJob describes how one entity type is fetched and reconciled.
type entityJob struct {
	name      string
	endpoint  string
	version   whoop.Version
	watermark func(Watermarks) Watermark
	reconcile func(context.Context, Store, []json.RawMessage) (int, int, error)
}

// Entity order is fixed: cycles first because they are the dashboard's
// driving entity, then their dependents.
var entityJobs = []entityJob{
	{
		name:      "cycle",
		endpoint:  whoop.EndpointCycle,
		version:   whoop.V1,
		watermark: func(w Watermarks) Watermark { return w.Cycle },
		reconcile: reconcileCycles,
	},
	{
		name:      "recovery",
		endpoint:  whoop.EndpointRecovery,
		version:   whoop.V2,
		watermark: func(w Watermarks) Watermark { return w.Recovery },
		reconcile: reconcileRecoveries,
	},
	{
		name:      "sleep",
		endpoint:  whoop.EndpointSleep,
		version:   whoop.V2,
		watermark: func(w Watermarks) Watermark { return w.Sleep },
		reconcile: reconcileSleeps,
	},
	{
		name:      "workout",
		endpoint:  whoop.EndpointWorkout,
		version:   whoop.V2,
		watermark: func(w Watermarks) Watermark { return w.Workout },
		reconcile: reconcileWorkouts,
	},
}

// Manager owns the sync lifecycle: the periodic background loop and the
// on-demand runs triggered through the API. Runs never overlap; runMu
// serializes them so the credential pair has a single writer per process.
type Manager struct {
	cfg      config.SyncConfig
	store    Store
	provider Provider

	runMu  stdsync.Mutex
	stopCh chan struct{}
	wg     stdsync.WaitGroup

	// now is replaceable in tests.
	now func() time.Time
}

// NewManager creates a sync manager. Start must be called to launch the
// periodic loop; on-demand methods work without it.
func NewManager(cfg config.SyncConfig, store Store, provider Provider) *Manager {
	return &Manager{
		cfg:      cfg,
		store:    store,
		provider: provider,
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// Start launches the periodic sync loop.
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.loop()
	logging.Info().Dur("interval", m.cfg.Interval).Bool("run_on_startup", m.cfg.RunOnStartup).
		Msg("Sync manager started")
}

// Stop terminates the periodic loop and waits for an in-flight run to
// finish.
func (m *Manager) Stop() {
	close(m.stopCh)
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")
}

func (m *Manager) loop() {
	defer m.wg.Done()

	if m.cfg.RunOnStartup {
		m.runScheduled()
	}

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.runScheduled()
		case <-m.stopCh:
			return
		}
	}
}

// runScheduled is one periodic invocation. A full historical sync can take
// minutes of sequential windowed requests, so the bound is generous.
func (m *Manager) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	status, err := m.Sync(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Scheduled sync failed")
		return
	}
	logging.Info().Str("sync_type", status.SyncType).Int("records", status.RecordsSynced).
		Msg("Scheduled sync completed")
}

// Sync decides the sync kind from the stored watermarks and runs it.
func (m *Manager) Sync(ctx context.Context) (*models.SyncStatus, error) {
	w, err := loadWatermarks(ctx, m.store)
	if err != nil {
		return nil, err
	}

	switch Decide(w, m.now()) {
	case KindFull:
		return m.RunFull(ctx, 0)
	case KindIncremental:
		return m.RunIncremental(ctx)
	default:
		return m.QuickRefresh(ctx)
	}
}

// RunFull backfills history backward from now. days <= 0 uses the
// configured default horizon; anything beyond the configured maximum is
// clamped. The backward walk usually ends earlier, when consecutive empty
// windows show the account history is exhausted.
func (m *Manager) RunFull(ctx context.Context, days int) (*models.SyncStatus, error) {
	if days <= 0 {
		days = m.cfg.FullSyncDays
	}
	if days > m.cfg.MaxFullSyncDays {
		days = m.cfg.MaxFullSyncDays
	}

	end := m.now().UTC()
	start := end.AddDate(0, 0, -days)

	logging.Info().Int("days", days).Msg("Starting full historical sync")
	return m.run(ctx, models.SyncTypeFull, func(entityJob, Watermarks) fetchPlan {
		return fetchPlan{start: start, end: end, direction: whoop.Backward}
	})
}

// RunIncremental fetches forward from each entity's watermark to now. An
// entity without a watermark falls back to a 30-day lookback.
func (m *Manager) RunIncremental(ctx context.Context) (*models.SyncStatus, error) {
	end := m.now().UTC()

	logging.Info().Msg("Starting incremental sync")
	return m.run(ctx, models.SyncTypeIncremental, func(job entityJob, w Watermarks) fetchPlan {
		start := end.AddDate(0, 0, -incrementalFallbackDays)
		if mark := job.watermark(w); mark.Valid {
			start = mark.Time.UTC()
		}
		return fetchPlan{start: start, end: end, direction: whoop.Forward}
	})
}

// QuickRefresh re-fetches the last couple of days to catch late revisions
// to already-synced records.
func (m *Manager) QuickRefresh(ctx context.Context) (*models.SyncStatus, error) {
	end := m.now().UTC()
	start := end.AddDate(0, 0, -m.cfg.QuickRefreshDays)

	logging.Debug().Msg("Starting quick refresh")
	return m.run(ctx, models.SyncTypeQuickRefresh, func(entityJob, Watermarks) fetchPlan {
		return fetchPlan{start: start, end: end, direction: whoop.Forward}
	})
}

// fetchPlan is the resolved range and direction for one entity fetch.
type fetchPlan struct {
	start     time.Time
	end       time.Time
	direction whoop.Direction
}

// run executes one sync of all four entities and terminates by writing
// exactly one SyncStatus snapshot.
//
// Error policy per entity: a transient fetch failure reconciles whatever
// was fetched and lets the remaining entities proceed; authentication,
// configuration and persistence failures stop the run.
func (m *Manager) run(ctx context.Context, syncType string,
	plan func(entityJob, Watermarks) fetchPlan) (*models.SyncStatus, error) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	started := m.now()

	if err := m.provider.EnsureAuthenticated(ctx); err != nil {
		return m.finish(ctx, syncType, started, 0, fmt.Errorf("authentication failed: %w", err))
	}

	w, err := loadWatermarks(ctx, m.store)
	if err != nil {
		return m.finish(ctx, syncType, started, 0, err)
	}

	total := 0
	var runErr error

	for _, job := range entityJobs {
		p := plan(job, w)

		raws, fetchErr := m.provider.FetchRange(ctx, job.endpoint, job.version,
			p.start, p.end, p.direction)

		// Partial results from an aborted fetch are still reconciled.
		inserted, updated, recErr := job.reconcile(ctx, m.store, raws)
		total += inserted + updated

		logging.Debug().Str("entity", job.name).Int("fetched", len(raws)).
			Int("new", inserted).Int("updated", updated).Msg("Entity reconciled")

		if recErr != nil {
			runErr = fmt.Errorf("%s: %w", job.name, recErr)
			break
		}
		if fetchErr != nil {
			if whoop.IsAuthError(fetchErr) || errors.Is(fetchErr, whoop.ErrNotConfigured) {
				runErr = fmt.Errorf("%s: %w", job.name, fetchErr)
				break
			}
			// Transient: this entity is short, the rest still run.
			logging.Warn().Err(fetchErr).Str("entity", job.name).
				Msg("Fetch aborted, partial results reconciled")
		}
	}

	return m.finish(ctx, syncType, started, total, runErr)
}

// finish writes the run's SyncStatus snapshot and records metrics.
func (m *Manager) finish(ctx context.Context, syncType string, started time.Time,
	total int, runErr error) (*models.SyncStatus, error) {
	status := &models.SyncStatus{
		LastSyncAt:    m.now().UTC(),
		SyncType:      syncType,
		RecordsSynced: total,
		Status:        models.SyncOutcomeCompleted,
	}
	if runErr != nil {
		status.Status = models.SyncOutcomeFailed
		status.ErrorMessage = runErr.Error()
	}

	if err := m.store.SetSyncStatus(ctx, status); err != nil {
		logging.Error().Err(err).Msg("Failed to record sync status")
		if runErr == nil {
			runErr = err
			status.Status = models.SyncOutcomeFailed
			status.ErrorMessage = err.Error()
		}
	}

	metrics.RecordSyncRun(syncType, status.Status, total, m.now().Sub(started))
	return status, runErr
}

// SyncProfile fetches the account profile and latest body measurement and
// caches them as a single row. A missing body measurement is not an error.
func (m *Manager) SyncProfile(ctx context.Context) (*models.Profile, error) {
	if err := m.provider.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}

	raw, err := m.provider.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	profile := &models.Profile{
		UserID:    raw.UserID,
		Email:     raw.Email,
		FirstName: raw.FirstName,
		LastName:  raw.LastName,
		FetchedAt: m.now().UTC(),
	}

	body, err := m.provider.GetBodyMeasurement(ctx)
	switch {
	case err == nil:
		profile.HeightMeter = body.HeightMeter
		profile.WeightKilogram = body.WeightKilogram
		profile.MaxHeartRate = body.MaxHeartRate
	case errors.Is(err, whoop.ErrNotFound):
		logging.Debug().Msg("No body measurement available")
	default:
		return nil, fmt.Errorf("failed to fetch body measurement: %w", err)
	}

	if err := m.store.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to persist profile: %w", err)
	}
	return profile, nil
}
