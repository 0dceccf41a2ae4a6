// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Samarth2709/pulseboard/internal/config"
	"github.com/Samarth2709/pulseboard/internal/models"
)

// Store is the read side of the persistence layer the handlers serve from.
// *database.DB satisfies it.
type Store interface {
	GetRecoveries(ctx context.Context, start, end time.Time, limit int) ([]models.Recovery, error)
	GetLatestRecovery(ctx context.Context) (*models.Recovery, error)
	GetSleeps(ctx context.Context, start, end time.Time, limit int) ([]models.Sleep, error)
	GetLatestSleep(ctx context.Context) (*models.Sleep, error)
	GetWorkouts(ctx context.Context, start, end time.Time, limit int) ([]models.Workout, error)
	GetCycles(ctx context.Context, start, end time.Time, limit int) ([]models.Cycle, error)
	GetProfile(ctx context.Context) (*models.Profile, error)
	GetFitnessMetrics(ctx context.Context, days int) (*models.FitnessMetrics, error)
	GetSyncOverview(ctx context.Context) (*models.SyncOverview, error)
	GetProjects(ctx context.Context) ([]models.Project, error)
	GetRefreshJob(ctx context.Context, id uuid.UUID) (*models.RefreshJob, error)
	Ping(ctx context.Context) error
}

// Syncer triggers provider synchronization runs. *sync.Manager satisfies it.
type Syncer interface {
	Sync(ctx context.Context) (*models.SyncStatus, error)
	RunIncremental(ctx context.Context) (*models.SyncStatus, error)
	RunFull(ctx context.Context, days int) (*models.SyncStatus, error)
	QuickRefresh(ctx context.Context) (*models.SyncStatus, error)
	SyncProfile(ctx context.Context) (*models.Profile, error)
	BuildDashboard(ctx context.Context, days int) ([]models.DashboardDay, error)
}

// Authenticator covers the OAuth endpoints. *whoop.Client satisfies it.
type Authenticator interface {
	EnsureAuthenticated(ctx context.Context) error
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) error
}

// ProjectRefresher starts background project-statistics jobs.
// *github.Collector satisfies it.
type ProjectRefresher interface {
	StartRefresh(ctx context.Context) (*models.RefreshJob, error)
}

// Handler owns all HTTP endpoints.
type Handler struct {
	cfg       *config.Config
	store     Store
	syncer    Syncer
	auth      Authenticator
	projects  ProjectRefresher
	startedAt time.Time
}

// NewHandler wires the endpoint dependencies together.
func NewHandler(cfg *config.Config, store Store, syncer Syncer, auth Authenticator, projects ProjectRefresher) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     store,
		syncer:    syncer,
		auth:      auth,
		projects:  projects,
		startedAt: time.Now().UTC(),
	}
}

// handleHealth reports liveness plus a database ping.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"database":       "ok",
	}
	status := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		health["status"] = "degraded"
		health["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, r, status, &models.APIResponse{
		Status:   "success",
		Data:     health,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
