// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Samarth2709/pulseboard/internal/config"
	"github.com/Samarth2709/pulseboard/internal/models"
)

// rangeCall records the window a list query was served with.
type rangeCall struct {
	start, end time.Time
	limit      int
}

type fakeStore struct {
	recoveries []models.Recovery
	sleeps     []models.Sleep
	workouts   []models.Workout
	cycles     []models.Cycle
	latestRec  *models.Recovery
	latestSlp  *models.Sleep
	profile    *models.Profile
	metrics    *models.FitnessMetrics
	overview   *models.SyncOverview
	projects   []models.Project
	job        *models.RefreshJob

	lastRange rangeCall
	queryErr  error
	pingErr   error
}

func (s *fakeStore) record(start, end time.Time, limit int) {
	s.lastRange = rangeCall{start: start, end: end, limit: limit}
}

func (s *fakeStore) GetRecoveries(_ context.Context, start, end time.Time, limit int) ([]models.Recovery, error) {
	s.record(start, end, limit)
	return s.recoveries, s.queryErr
}

func (s *fakeStore) GetSleeps(_ context.Context, start, end time.Time, limit int) ([]models.Sleep, error) {
	s.record(start, end, limit)
	return s.sleeps, s.queryErr
}

func (s *fakeStore) GetWorkouts(_ context.Context, start, end time.Time, limit int) ([]models.Workout, error) {
	s.record(start, end, limit)
	return s.workouts, s.queryErr
}

func (s *fakeStore) GetCycles(_ context.Context, start, end time.Time, limit int) ([]models.Cycle, error) {
	s.record(start, end, limit)
	return s.cycles, s.queryErr
}

func (s *fakeStore) GetLatestRecovery(context.Context) (*models.Recovery, error) {
	return s.latestRec, s.queryErr
}

func (s *fakeStore) GetLatestSleep(context.Context) (*models.Sleep, error) {
	return s.latestSlp, s.queryErr
}

func (s *fakeStore) GetProfile(context.Context) (*models.Profile, error) {
	return s.profile, s.queryErr
}

func (s *fakeStore) GetFitnessMetrics(_ context.Context, days int) (*models.FitnessMetrics, error) {
	return s.metrics, s.queryErr
}

func (s *fakeStore) GetSyncOverview(context.Context) (*models.SyncOverview, error) {
	return s.overview, s.queryErr
}

func (s *fakeStore) GetProjects(context.Context) ([]models.Project, error) {
	return s.projects, s.queryErr
}

func (s *fakeStore) GetRefreshJob(context.Context, uuid.UUID) (*models.RefreshJob, error) {
	return s.job, s.queryErr
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

type fakeSyncer struct {
	status    *models.SyncStatus
	profile   *models.Profile
	dashboard []models.DashboardDay
	err       error

	fullDays int
	calls    []string
}

func (f *fakeSyncer) Sync(context.Context) (*models.SyncStatus, error) {
	f.calls = append(f.calls, "sync")
	return f.status, f.err
}

func (f *fakeSyncer) RunIncremental(context.Context) (*models.SyncStatus, error) {
	f.calls = append(f.calls, "incremental")
	return f.status, f.err
}

func (f *fakeSyncer) RunFull(_ context.Context, days int) (*models.SyncStatus, error) {
	f.calls = append(f.calls, "full")
	f.fullDays = days
	return f.status, f.err
}

func (f *fakeSyncer) QuickRefresh(context.Context) (*models.SyncStatus, error) {
	f.calls = append(f.calls, "quick")
	return f.status, f.err
}

func (f *fakeSyncer) SyncProfile(context.Context) (*models.Profile, error) {
	f.calls = append(f.calls, "profile")
	return f.profile, f.err
}

func (f *fakeSyncer) BuildDashboard(_ context.Context, days int) ([]models.DashboardDay, error) {
	f.calls = append(f.calls, "dashboard")
	return f.dashboard, f.err
}

type fakeAuth struct {
	authErr     error
	exchangeErr error
	lastCode    string
}

func (f *fakeAuth) EnsureAuthenticated(context.Context) error { return f.authErr }

func (f *fakeAuth) AuthorizeURL(state string) string {
	return "https://provider.example/oauth/authorize?state=" + state
}

func (f *fakeAuth) ExchangeCode(_ context.Context, code string) error {
	f.lastCode = code
	return f.exchangeErr
}

type fakeRefresher struct {
	job *models.RefreshJob
	err error
}

func (f *fakeRefresher) StartRefresh(context.Context) (*models.RefreshJob, error) {
	return f.job, f.err
}

func testAPIConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Timeout: 10 * time.Second},
		API: config.APIConfig{
			DefaultPageSize: 100,
			MaxPageSize:     500,
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Sync: config.SyncConfig{
			FullSyncDays:     90,
			MaxFullSyncDays:  365,
			QuickRefreshDays: 2,
		},
	}
}

// testEnv bundles the handler fakes behind a ready-to-serve router.
type testEnv struct {
	store    *fakeStore
	syncer   *fakeSyncer
	auth     *fakeAuth
	projects *fakeRefresher
	router   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:    &fakeStore{},
		syncer:   &fakeSyncer{},
		auth:     &fakeAuth{},
		projects: &fakeRefresher{},
	}
	cfg := testAPIConfig()
	h := NewHandler(cfg, env.store, env.syncer, env.auth, env.projects)
	env.router = NewRouter(cfg, h)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if len(body) > 0 {
		req = httptest.NewRequest(method, path, strings.NewReader(body[0]))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors models.APIResponse with raw data for per-test decoding.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}
