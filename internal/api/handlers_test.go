// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samarth2709/pulseboard/internal/models"
	"github.com/Samarth2709/pulseboard/internal/whoop"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/v1/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "ok", health["database"])
}

func TestHealthDegradedWhenDatabaseUnreachable(t *testing.T) {
	env := newTestEnv(t)
	env.store.pingErr = errors.New("connection refused")

	rec := env.do(t, "GET", "/api/v1/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &health))
	assert.Equal(t, "degraded", health["status"])
}

func TestGetRecoveriesDefaultWindow(t *testing.T) {
	env := newTestEnv(t)
	env.store.recoveries = []models.Recovery{{CycleID: 1, Score: 85}}

	rec := env.do(t, "GET", "/api/v1/recovery")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []models.Recovery
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, float64(85), records[0].Score)

	span := env.store.lastRange.end.Sub(env.store.lastRange.start)
	assert.InDelta(t, 30*24, span.Hours(), 1)
	assert.Equal(t, 100, env.store.lastRange.limit)
}

func TestGetRecoveriesExplicitDates(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/v1/recovery?start_date=2026-08-01&end_date=2026-08-10")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), env.store.lastRange.start)
	// end_date is inclusive, so the window runs to the following midnight
	assert.Equal(t, time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC), env.store.lastRange.end)
}

func TestGetRecoveriesRejectsMalformedDate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/v1/recovery?start_date=August+1st")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeValidation, decodeEnvelope(t, rec).Error.Code)
}

func TestGetRecoveriesRejectsInvertedRange(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/v1/recovery?start_date=2026-08-10&end_date=2026-08-01")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLimitClampedToMaxPageSize(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/v1/sleep?limit=99999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 500, env.store.lastRange.limit)
}

func TestListDatabaseErrorIsFiveHundred(t *testing.T) {
	env := newTestEnv(t)
	env.store.queryErr = errors.New("io error")

	rec := env.do(t, "GET", "/api/v1/workouts")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, codeDatabase, decodeEnvelope(t, rec).Error.Code)
}

func TestLatestRecoveryNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/v1/recovery/latest")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, codeNotFound, decodeEnvelope(t, rec).Error.Code)
}

func TestLatestSleep(t *testing.T) {
	env := newTestEnv(t)
	env.store.latestSlp = &models.Sleep{SleepID: "s-1", InBedHours: 7.5}

	rec := env.do(t, "GET", "/api/v1/sleep/latest")
	require.Equal(t, http.StatusOK, rec.Code)

	var sleep models.Sleep
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &sleep))
	assert.Equal(t, "s-1", sleep.SleepID)
}

func TestProfileServedFromCache(t *testing.T) {
	env := newTestEnv(t)
	env.store.profile = &models.Profile{UserID: 7, Email: "s@example.com"}

	rec := env.do(t, "GET", "/api/v1/profile")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.syncer.calls)
}

func TestProfileRefreshHitsProvider(t *testing.T) {
	env := newTestEnv(t)
	env.syncer.profile = &models.Profile{UserID: 7}

	rec := env.do(t, "GET", "/api/v1/profile?refresh=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"profile"}, env.syncer.calls)
}

func TestProfileNotCachedYet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/v1/profile")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFitnessMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.store.metrics = &models.FitnessMetrics{PeriodDays: 30, AvgRecoveryScore: 72}

	rec := env.do(t, "GET", "/api/v1/fitness/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.FitnessMetrics
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &stats))
	assert.Equal(t, float64(72), stats.AvgRecoveryScore)
}

func TestFitnessMetricsRejectsBadDays(t *testing.T) {
	env := newTestEnv(t)

	for _, q := range []string{"days=0", "days=400", "days=abc"} {
		rec := env.do(t, "GET", "/api/v1/fitness/metrics?"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.syncer.dashboard = []models.DashboardDay{
		{Cycle: models.Cycle{CycleID: 1}, Recovery: models.Recovery{Score: 90}},
	}

	rec := env.do(t, "GET", "/api/v1/dashboard?days=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []models.DashboardDay
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Cycle.CycleID)
}

func TestDashboardEmptyIsArrayNotNull(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/v1/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(decodeEnvelope(t, rec).Data))
}

func TestDashboardRejectsWideWindow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/v1/dashboard?days=90")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardAuthErrorIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	env.syncer.err = &whoop.AuthError{Op: "refresh"}

	rec := env.do(t, "GET", "/api/v1/dashboard")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, codeAuthentication, decodeEnvelope(t, rec).Error.Code)
}

func TestSyncAutoDecides(t *testing.T) {
	env := newTestEnv(t)
	env.syncer.status = &models.SyncStatus{SyncType: "quick_refresh", Status: "completed"}

	rec := env.do(t, "POST", "/api/v1/sync")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"sync"}, env.syncer.calls)
}

func TestSyncIncremental(t *testing.T) {
	env := newTestEnv(t)
	env.syncer.status = &models.SyncStatus{SyncType: "incremental", Status: "completed", RecordsSynced: 12}

	rec := env.do(t, "POST", "/api/v1/sync/incremental")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"incremental"}, env.syncer.calls)

	var status models.SyncStatus
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &status))
	assert.Equal(t, 12, status.RecordsSynced)
}

func TestSyncFullPassesDays(t *testing.T) {
	env := newTestEnv(t)
	env.syncer.status = &models.SyncStatus{SyncType: "full", Status: "completed"}

	rec := env.do(t, "POST", "/api/v1/sync/full?days=180")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 180, env.syncer.fullDays)
}

func TestSyncFullRejectsDaysBeyondMax(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/v1/sync/full?days=500")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.syncer.calls)
}

func TestSyncAuthFailureIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	env.syncer.err = whoop.ErrNotConfigured

	rec := env.do(t, "POST", "/api/v1/sync/incremental")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSyncTransientFailureIsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	env.syncer.err = &whoop.TransientError{Status: 502}

	rec := env.do(t, "POST", "/api/v1/sync/incremental")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, codeSyncFailed, decodeEnvelope(t, rec).Error.Code)
}

func TestSyncStatusOverview(t *testing.T) {
	env := newTestEnv(t)
	env.store.overview = &models.SyncOverview{
		SyncStatus: models.SyncStatus{SyncType: "full", Status: "completed"},
		Counts:     map[string]int64{"recovery": 42},
	}

	rec := env.do(t, "GET", "/api/v1/sync/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var overview models.SyncOverview
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &overview))
	assert.Equal(t, int64(42), overview.Counts["recovery"])
}

func TestRefreshTodaySuccess(t *testing.T) {
	env := newTestEnv(t)
	env.syncer.status = &models.SyncStatus{SyncType: "quick_refresh", Status: "completed"}

	for _, method := range []string{"GET", "POST"} {
		rec := env.do(t, method, "/api/v1/refresh/today")
		require.Equal(t, http.StatusOK, rec.Code, method)
		assert.Equal(t, "success", decodeEnvelope(t, rec).Status)
	}
}

func TestRefreshTodayNeverFiveHundred(t *testing.T) {
	env := newTestEnv(t)
	env.syncer.err = &whoop.TransientError{Status: 503}

	rec := env.do(t, "POST", "/api/v1/refresh/today")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "skipped", decodeEnvelope(t, rec).Status)

	env.syncer.err = errors.New("disk full")
	rec = env.do(t, "POST", "/api/v1/refresh/today")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "error", decodeEnvelope(t, rec).Status)
}

func TestAuthTestReportsFailureWithoutErrorStatus(t *testing.T) {
	env := newTestEnv(t)
	env.auth.authErr = whoop.ErrNotConfigured

	rec := env.do(t, "GET", "/api/v1/auth/test")
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.Equal(t, false, result["authenticated"])
	assert.NotEmpty(t, result["reason"])
}

func TestAuthorizeURLGeneratesState(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/v1/auth/authorize-url")
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.Len(t, result["state"], 32)
	assert.Contains(t, result["authorize_url"], "state="+result["state"])
}

func TestExchangeCode(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/v1/auth/exchange-code", `{"code":"authcode-123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "authcode-123", env.auth.lastCode)
}

func TestExchangeCodeRequiresCode(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/v1/auth/exchange-code", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeValidation, decodeEnvelope(t, rec).Error.Code)
	assert.Empty(t, env.auth.lastCode)
}

func TestGetProjects(t *testing.T) {
	env := newTestEnv(t)
	env.store.projects = []models.Project{{Name: "samarth/pulseboard", PrimaryLanguage: "Go"}}

	rec := env.do(t, "GET", "/api/v1/projects")
	require.Equal(t, http.StatusOK, rec.Code)

	var projects []models.Project
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "Go", projects[0].PrimaryLanguage)
}

func TestProjectsRefreshAccepted(t *testing.T) {
	env := newTestEnv(t)
	env.projects.job = &models.RefreshJob{ID: uuid.New(), Status: models.JobStatusQueued}

	rec := env.do(t, "POST", "/api/v1/projects/refresh")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var job models.RefreshJob
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &job))
	assert.Equal(t, models.JobStatusQueued, job.Status)
}

func TestProjectsRefreshUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.projects.err = errors.New("github collector disabled")

	rec := env.do(t, "POST", "/api/v1/projects/refresh")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetRefreshJob(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.New()
	env.store.job = &models.RefreshJob{ID: id, Status: models.JobStatusCompleted, Total: 3, Processed: 3}

	rec := env.do(t, "GET", "/api/v1/projects/jobs/"+id.String())
	require.Equal(t, http.StatusOK, rec.Code)

	var job models.RefreshJob
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &job))
	assert.Equal(t, 3, job.Processed)
}

func TestGetRefreshJobBadID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/v1/projects/jobs/not-a-uuid")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRefreshJobNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/v1/projects/jobs/"+uuid.NewString())
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestETagNotModified(t *testing.T) {
	env := newTestEnv(t)
	env.store.overview = &models.SyncOverview{Counts: map[string]int64{"recovery": 1}}

	first := env.do(t, "GET", "/api/v1/sync/status")
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest("GET", "/api/v1/sync/status", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestMetricsEndpointExposed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
