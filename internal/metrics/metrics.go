// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

// Package metrics provides Prometheus instrumentation for:
// - Sync run outcomes, record throughput and duration
// - Fitness-provider request results
// - API endpoint latency and throughput
// - Database query performance (DuckDB)
// - GitHub refresh jobs
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sync Metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_sync_runs_total",
			Help: "Total number of sync runs by kind and outcome",
		},
		[]string{"sync_type", "status"},
	)

	SyncRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_sync_records_total",
			Help: "Total number of records reconciled (new plus updated)",
		},
		[]string{"sync_type"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulseboard_sync_duration_seconds",
			Help:    "Duration of sync runs in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"sync_type"},
	)

	// Provider Metrics
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_provider_requests_total",
			Help: "Total number of fitness-provider requests by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_token_refreshes_total",
			Help: "Total number of OAuth token refresh attempts by result",
		},
		[]string{"result"},
	)

	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulseboard_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// GitHub Refresh Job Metrics
	ProjectRefreshJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_project_refresh_jobs_total",
			Help: "Total number of project refresh jobs by outcome",
		},
		[]string{"status"},
	)

	ProjectRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pulseboard_project_refresh_duration_seconds",
			Help:    "Duration of project refresh jobs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
)

// RecordSyncRun records one completed or failed sync run.
func RecordSyncRun(syncType, status string, records int, duration time.Duration) {
	SyncRunsTotal.WithLabelValues(syncType, status).Inc()
	SyncRecordsTotal.WithLabelValues(syncType).Add(float64(records))
	SyncDuration.WithLabelValues(syncType).Observe(duration.Seconds())
}

// RecordProviderRequest records the result of one provider data request.
func RecordProviderRequest(endpoint, result string) {
	ProviderRequestsTotal.WithLabelValues(endpoint, result).Inc()
}

// RecordTokenRefresh records one token refresh attempt.
func RecordTokenRefresh(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	TokenRefreshesTotal.WithLabelValues(result).Inc()
}

// RecordAPIRequest records latency and count for one API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
}

// RecordDBQuery records a database query's duration and error outcome.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordProjectRefreshJob records one finished project refresh job.
func RecordProjectRefreshJob(status string, duration time.Duration) {
	ProjectRefreshJobsTotal.WithLabelValues(status).Inc()
	ProjectRefreshDuration.Observe(duration.Seconds())
}
