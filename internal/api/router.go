// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Samarth2709/pulseboard/internal/config"
	"github.com/Samarth2709/pulseboard/internal/logging"
	"github.com/Samarth2709/pulseboard/internal/metrics"
)

// NewRouter builds the full route tree with the shared middleware stack.
func NewRouter(cfg *config.Config, h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.Timeout))
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.API.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.API.RateLimitReqs, cfg.API.RateLimitWindow))
		r.Use(instrument)

		r.Get("/health", h.handleHealth)

		r.Get("/recovery", h.handleGetRecoveries)
		r.Get("/recovery/latest", h.handleLatestRecovery)
		r.Get("/sleep", h.handleGetSleeps)
		r.Get("/sleep/latest", h.handleLatestSleep)
		r.Get("/workouts", h.handleGetWorkouts)
		r.Get("/cycles", h.handleGetCycles)
		r.Get("/profile", h.handleGetProfile)
		r.Get("/fitness/metrics", h.handleFitnessMetrics)
		r.Get("/dashboard", h.handleDashboard)

		r.Route("/sync", func(r chi.Router) {
			r.Post("/", h.handleSync)
			r.Post("/incremental", h.handleSyncIncremental)
			r.Post("/full", h.handleSyncFull)
			r.Get("/status", h.handleSyncStatus)
		})

		// GET kept for page-load fetch() calls that cannot easily POST.
		r.Get("/refresh/today", h.handleRefreshToday)
		r.Post("/refresh/today", h.handleRefreshToday)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/test", h.handleAuthTest)
			r.Get("/authorize-url", h.handleAuthorizeURL)
			r.Post("/exchange-code", h.handleExchangeCode)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.handleGetProjects)
			r.Post("/refresh", h.handleProjectsRefresh)
			r.Get("/jobs/{id}", h.handleGetRefreshJob)
		})
	})

	return r
}

// instrument records per-route request counts and latency. The chi route
// pattern is used as the endpoint label so path parameters do not explode
// the cardinality.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := chi.RouteContext(r.Context()).RoutePattern()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordAPIRequest(r.Method, endpoint, ww.Status(), time.Since(started))
	})
}

// requestLogger emits one structured line per request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logging.Debug().
			Str("method", r.Method).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(started)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
