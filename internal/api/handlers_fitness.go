// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Samarth2709/pulseboard/internal/models"
)

const (
	defaultRangeDays   = 30
	defaultMetricsDays = 30
	defaultDashDays    = 7
	maxDashDays        = 31
	dateLayout         = "2006-01-02"
)

// rangeQuery is the common query surface of the fitness list endpoints.
// Either days or an explicit start_date/end_date pair selects the window.
type rangeQuery struct {
	Days      int    `validate:"gte=0,lte=365"`
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
	Limit     int    `validate:"gte=0"`
}

// parseRange resolves the query parameters into a concrete [start, end]
// window and a clamped row limit. Returns false after writing the error
// response when the parameters are rejected.
func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request) (start, end time.Time, limit int, ok bool) {
	q := rangeQuery{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	var err error
	if q.Days, err = queryInt(r, "days", defaultRangeDays); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}
	if q.Limit, err = queryInt(r, "limit", h.cfg.API.DefaultPageSize); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}
	if !validateRequest(w, r, &q) {
		return
	}

	end = time.Now().UTC()
	start = end.AddDate(0, 0, -q.Days)
	if q.StartDate != "" {
		start, _ = time.Parse(dateLayout, q.StartDate)
	}
	if q.EndDate != "" {
		parsed, _ := time.Parse(dateLayout, q.EndDate)
		end = parsed.AddDate(0, 0, 1) // end_date is inclusive
	}
	if !start.Before(end) {
		respondError(w, r, http.StatusBadRequest, codeValidation, "start_date must be before end_date", nil)
		return
	}

	limit = q.Limit
	if limit <= 0 {
		limit = h.cfg.API.DefaultPageSize
	}
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}
	return start, end, limit, true
}

// respondList writes a windowed query result or the database error.
func respondList(w http.ResponseWriter, r *http.Request, started time.Time, data interface{}, err error) {
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "failed to query records", err)
		return
	}
	resp := success(data)
	resp.Metadata.QueryTimeMS = time.Since(started).Milliseconds()
	respondJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) handleGetRecoveries(w http.ResponseWriter, r *http.Request) {
	start, end, limit, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	began := time.Now()
	records, err := h.store.GetRecoveries(r.Context(), start, end, limit)
	respondList(w, r, began, records, err)
}

func (h *Handler) handleGetSleeps(w http.ResponseWriter, r *http.Request) {
	start, end, limit, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	began := time.Now()
	records, err := h.store.GetSleeps(r.Context(), start, end, limit)
	respondList(w, r, began, records, err)
}

func (h *Handler) handleGetWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, limit, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	began := time.Now()
	records, err := h.store.GetWorkouts(r.Context(), start, end, limit)
	respondList(w, r, began, records, err)
}

func (h *Handler) handleGetCycles(w http.ResponseWriter, r *http.Request) {
	start, end, limit, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	began := time.Now()
	records, err := h.store.GetCycles(r.Context(), start, end, limit)
	respondList(w, r, began, records, err)
}

func (h *Handler) handleLatestRecovery(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.GetLatestRecovery(r.Context())
	h.respondLatest(w, r, record, err, record == nil)
}

func (h *Handler) handleLatestSleep(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.GetLatestSleep(r.Context())
	h.respondLatest(w, r, record, err, record == nil)
}

func (h *Handler) respondLatest(w http.ResponseWriter, r *http.Request, record interface{}, err error, missing bool) {
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "failed to query latest record", err)
		return
	}
	if missing {
		respondError(w, r, http.StatusNotFound, codeNotFound, "no records stored yet", nil)
		return
	}
	respondJSON(w, r, http.StatusOK, success(record))
}

// handleGetProfile serves the cached profile; ?refresh=true re-fetches it
// from the provider first.
func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		profile, err := h.syncer.SyncProfile(r.Context())
		if err != nil {
			h.respondProviderError(w, r, "failed to refresh profile", err)
			return
		}
		respondJSON(w, r, http.StatusOK, success(profile))
		return
	}

	profile, err := h.store.GetProfile(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "failed to query profile", err)
		return
	}
	if profile == nil {
		respondError(w, r, http.StatusNotFound, codeNotFound, "no profile cached yet, call with refresh=true", nil)
		return
	}
	respondJSON(w, r, http.StatusOK, success(profile))
}

func (h *Handler) handleFitnessMetrics(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultMetricsDays)
	if err != nil || days <= 0 || days > 365 {
		respondError(w, r, http.StatusBadRequest, codeValidation, "days must be between 1 and 365", nil)
		return
	}
	began := time.Now()
	stats, err := h.store.GetFitnessMetrics(r.Context(), days)
	respondList(w, r, began, stats, err)
}

// handleDashboard assembles the live dashboard straight from the provider.
// Nothing here touches the stores.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultDashDays)
	if err != nil || days <= 0 || days > maxDashDays {
		respondError(w, r, http.StatusBadRequest, codeValidation, "days must be between 1 and 31", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Server.Timeout)
	defer cancel()

	rows, err := h.syncer.BuildDashboard(ctx, days)
	if err != nil {
		h.respondProviderError(w, r, "failed to build dashboard", err)
		return
	}
	if rows == nil {
		rows = []models.DashboardDay{}
	}
	respondJSON(w, r, http.StatusOK, success(rows))
}
