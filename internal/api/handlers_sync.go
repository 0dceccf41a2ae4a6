// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Samarth2709/pulseboard/internal/logging"
	"github.com/Samarth2709/pulseboard/internal/models"
	"github.com/Samarth2709/pulseboard/internal/whoop"
)

// respondProviderError maps provider failures onto HTTP statuses: credential
// problems are the caller's to fix, everything else is upstream weather.
func (h *Handler) respondProviderError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case whoop.IsAuthError(err) || errors.Is(err, whoop.ErrNotConfigured):
		respondError(w, r, http.StatusUnauthorized, codeAuthentication, message, err)
	case errors.Is(err, whoop.ErrNotFound):
		respondError(w, r, http.StatusNotFound, codeNotFound, message, err)
	default:
		respondError(w, r, http.StatusBadGateway, codeProvider, message, err)
	}
}

func (h *Handler) respondSyncResult(w http.ResponseWriter, r *http.Request, status *models.SyncStatus, err error) {
	if err != nil {
		if whoop.IsAuthError(err) || errors.Is(err, whoop.ErrNotConfigured) {
			respondError(w, r, http.StatusUnauthorized, codeAuthentication, "sync failed: provider authentication", err)
			return
		}
		respondError(w, r, http.StatusBadGateway, codeSyncFailed, "sync run failed", err)
		return
	}
	respondJSON(w, r, http.StatusOK, success(status))
}

// handleSync lets the decision engine pick the run type from the stored
// watermarks: full on empty stores, incremental when stale, quick otherwise.
func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	status, err := h.syncer.Sync(r.Context())
	h.respondSyncResult(w, r, status, err)
}

// handleSyncIncremental runs an incremental sync from the stored watermarks.
func (h *Handler) handleSyncIncremental(w http.ResponseWriter, r *http.Request) {
	status, err := h.syncer.RunIncremental(r.Context())
	h.respondSyncResult(w, r, status, err)
}

// handleSyncFull runs a full backfill. ?days widens or narrows the horizon
// up to the configured maximum.
func (h *Handler) handleSyncFull(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 0)
	if err != nil || days < 0 || days > h.cfg.Sync.MaxFullSyncDays {
		respondError(w, r, http.StatusBadRequest, codeValidation, "days out of range", nil)
		return
	}
	status, runErr := h.syncer.RunFull(r.Context(), days)
	h.respondSyncResult(w, r, status, runErr)
}

// handleSyncStatus reports the last run snapshot plus per-entity counts.
func (h *Handler) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	overview, err := h.store.GetSyncOverview(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "failed to read sync status", err)
		return
	}
	respondJSON(w, r, http.StatusOK, success(overview))
}

// handleRefreshToday is the page-load hook: a short forward refresh that must
// never surface a 5xx. When the provider is unreachable the cached data is
// still servable, so the outcome degrades to "skipped" in a 200 envelope.
func (h *Handler) handleRefreshToday(w http.ResponseWriter, r *http.Request) {
	status, err := h.syncer.QuickRefresh(r.Context())
	if err == nil {
		respondJSON(w, r, http.StatusOK, success(status))
		return
	}

	logging.Warn().Err(err).Msg("quick refresh degraded")
	outcome := "error"
	if whoop.IsAuthError(err) || whoop.IsTransient(err) || errors.Is(err, whoop.ErrNotConfigured) {
		outcome = "skipped"
	}
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status:   outcome,
		Data:     map[string]string{"reason": err.Error()},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
