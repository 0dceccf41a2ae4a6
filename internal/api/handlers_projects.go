// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Samarth2709/pulseboard/internal/models"
)

// handleGetProjects lists cached repository statistics.
func (h *Handler) handleGetProjects(w http.ResponseWriter, r *http.Request) {
	began := time.Now()
	projects, err := h.store.GetProjects(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "failed to query projects", err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	resp := success(projects)
	resp.Metadata.QueryTimeMS = time.Since(began).Milliseconds()
	respondJSON(w, r, http.StatusOK, resp)
}

// handleProjectsRefresh queues a background statistics refresh and answers
// 202 with the job handle for polling.
func (h *Handler) handleProjectsRefresh(w http.ResponseWriter, r *http.Request) {
	job, err := h.projects.StartRefresh(r.Context())
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, codeProvider, "failed to start refresh", err)
		return
	}
	respondJSON(w, r, http.StatusAccepted, success(job))
}

// handleGetRefreshJob reports the progress of one refresh job.
func (h *Handler) handleGetRefreshJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "job id must be a UUID", nil)
		return
	}
	job, err := h.store.GetRefreshJob(r.Context(), id)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "failed to query job", err)
		return
	}
	if job == nil {
		respondError(w, r, http.StatusNotFound, codeNotFound, "job not found", nil)
		return
	}
	respondJSON(w, r, http.StatusOK, success(job))
}
