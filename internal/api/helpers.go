// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

// Package api exposes the HTTP surface: fitness reads, dashboard assembly,
// sync triggers, OAuth helpers and project statistics, all wrapped in the
// models.APIResponse envelope.
package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Samarth2709/pulseboard/internal/logging"
	"github.com/Samarth2709/pulseboard/internal/models"
	"github.com/Samarth2709/pulseboard/internal/validation"
)

// Error codes returned in APIError.Code.
const (
	codeValidation     = "VALIDATION_ERROR"
	codeDatabase       = "DATABASE_ERROR"
	codeAuthentication = "AUTHENTICATION_ERROR"
	codeNotFound       = "NOT_FOUND"
	codeProvider       = "PROVIDER_ERROR"
	codeSyncFailed     = "SYNC_FAILED"
	codeInternal       = "INTERNAL_ERROR"
)

// success wraps data in the standard envelope with a fresh timestamp.
func success(data interface{}) *models.APIResponse {
	return &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}
}

// respondJSON writes the envelope with an FNV-1a ETag so clients polling the
// dashboard can short-circuit unchanged payloads. The ETag covers only the
// data payload: the metadata timestamp changes on every response and would
// otherwise defeat If-None-Match.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, resp *models.APIResponse) {
	body, err := json.Marshal(resp)
	if err != nil {
		logging.Err(err).Msg("failed to marshal response")
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodGet && status == http.StatusOK && resp.Data != nil {
		if data, err := json.Marshal(resp.Data); err == nil {
			etag := generateETag(data)
			w.Header().Set("ETag", etag)
			w.Header().Set("Cache-Control", "public, max-age=60")
			w.Header().Set("Vary", "Accept-Encoding")
			if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Err(err).Msg("failed to write response")
	}
}

// respondError logs the failure and writes an error envelope. The message is
// what the client sees; err is only logged.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	evt := logging.Warn().
		Str("code", sanitizeLogValue(code)).
		Str("path", sanitizeLogValue(r.URL.Path)).
		Int("status", status)
	if err != nil {
		evt = evt.Err(err)
	}
	evt.Msg(sanitizeLogValue(message))

	resp := &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	}
	respondJSON(w, r, status, resp)
}

// validateRequest runs struct validation and, on failure, writes a 400 with
// per-field details. Returns false when the request was rejected.
func validateRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	verr := validation.ValidateStruct(req)
	if verr == nil {
		return true
	}
	resp := &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    codeValidation,
			Message: verr.Error(),
			Details: verr.Details(),
		},
	}
	respondJSON(w, r, http.StatusBadRequest, resp)
	return false
}

// generateETag hashes the response body with FNV-1a. Not cryptographic, just
// cheap change detection.
func generateETag(body []byte) string {
	h := fnv.New64a()
	h.Write(body)
	return fmt.Sprintf(`"%x"`, h.Sum64())
}

// sanitizeLogValue strips CR/LF so attacker-controlled strings cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// queryInt reads an integer query parameter, returning def when absent and
// an error when present but malformed.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %q must be an integer", name)
	}
	return v, nil
}
