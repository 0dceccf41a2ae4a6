// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package api

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	json "github.com/goccy/go-json"
)

// handleAuthTest verifies the stored credential pair against the provider,
// refreshing it when only a refresh token survives. Always answers 200 so
// the result reads as a report, not a failure.
func (h *Handler) handleAuthTest(w http.ResponseWriter, r *http.Request) {
	result := map[string]interface{}{"authenticated": true}
	if err := h.auth.EnsureAuthenticated(r.Context()); err != nil {
		result["authenticated"] = false
		result["reason"] = err.Error()
	}
	respondJSON(w, r, http.StatusOK, success(result))
}

// handleAuthorizeURL hands the browser the provider consent URL. A random
// state is generated when the caller does not supply one.
func (h *Handler) handleAuthorizeURL(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			respondError(w, r, http.StatusInternalServerError, codeInternal, "failed to generate state", err)
			return
		}
		state = hex.EncodeToString(buf)
	}
	respondJSON(w, r, http.StatusOK, success(map[string]string{
		"authorize_url": h.auth.AuthorizeURL(state),
		"state":         state,
	}))
}

type exchangeCodeRequest struct {
	Code string `json:"code" validate:"required,min=8"`
}

// handleExchangeCode trades the consent code for a token pair and persists
// it, completing the one-time authorization flow.
func (h *Handler) handleExchangeCode(w http.ResponseWriter, r *http.Request) {
	var req exchangeCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, codeValidation, "request body must be JSON with a code field", err)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}
	if err := h.auth.ExchangeCode(r.Context(), req.Code); err != nil {
		h.respondProviderError(w, r, "code exchange failed", err)
		return
	}
	respondJSON(w, r, http.StatusOK, success(map[string]string{"result": "tokens stored"}))
}
