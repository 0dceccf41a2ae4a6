// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package whoop

import (
	"errors"
	"fmt"
)

// ErrNotConfigured indicates missing client credentials (client id, client
// secret or refresh token). Not retryable; fixing it requires operator
// action (re-authorization or config change).
var ErrNotConfigured = errors.New("whoop client credentials not configured")

// ErrNotFound indicates a 404 from a data endpoint. Callers treat it as an
// empty result, matching the provider's behavior for windows with no data.
var ErrNotFound = errors.New("whoop resource not found")

// AuthError indicates a failed token refresh or a repeated authorization
// failure after the one-shot refresh retry. Fatal for the current operation:
// retrying with an already-rotated-away refresh token cannot succeed.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("whoop authentication failed during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("whoop authentication failed during %s", e.Op)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransientError indicates a timeout, connection failure or unexpected
// status on a data endpoint. It aborts the current fetch window; partial
// results from prior windows are preserved by the fetcher.
type TransientError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("whoop request to %s failed with status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("whoop request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsAuthError reports whether err is (or wraps) an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
