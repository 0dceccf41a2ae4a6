// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package models

import (
	"time"

	"github.com/google/uuid"
)

// Project holds mirrored repository statistics for one tracked repository.
// Name is the natural key ("owner/name").
type Project struct {
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	CommitCount     int        `json:"commit_count"`
	ActiveDays      int        `json:"active_days"`
	PrimaryLanguage string     `json:"primary_language,omitempty"`
	LinesOfCode     int        `json:"loc"`
	SizeKB          int        `json:"repository_size_kb"`
	LastCommitDate  *time.Time `json:"last_commit_date,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Refresh job states.
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// RefreshJob tracks one background project-statistics refresh.
type RefreshJob struct {
	ID          uuid.UUID  `json:"id"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Processed   int        `json:"processed"`
	Failed      int        `json:"failed"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
