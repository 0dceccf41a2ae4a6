// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package sync

import (
	"context"
	"fmt"
	"time"
)

// Kind is the sync strategy picked for one run.
type Kind int

const (
	// KindFull backfills history backward from now. Chosen when every
	// entity store is empty.
	KindFull Kind = iota

	// KindIncremental fetches forward from each entity's watermark.
	// Chosen when stored data exists but the freshest record is older
	// than yesterday.
	KindIncremental

	// KindQuickRefresh re-fetches only the last two days to pick up
	// late-arriving revisions. Chosen when stored data is current.
	KindQuickRefresh
)

func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindIncremental:
		return "incremental"
	case KindQuickRefresh:
		return "quick_refresh"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Watermark is one entity's freshest stored record time. Valid is false
// when the entity store is empty.
type Watermark struct {
	Time  time.Time
	Valid bool
}

// Watermarks holds the per-entity watermarks the decision runs on.
type Watermarks struct {
	Recovery Watermark
	Sleep    Watermark
	Workout  Watermark
	Cycle    Watermark
}

// Freshest returns the newest valid watermark across all entities.
func (w Watermarks) Freshest() Watermark {
	freshest := Watermark{}
	for _, mark := range []Watermark{w.Recovery, w.Sleep, w.Workout, w.Cycle} {
		if mark.Valid && (!freshest.Valid || mark.Time.After(freshest.Time)) {
			freshest = mark
		}
	}
	return freshest
}

// AllEmpty reports whether no entity has any stored record.
func (w Watermarks) AllEmpty() bool {
	return !w.Recovery.Valid && !w.Sleep.Valid && !w.Workout.Valid && !w.Cycle.Valid
}

// Decide picks the sync kind for one run. Pure: the answer depends only on
// the watermarks and the clock.
//
// The provider's data generally lags one day, so stored data whose freshest
// record falls on yesterday's date (or later) counts as current.
func Decide(w Watermarks, now time.Time) Kind {
	if w.AllEmpty() {
		return KindFull
	}

	yesterday := truncateToDay(now.UTC().AddDate(0, 0, -1))
	if w.Freshest().Time.UTC().Before(yesterday) {
		return KindIncremental
	}
	return KindQuickRefresh
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// loadWatermarks queries the store for all four entity watermarks.
func loadWatermarks(ctx context.Context, store Store) (Watermarks, error) {
	var w Watermarks
	var err error

	if w.Recovery.Time, w.Recovery.Valid, err = store.LatestRecoveryDate(ctx); err != nil {
		return w, fmt.Errorf("failed to load recovery watermark: %w", err)
	}
	if w.Sleep.Time, w.Sleep.Valid, err = store.LatestSleepDate(ctx); err != nil {
		return w, fmt.Errorf("failed to load sleep watermark: %w", err)
	}
	if w.Workout.Time, w.Workout.Valid, err = store.LatestWorkoutStart(ctx); err != nil {
		return w, fmt.Errorf("failed to load workout watermark: %w", err)
	}
	if w.Cycle.Time, w.Cycle.Valid, err = store.LatestCycleStart(ctx); err != nil {
		return w, fmt.Errorf("failed to load cycle watermark: %w", err)
	}
	return w, nil
}
