// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	at := func(daysAgo int) Watermark {
		return Watermark{Time: now.AddDate(0, 0, -daysAgo), Valid: true}
	}

	tests := []struct {
		name string
		w    Watermarks
		want Kind
	}{
		{
			name: "all stores empty",
			w:    Watermarks{},
			want: KindFull,
		},
		{
			name: "freshest older than yesterday",
			w:    Watermarks{Recovery: at(5)},
			want: KindIncremental,
		},
		{
			name: "freshest is yesterday",
			w:    Watermarks{Recovery: at(1)},
			want: KindQuickRefresh,
		},
		{
			name: "freshest is today",
			w:    Watermarks{Cycle: at(0)},
			want: KindQuickRefresh,
		},
		{
			name: "one stale entity does not outweigh a fresh one",
			w:    Watermarks{Recovery: at(30), Sleep: at(0)},
			want: KindQuickRefresh,
		},
		{
			name: "single non-empty stale store",
			w:    Watermarks{Workout: at(10)},
			want: KindIncremental,
		},
		{
			name: "freshest exactly two days ago",
			w:    Watermarks{Sleep: at(2)},
			want: KindIncremental,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.w, now))
		})
	}
}

func TestWatermarksFreshest(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	w := Watermarks{
		Recovery: Watermark{Time: now.AddDate(0, 0, -3), Valid: true},
		Sleep:    Watermark{Time: now.AddDate(0, 0, -1), Valid: true},
		Workout:  Watermark{},
		Cycle:    Watermark{Time: now.AddDate(0, 0, -7), Valid: true},
	}

	freshest := w.Freshest()
	assert.True(t, freshest.Valid)
	assert.Equal(t, now.AddDate(0, 0, -1), freshest.Time)

	assert.False(t, Watermarks{}.Freshest().Valid)
	assert.True(t, Watermarks{}.AllEmpty())
	assert.False(t, w.AllEmpty())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "full", KindFull.String())
	assert.Equal(t, "incremental", KindIncremental.String())
	assert.Equal(t, "quick_refresh", KindQuickRefresh.String())
}
