// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/Samarth2709/pulseboard/internal/logging"
	"github.com/Samarth2709/pulseboard/internal/models"
	"github.com/Samarth2709/pulseboard/internal/whoop"
)

// BuildDashboard fetches the last days of cycle, recovery and sleep records
// live from the provider and joins them into one row per cycle. This is a
// read-only projection: nothing is persisted.
//
// The join is a left outer join driven by cycles in provider order. A cycle
// with no recovery or sleep yet still appears, with those sections
// zero-valued.
func (m *Manager) BuildDashboard(ctx context.Context, days int) ([]models.DashboardDay, error) {
	if err := m.provider.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}

	end := m.now().UTC()
	start := end.AddDate(0, 0, -days)

	cycles, err := m.fetchCycles(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cycles: %w", err)
	}
	recoveries, err := m.fetchRecoveries(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recoveries: %w", err)
	}
	sleeps, err := m.fetchSleeps(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sleeps: %w", err)
	}

	recoveryByCycle := make(map[int64]models.Recovery, len(recoveries))
	for _, r := range recoveries {
		recoveryByCycle[r.CycleID] = r
	}
	sleepByCycle := make(map[int64]models.Sleep, len(sleeps))
	for _, s := range sleeps {
		// The nightly sleep wins over a same-cycle nap.
		if existing, ok := sleepByCycle[s.CycleID]; ok && !existing.Nap {
			continue
		}
		sleepByCycle[s.CycleID] = s
	}

	rows := make([]models.DashboardDay, 0, len(cycles))
	for _, c := range cycles {
		row := models.DashboardDay{Cycle: c}
		if r, ok := recoveryByCycle[c.CycleID]; ok {
			row.Recovery = r
		}
		if s, ok := sleepByCycle[c.CycleID]; ok {
			row.Sleep = s
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *Manager) fetchCycles(ctx context.Context, start, end time.Time) ([]models.Cycle, error) {
	raws, err := m.provider.FetchRange(ctx, whoop.EndpointCycle, whoop.V1, start, end, whoop.Forward)
	if err != nil {
		return nil, err
	}

	records := make([]models.Cycle, 0, len(raws))
	for _, raw := range raws {
		rec, err := parseCycle(raw)
		if err != nil {
			logging.Warn().Err(err).Msg("Skipping malformed cycle record")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (m *Manager) fetchRecoveries(ctx context.Context, start, end time.Time) ([]models.Recovery, error) {
	raws, err := m.provider.FetchRange(ctx, whoop.EndpointRecovery, whoop.V2, start, end, whoop.Forward)
	if err != nil {
		return nil, err
	}

	records := make([]models.Recovery, 0, len(raws))
	for _, raw := range raws {
		rec, err := parseRecovery(raw)
		if err != nil {
			logging.Warn().Err(err).Msg("Skipping malformed recovery record")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (m *Manager) fetchSleeps(ctx context.Context, start, end time.Time) ([]models.Sleep, error) {
	raws, err := m.provider.FetchRange(ctx, whoop.EndpointSleep, whoop.V2, start, end, whoop.Forward)
	if err != nil {
		return nil, err
	}

	records := make([]models.Sleep, 0, len(raws))
	for _, raw := range raws {
		rec, err := parseSleep(raw)
		if err != nil {
			logging.Warn().Err(err).Msg("Skipping malformed sleep record")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
