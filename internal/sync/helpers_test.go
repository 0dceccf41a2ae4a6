// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/Samarth2709/pulseboard/internal/config"
	"github.com/Samarth2709/pulseboard/internal/models"
	"github.com/Samarth2709/pulseboard/internal/whoop"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	mu         stdsync.Mutex
	recoveries map[int64]models.Recovery
	sleeps     map[string]models.Sleep
	workouts   map[string]models.Workout
	cycles     map[int64]models.Cycle
	profile    *models.Profile

	status       *models.SyncStatus
	statusWrites int

	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		recoveries: make(map[int64]models.Recovery),
		sleeps:     make(map[string]models.Sleep),
		workouts:   make(map[string]models.Workout),
		cycles:     make(map[int64]models.Cycle),
	}
}

func (s *fakeStore) UpsertRecoveries(_ context.Context, records []models.Recovery) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return 0, 0, s.upsertErr
	}
	inserted, updated := 0, 0
	for _, r := range records {
		if _, ok := s.recoveries[r.CycleID]; ok {
			updated++
		} else {
			inserted++
		}
		s.recoveries[r.CycleID] = r
	}
	return inserted, updated, nil
}

func (s *fakeStore) UpsertSleeps(_ context.Context, records []models.Sleep) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return 0, 0, s.upsertErr
	}
	inserted, updated := 0, 0
	for _, r := range records {
		if _, ok := s.sleeps[r.SleepID]; ok {
			updated++
		} else {
			inserted++
		}
		s.sleeps[r.SleepID] = r
	}
	return inserted, updated, nil
}

func (s *fakeStore) UpsertWorkouts(_ context.Context, records []models.Workout) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return 0, 0, s.upsertErr
	}
	inserted, updated := 0, 0
	for _, r := range records {
		if _, ok := s.workouts[r.WorkoutID]; ok {
			updated++
		} else {
			inserted++
		}
		s.workouts[r.WorkoutID] = r
	}
	return inserted, updated, nil
}

func (s *fakeStore) UpsertCycles(_ context.Context, records []models.Cycle) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return 0, 0, s.upsertErr
	}
	inserted, updated := 0, 0
	for _, r := range records {
		if _, ok := s.cycles[r.CycleID]; ok {
			updated++
		} else {
			inserted++
		}
		s.cycles[r.CycleID] = r
	}
	return inserted, updated, nil
}

func (s *fakeStore) UpsertProfile(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.profile = p
	return nil
}

func (s *fakeStore) LatestRecoveryDate(context.Context) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest time.Time
	for _, r := range s.recoveries {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest, !latest.IsZero(), nil
}

func (s *fakeStore) LatestSleepDate(context.Context) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest time.Time
	for _, r := range s.sleeps {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest, !latest.IsZero(), nil
}

func (s *fakeStore) LatestWorkoutStart(context.Context) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest time.Time
	for _, r := range s.workouts {
		if r.StartTime.After(latest) {
			latest = r.StartTime
		}
	}
	return latest, !latest.IsZero(), nil
}

func (s *fakeStore) LatestCycleStart(context.Context) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest time.Time
	for _, r := range s.cycles {
		if r.StartTime.After(latest) {
			latest = r.StartTime
		}
	}
	return latest, !latest.IsZero(), nil
}

func (s *fakeStore) SetSyncStatus(_ context.Context, status *models.SyncStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.statusWrites++
	return nil
}

// fetchCall records one FetchRange invocation.
type fetchCall struct {
	endpoint  string
	version   whoop.Version
	start     time.Time
	end       time.Time
	direction whoop.Direction
}

// fakeProvider is a scripted Provider for engine tests.
type fakeProvider struct {
	mu    stdsync.Mutex
	calls []fetchCall

	authErr error
	// fetch overrides the default empty response per endpoint.
	fetch func(endpoint string, start, end time.Time, direction whoop.Direction) ([]json.RawMessage, error)

	profile *whoop.RawProfile
	body    *whoop.RawBodyMeasurement
	bodyErr error
}

func (p *fakeProvider) EnsureAuthenticated(context.Context) error {
	return p.authErr
}

func (p *fakeProvider) FetchRange(_ context.Context, endpoint string, version whoop.Version,
	start, end time.Time, direction whoop.Direction) ([]json.RawMessage, error) {
	p.mu.Lock()
	p.calls = append(p.calls, fetchCall{endpoint, version, start, end, direction})
	p.mu.Unlock()

	if p.fetch != nil {
		return p.fetch(endpoint, start, end, direction)
	}
	return nil, nil
}

func (p *fakeProvider) GetProfile(context.Context) (*whoop.RawProfile, error) {
	if p.profile == nil {
		return nil, whoop.ErrNotFound
	}
	return p.profile, nil
}

func (p *fakeProvider) GetBodyMeasurement(context.Context) (*whoop.RawBodyMeasurement, error) {
	if p.bodyErr != nil {
		return nil, p.bodyErr
	}
	return p.body, nil
}

func (p *fakeProvider) callsFor(endpoint string) []fetchCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []fetchCall
	for _, c := range p.calls {
		if c.endpoint == endpoint {
			out = append(out, c)
		}
	}
	return out
}

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		Interval:         6 * time.Hour,
		FullSyncDays:     90,
		MaxFullSyncDays:  365,
		QuickRefreshDays: 2,
	}
}

func newTestManager(store Store, provider Provider, now time.Time) *Manager {
	m := NewManager(testSyncConfig(), store, provider)
	m.now = func() time.Time { return now }
	return m
}

// Raw record builders in the provider's wire shape.

func rawCycle(id int64, start time.Time) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"id":%d,"start":%q,"timezone_offset":"-05:00","score_state":"SCORED","score":{"strain":9.5,"kilojoule":8000,"average_heart_rate":70,"max_heart_rate":150}}`,
		id, whoop.FormatTimestamp(start)))
}

func rawRecovery(cycleID int64, createdAt time.Time, score float64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"cycle_id":%d,"created_at":%q,"score_state":"SCORED","score":{"recovery_score":%g,"resting_heart_rate":52,"hrv_rmssd_milli":68.5,"spo2_percentage":97.1,"skin_temp_celsius":33.2}}`,
		cycleID, whoop.FormatTimestamp(createdAt), score))
}

func rawSleep(id string, cycleID int64, start time.Time, nap bool) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"id":%q,"cycle_id":%d,"start":%q,"end":%q,"nap":%t,"score_state":"SCORED","score":{"sleep_performance_percentage":88,"sleep_consistency_percentage":75,"sleep_efficiency_percentage":92,"respiratory_rate":15.2,"stage_summary":{"total_in_bed_time_milli":27000000,"total_awake_time_milli":1800000,"total_light_sleep_time_milli":12600000,"total_slow_wave_sleep_time_milli":5400000,"total_rem_sleep_time_milli":7200000,"sleep_cycle_count":5,"disturbance_count":8}}}`,
		id, cycleID, whoop.FormatTimestamp(start), whoop.FormatTimestamp(start.Add(8*time.Hour)), nap))
}

func rawWorkout(id string, start time.Time) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"id":%q,"sport_name":"running","start":%q,"end":%q,"score_state":"SCORED","score":{"strain":12.3,"average_heart_rate":145,"max_heart_rate":178,"kilojoule":2500,"percent_recorded":100,"distance_meter":8046,"altitude_gain_meter":120}}`,
		id, whoop.FormatTimestamp(start), whoop.FormatTimestamp(start.Add(45*time.Minute))))
}
