// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

// Package models defines data structures used throughout Pulseboard:
// fitness entities mirrored from the wearable provider, project statistics
// mirrored from GitHub, and API response envelopes.
//
// Fitness entities are keyed by provider-assigned natural identifiers
// (cycle id, sleep id, workout id). Re-syncing a record updates the existing
// row in place; the store never holds two rows with the same identifier.
package models

import (
	"time"
)

// Recovery is one day's recovery assessment. The provider issues exactly one
// recovery per physiological cycle, so CycleID is the natural key and also
// the join key for the dashboard view.
type Recovery struct {
	CycleID          int64     `json:"cycle_id"`
	Date             time.Time `json:"date"`
	Score            float64   `json:"recovery_score"`
	RestingHeartRate float64   `json:"resting_heart_rate"`
	HRVMilli         float64   `json:"hrv_rmssd_milli"`
	SpO2Percentage   float64   `json:"spo2_percentage"`
	SkinTempCelsius  float64   `json:"skin_temp_celsius"`
	UserCalibrating  bool      `json:"user_calibrating"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Sleep is one sleep activity (nightly sleep or nap). SleepID is the natural
// key; CycleID links the sleep to its physiological cycle for the dashboard
// join. Duration fields are converted from the provider's milliseconds at
// reconcile time: in-bed to hours, stages to minutes.
type Sleep struct {
	SleepID              string    `json:"sleep_id"`
	CycleID              int64     `json:"cycle_id"`
	Date                 time.Time `json:"date"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	Nap                  bool      `json:"nap"`
	PerformancePct       float64   `json:"sleep_performance_percentage"`
	ConsistencyPct       float64   `json:"sleep_consistency_percentage"`
	EfficiencyPct        float64   `json:"sleep_efficiency_percentage"`
	InBedHours           float64   `json:"total_in_bed_hours"`
	AwakeMinutes         float64   `json:"total_awake_minutes"`
	LightSleepMinutes    float64   `json:"total_light_sleep_minutes"`
	SlowWaveSleepMinutes float64   `json:"total_slow_wave_sleep_minutes"`
	REMSleepMinutes      float64   `json:"total_rem_sleep_minutes"`
	SleepCycleCount      int       `json:"sleep_cycle_count"`
	DisturbanceCount     int       `json:"disturbance_count"`
	RespiratoryRate      float64   `json:"respiratory_rate"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Workout is one recorded workout activity, keyed by WorkoutID.
type Workout struct {
	WorkoutID         string    `json:"workout_id"`
	SportName         string    `json:"sport_name"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Strain            float64   `json:"strain"`
	AverageHeartRate  float64   `json:"average_heart_rate"`
	MaxHeartRate      float64   `json:"max_heart_rate"`
	Kilojoules        float64   `json:"kilojoule"`
	DistanceMeter     float64   `json:"distance_meter"`
	AltitudeGainMeter float64   `json:"altitude_gain_meter"`
	PercentRecorded   float64   `json:"percent_recorded"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Cycle is one physiological day (wake-to-wake), keyed by CycleID. An open
// cycle (today) has no end time yet.
type Cycle struct {
	CycleID          int64      `json:"cycle_id"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	TimezoneOffset   string     `json:"timezone_offset"`
	Strain           float64    `json:"strain"`
	Kilojoules       float64    `json:"kilojoule"`
	AverageHeartRate float64    `json:"average_heart_rate"`
	MaxHeartRate     float64    `json:"max_heart_rate"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Profile is the account profile plus latest body measurement, cached as a
// single row and refreshed on demand.
type Profile struct {
	UserID         int64     `json:"user_id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	HeightMeter    float64   `json:"height_meter"`
	WeightKilogram float64   `json:"weight_kilogram"`
	MaxHeartRate   float64   `json:"max_heart_rate"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// SyncStatus is the single most-recent-run summary. It is a snapshot, not a
// log: each sync run overwrites the previous row.
type SyncStatus struct {
	LastSyncAt    time.Time `json:"last_sync_at"`
	SyncType      string    `json:"sync_type"` // "full", "incremental" or "quick_refresh"
	RecordsSynced int       `json:"records_synced"`
	Status        string    `json:"status"` // "completed" or "failed"
	ErrorMessage  string    `json:"error_message,omitempty"`
}

// Sync type values recorded in SyncStatus.SyncType.
const (
	SyncTypeFull         = "full"
	SyncTypeIncremental  = "incremental"
	SyncTypeQuickRefresh = "quick_refresh"
)

// Sync outcome values recorded in SyncStatus.Status.
const (
	SyncOutcomeCompleted = "completed"
	SyncOutcomeFailed    = "failed"
)

// SyncOverview extends the SyncStatus snapshot with per-entity store counts
// and freshest record dates for the sync-status endpoint.
type SyncOverview struct {
	SyncStatus
	Counts      map[string]int64     `json:"counts"`
	LatestDates map[string]time.Time `json:"latest_dates"`
}

// DashboardDay is one row of the three-way dashboard join. Cycle is the
// driving entity; Recovery and Sleep are zero-valued when no matching record
// exists for the cycle yet.
type DashboardDay struct {
	Cycle    Cycle    `json:"cycle"`
	Recovery Recovery `json:"recovery"`
	Sleep    Sleep    `json:"sleep"`
}

// RecoveryBands buckets recovery scores the way the provider's app colors
// them: green >= 67, yellow 34-66, red < 34.
type RecoveryBands struct {
	Green  int `json:"green"`
	Yellow int `json:"yellow"`
	Red    int `json:"red"`
}

// FitnessMetrics aggregates stored fitness data over a trailing window.
type FitnessMetrics struct {
	PeriodDays          int           `json:"period_days"`
	AvgRecoveryScore    float64       `json:"avg_recovery_score"`
	AvgHRVMilli         float64       `json:"avg_hrv_rmssd_milli"`
	AvgRestingHeartRate float64       `json:"avg_resting_heart_rate"`
	AvgSleepPerformance float64       `json:"avg_sleep_performance"`
	AvgSleepHours       float64       `json:"avg_sleep_hours"`
	AvgStrain           float64       `json:"avg_strain"`
	WorkoutCount        int           `json:"workout_count"`
	RecoveryBands       RecoveryBands `json:"recovery_bands"`
}
