// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package whoop

import (
	"github.com/goccy/go-json"
)

// Version selects which provider API generation serves an endpoint.
// Cycle, profile and body measurement live on v1; recovery, sleep and
// workout moved to v2.
type Version int

const (
	V1 Version = 1
	V2 Version = 2
)

// Entity endpoints, relative to the versioned base URL.
const (
	EndpointCycle    = "/cycle"
	EndpointRecovery = "/recovery"
	EndpointSleep    = "/activity/sleep"
	EndpointWorkout  = "/activity/workout"
	EndpointProfile  = "/user/profile/basic"
	EndpointBody     = "/user/measurement/body"
)

// pageResponse is one page of a windowed collection request. NextToken is
// the opaque continuation cursor; its absence ends the window.
type pageResponse struct {
	Records   []json.RawMessage `json:"records"`
	NextToken *string           `json:"next_token"`
}

// tokenResponse is the token endpoint's reply. Both tokens are always
// present on success because the provider rotates the refresh token on
// every use.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

// RawCycle is a provider cycle record. Pointer fields tolerate records the
// provider delivers before scoring completes.
type RawCycle struct {
	ID             *int64  `json:"id"`
	Start          string  `json:"start"`
	End            *string `json:"end"`
	TimezoneOffset string  `json:"timezone_offset"`
	ScoreState     string  `json:"score_state"`
	Score          *struct {
		Strain           float64 `json:"strain"`
		Kilojoule        float64 `json:"kilojoule"`
		AverageHeartRate float64 `json:"average_heart_rate"`
		MaxHeartRate     float64 `json:"max_heart_rate"`
	} `json:"score"`
}

// RawRecovery is a provider recovery record, keyed by the cycle it scores.
type RawRecovery struct {
	CycleID    *int64 `json:"cycle_id"`
	SleepID    string `json:"sleep_id"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	ScoreState string `json:"score_state"`
	Score      *struct {
		UserCalibrating  bool    `json:"user_calibrating"`
		RecoveryScore    float64 `json:"recovery_score"`
		RestingHeartRate float64 `json:"resting_heart_rate"`
		HRVRmssdMilli    float64 `json:"hrv_rmssd_milli"`
		SpO2Percentage   float64 `json:"spo2_percentage"`
		SkinTempCelsius  float64 `json:"skin_temp_celsius"`
	} `json:"score"`
}

// RawSleep is a provider sleep record.
type RawSleep struct {
	ID             *string `json:"id"`
	CycleID        int64   `json:"cycle_id"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	TimezoneOffset string  `json:"timezone_offset"`
	Nap            bool    `json:"nap"`
	ScoreState     string  `json:"score_state"`
	Score          *struct {
		StageSummary *struct {
			TotalInBedTimeMilli         int64 `json:"total_in_bed_time_milli"`
			TotalAwakeTimeMilli         int64 `json:"total_awake_time_milli"`
			TotalLightSleepTimeMilli    int64 `json:"total_light_sleep_time_milli"`
			TotalSlowWaveSleepTimeMilli int64 `json:"total_slow_wave_sleep_time_milli"`
			TotalRemSleepTimeMilli      int64 `json:"total_rem_sleep_time_milli"`
			SleepCycleCount             int   `json:"sleep_cycle_count"`
			DisturbanceCount            int   `json:"disturbance_count"`
		} `json:"stage_summary"`
		RespiratoryRate            float64 `json:"respiratory_rate"`
		SleepPerformancePercentage float64 `json:"sleep_performance_percentage"`
		SleepConsistencyPercentage float64 `json:"sleep_consistency_percentage"`
		SleepEfficiencyPercentage  float64 `json:"sleep_efficiency_percentage"`
	} `json:"score"`
}

// RawWorkout is a provider workout record.
type RawWorkout struct {
	ID         *string `json:"id"`
	SportName  string  `json:"sport_name"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	ScoreState string  `json:"score_state"`
	Score      *struct {
		Strain            float64 `json:"strain"`
		AverageHeartRate  float64 `json:"average_heart_rate"`
		MaxHeartRate      float64 `json:"max_heart_rate"`
		Kilojoule         float64 `json:"kilojoule"`
		PercentRecorded   float64 `json:"percent_recorded"`
		DistanceMeter     float64 `json:"distance_meter"`
		AltitudeGainMeter float64 `json:"altitude_gain_meter"`
	} `json:"score"`
}

// RawProfile is the basic account profile.
type RawProfile struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RawBodyMeasurement is the latest body measurement.
type RawBodyMeasurement struct {
	HeightMeter    float64 `json:"height_meter"`
	WeightKilogram float64 `json:"weight_kilogram"`
	MaxHeartRate   float64 `json:"max_heart_rate"`
}
