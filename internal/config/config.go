// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

// Package config loads and validates Pulseboard configuration.
//
// Configuration is loaded via Koanf v2 with layered sources
// (highest priority wins):
//  1. Environment variables (WHOOP_CLIENT_ID, DUCKDB_PATH, HTTP_PORT, ...)
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Built-in defaults
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import "time"

// Config is the root configuration for the Pulseboard server.
type Config struct {
	Whoop    WhoopConfig    `koanf:"whoop"`
	GitHub   GitHubConfig   `koanf:"github"`
	Database DatabaseConfig `koanf:"database"`
	Sync     SyncConfig     `koanf:"sync"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// WhoopConfig holds fitness-provider API settings.
//
// The client credential pair identifies this installation to the provider;
// the refresh token pair itself lives in the credential store file at
// CredentialsPath and is rotated on every refresh, so it is deliberately
// NOT part of this immutable config.
//
// Environment Variables:
//   - WHOOP_ENABLED: Enable fitness sync (default: true)
//   - WHOOP_CLIENT_ID / WHOOP_CLIENT_SECRET: OAuth client credentials
//   - WHOOP_REDIRECT_URI: Redirect URI registered with the provider
//   - WHOOP_CREDENTIALS_PATH: Path of the rotating token store (JSON file)
type WhoopConfig struct {
	Enabled         bool          `koanf:"enabled"`
	ClientID        string        `koanf:"client_id"`
	ClientSecret    string        `koanf:"client_secret"`
	RedirectURI     string        `koanf:"redirect_uri"`
	CredentialsPath string        `koanf:"credentials_path"`
	APIBaseV1       string        `koanf:"api_base_v1"` // cycle, profile, body measurement
	APIBaseV2       string        `koanf:"api_base_v2"` // recovery, sleep, workout
	TokenURL        string        `koanf:"token_url"`
	AuthURL         string        `koanf:"auth_url"`
	Timeout         time.Duration `koanf:"timeout"`
}

// GitHubConfig holds repository-statistics collector settings.
//
// Environment Variables:
//   - GITHUB_ENABLED: Enable the collector (default: false)
//   - GITHUB_TOKEN: Personal access token
//   - GITHUB_USERNAME: Account whose repositories are tracked
//   - GITHUB_REPOS: Comma-separated "owner/name" list; empty = all owned repos
type GitHubConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Token    string        `koanf:"token"`
	Username string        `koanf:"username"`
	Repos    []string      `koanf:"repos"`
	Timeout  time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use NumCPU
}

// SyncConfig holds fitness synchronization settings.
type SyncConfig struct {
	Interval         time.Duration `koanf:"interval"`           // periodic sync cadence
	FullSyncDays     int           `koanf:"full_sync_days"`     // default horizon for explicit full syncs
	MaxFullSyncDays  int           `koanf:"max_full_sync_days"` // hard cap callers may widen to
	QuickRefreshDays int           `koanf:"quick_refresh_days"` // lookback for the page-load refresh
	RunOnStartup     bool          `koanf:"run_on_startup"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development" or "production"
}

// APIConfig holds API pagination, rate limit and CORS settings.
type APIConfig struct {
	DefaultPageSize int           `koanf:"default_page_size"`
	MaxPageSize     int           `koanf:"max_page_size"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load loads configuration from defaults, optional YAML file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
