// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pulseboard/config.yaml",
	"/etc/pulseboard/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// sliceConfigPaths lists config keys whose env-var values arrive as
// comma-separated strings and must be split into slices.
var sliceConfigPaths = []string{
	"github.repos",
	"api.cors_origins",
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Whoop: WhoopConfig{
			Enabled:         true,
			ClientID:        "",
			ClientSecret:    "",
			RedirectURI:     "",
			CredentialsPath: "/data/whoop_credentials.json",
			APIBaseV1:       "https://api.prod.whoop.com/developer/v1",
			APIBaseV2:       "https://api.prod.whoop.com/developer/v2",
			TokenURL:        "https://api.prod.whoop.com/oauth/oauth2/token",
			AuthURL:         "https://api.prod.whoop.com/oauth/oauth2/auth",
			Timeout:         30 * time.Second,
		},
		GitHub: GitHubConfig{
			Enabled:  false,
			Token:    "",
			Username: "",
			Repos:    []string{},
			Timeout:  30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/pulseboard.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Sync: SyncConfig{
			Interval:         6 * time.Hour,
			FullSyncDays:     90,
			MaxFullSyncDays:  365,
			QuickRefreshDays: 2,
			RunOnStartup:     true,
		},
		Server: ServerConfig{
			Port:        8090,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		API: APIConfig{
			DefaultPageSize: 30,
			MaxPageSize:     500,
			RateLimitReqs:   100,
			RateLimitWindow: 1 * time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML config file (if it exists)
//  3. Environment variables: override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment variables have the highest priority. Names are mapped to
	// koanf paths explicitly; unmapped variables are ignored.
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, honoring CONFIG_PATH first.
// Returns the first path that exists, or empty string.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - WHOOP_CLIENT_ID -> whoop.client_id
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
//
// Unmapped variables return "" and are skipped, so unrelated process
// environment never leaks into the configuration.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Fitness provider
		"whoop_enabled":          "whoop.enabled",
		"whoop_client_id":        "whoop.client_id",
		"whoop_client_secret":    "whoop.client_secret",
		"whoop_redirect_uri":     "whoop.redirect_uri",
		"whoop_credentials_path": "whoop.credentials_path",
		"whoop_api_base_v1":      "whoop.api_base_v1",
		"whoop_api_base_v2":      "whoop.api_base_v2",
		"whoop_token_url":        "whoop.token_url",
		"whoop_auth_url":         "whoop.auth_url",
		"whoop_timeout":          "whoop.timeout",

		// GitHub collector
		"github_enabled":  "github.enabled",
		"github_token":    "github.token",
		"github_username": "github.username",
		"github_repos":    "github.repos",
		"github_timeout":  "github.timeout",

		// Database
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// Sync engine
		"sync_interval":           "sync.interval",
		"sync_full_days":          "sync.full_sync_days",
		"sync_max_full_days":      "sync.max_full_sync_days",
		"sync_quick_refresh_days": "sync.quick_refresh_days",
		"sync_run_on_startup":     "sync.run_on_startup",

		// HTTP server
		"http_port":      "server.port",
		"http_host":      "server.host",
		"http_timeout":   "server.timeout",
		"environment":    "server.environment",
		"api_page_size":  "api.default_page_size",
		"api_max_page":   "api.max_page_size",
		"rate_limit":     "api.rate_limit_reqs",
		"rate_window":    "api.rate_limit_window",
		"cors_origins":   "api.cors_origins",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return "" // skip unmapped variables
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars arrive as strings; YAML values are already
// slices and pass through untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}
