// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateWhoop(); err != nil {
		return err
	}

	if err := c.validateGitHub(); err != nil {
		return err
	}

	if err := c.validateSync(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateWhoop validates fitness-provider configuration (only if enabled).
// The refresh token itself is not validated here: it lives in the rotating
// credential store and its absence is reported at sync time, not startup.
func (c *Config) validateWhoop() error {
	if !c.Whoop.Enabled {
		return nil
	}

	if c.Whoop.ClientID == "" {
		return fmt.Errorf("WHOOP_CLIENT_ID is required when WHOOP_ENABLED=true")
	}
	if c.Whoop.ClientSecret == "" {
		return fmt.Errorf("WHOOP_CLIENT_SECRET is required when WHOOP_ENABLED=true")
	}
	if c.Whoop.CredentialsPath == "" {
		return fmt.Errorf("WHOOP_CREDENTIALS_PATH must not be empty")
	}

	for name, raw := range map[string]string{
		"WHOOP_API_BASE_V1": c.Whoop.APIBaseV1,
		"WHOOP_API_BASE_V2": c.Whoop.APIBaseV2,
		"WHOOP_TOKEN_URL":   c.Whoop.TokenURL,
		"WHOOP_AUTH_URL":    c.Whoop.AuthURL,
	} {
		if err := validateHTTPURL(raw, name); err != nil {
			return err
		}
	}

	if c.Whoop.Timeout <= 0 {
		return fmt.Errorf("WHOOP_TIMEOUT must be positive")
	}
	return nil
}

// validateGitHub validates collector configuration (only if enabled).
func (c *Config) validateGitHub() error {
	if !c.GitHub.Enabled {
		return nil
	}

	if c.GitHub.Token == "" {
		return fmt.Errorf("GITHUB_TOKEN is required when GITHUB_ENABLED=true")
	}
	if c.GitHub.Username == "" && len(c.GitHub.Repos) == 0 {
		return fmt.Errorf("GITHUB_USERNAME or GITHUB_REPOS is required when GITHUB_ENABLED=true")
	}
	for _, repo := range c.GitHub.Repos {
		if strings.Count(repo, "/") != 1 {
			return fmt.Errorf("GITHUB_REPOS entry %q must be in owner/name form", repo)
		}
	}
	return nil
}

// validateSync validates sync horizon settings.
func (c *Config) validateSync() error {
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("SYNC_INTERVAL must be positive")
	}
	if c.Sync.FullSyncDays < 1 {
		return fmt.Errorf("SYNC_FULL_DAYS must be at least 1")
	}
	if c.Sync.MaxFullSyncDays < c.Sync.FullSyncDays {
		return fmt.Errorf("SYNC_MAX_FULL_DAYS (%d) must be >= SYNC_FULL_DAYS (%d)",
			c.Sync.MaxFullSyncDays, c.Sync.FullSyncDays)
	}
	if c.Sync.QuickRefreshDays < 1 {
		return fmt.Errorf("SYNC_QUICK_REFRESH_DAYS must be at least 1")
	}
	return nil
}

// validateServer validates HTTP server settings.
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

// validateLogging validates log level and format values.
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL checks that a value parses as an absolute http(s) URL.
func validateHTTPURL(raw, name string) error {
	if raw == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host", name)
	}
	return nil
}
