// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

// Package whoop implements the fitness-provider HTTP client: the rotating
// OAuth token pair, bearer-authenticated data requests with a one-shot
// re-authentication retry, and the time-windowed paginated fetcher used by
// the sync engine.
//
// Requests are sequential. The provider's rate limits are
// undocumented, and pagination-token state is only unambiguous when one
// request is in flight at a time.
package whoop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/Samarth2709/pulseboard/internal/config"
	"github.com/Samarth2709/pulseboard/internal/logging"
	"github.com/Samarth2709/pulseboard/internal/metrics"
)

// timestampLayout is the provider's strict ISO-8601 format: millisecond
// precision with a literal Z suffix. All query parameters use UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics (64KB).
const maxErrorBodySize = 64 * 1024

// oauthScopes is requested on every authorization and refresh. "offline"
// asks for a refresh token; the rest cover the synced entities.
const oauthScopes = "offline read:recovery read:sleep read:workout read:cycles read:profile read:body_measurement"

// Client talks to the fitness provider. It owns the Credential: at most one
// refresh is in flight per process, and no other component mutates the pair.
type Client struct {
	cfg        *config.WhoopConfig
	httpClient *http.Client
	store      CredentialStore

	credMu sync.Mutex
	cred   Credential

	breaker *gobreaker.CircuitBreaker[[]byte]
	limiter *rate.Limiter
}

// NewClient creates a provider client, loading the persisted token pair
// from the store.
func NewClient(cfg *config.WhoopConfig, store CredentialStore) (*Client, error) {
	cred, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		store:      store,
		cred:       cred,
		// ~4 requests/second keeps full historical syncs polite without
		// stretching them unreasonably.
		limiter: rate.NewLimiter(rate.Limit(4), 1),
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "whoop-api",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Auth failures and 404s say nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || IsAuthError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return c, nil
}

// FormatTimestamp renders t in the provider's strict timestamp format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses a provider timestamp. The provider emits RFC 3339
// with millisecond precision.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid provider timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// EnsureAuthenticated verifies that a usable access token is present or can
// be obtained. Returns ErrNotConfigured when required credential fields are
// missing, an AuthError when the refresh fails.
func (c *Client) EnsureAuthenticated(ctx context.Context) error {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return ErrNotConfigured
	}

	c.credMu.Lock()
	hasAccess := c.cred.AccessToken != ""
	hasRefresh := c.cred.RefreshToken != ""
	c.credMu.Unlock()

	if hasAccess {
		return nil
	}
	if !hasRefresh {
		return ErrNotConfigured
	}
	return c.Refresh(ctx)
}

// Refresh exchanges the current refresh token for a new access+refresh pair.
// On success the new pair is persisted durably before it is used; on failure
// the prior credential state is left untouched.
//
// Refresh failures are fatal for the current operation and are never retried
// automatically: the provider rotates refresh tokens on every use, so
// re-trying with the same token cannot succeed.
func (c *Client) Refresh(ctx context.Context) error {
	c.credMu.Lock()
	defer c.credMu.Unlock()

	if c.cred.RefreshToken == "" {
		return ErrNotConfigured
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.cred.RefreshToken},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"scope":         {oauthScopes},
	}

	pair, err := c.requestToken(ctx, form)
	metrics.RecordTokenRefresh(err == nil)
	if err != nil {
		return &AuthError{Op: "token refresh", Err: err}
	}

	return c.adoptCredentialLocked(ctx, pair)
}

// ExchangeCode redeems an authorization code for the initial token pair and
// persists it. Used once, when the account is (re-)authorized.
func (c *Client) ExchangeCode(ctx context.Context, code string) error {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return ErrNotConfigured
	}

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"redirect_uri":  {c.cfg.RedirectURI},
	}

	c.credMu.Lock()
	defer c.credMu.Unlock()

	pair, err := c.requestToken(ctx, form)
	if err != nil {
		return &AuthError{Op: "code exchange", Err: err}
	}

	return c.adoptCredentialLocked(ctx, pair)
}

// AuthorizeURL builds the provider authorization URL for the three-legged
// flow.
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{
		"client_id":     {c.cfg.ClientID},
		"redirect_uri":  {c.cfg.RedirectURI},
		"response_type": {"code"},
		"scope":         {oauthScopes},
		"state":         {state},
	}
	return c.cfg.AuthURL + "?" + q.Encode()
}

// requestToken posts to the token endpoint and decodes the returned pair.
// Caller must hold credMu.
func (c *Client) requestToken(ctx context.Context, form url.Values) (Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Credential{}, fmt.Errorf("token endpoint returned %d: %s",
			resp.StatusCode, readBodyForError(resp.Body))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return Credential{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" || token.RefreshToken == "" {
		return Credential{}, fmt.Errorf("token response missing token pair")
	}

	return Credential{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken}, nil
}

// adoptCredentialLocked installs a freshly issued pair; credMu must be held.
// The pair is updated in memory unconditionally (the old refresh token is
// already invalid), then persisted with retries. A persistence failure
// surfaces as an error so the caller treats the run as failed, but the
// in-memory pair stays current for a later re-save.
func (c *Client) adoptCredentialLocked(ctx context.Context, pair Credential) error {
	c.cred = pair

	var saveErr error
	for attempt := 0; attempt < 3; attempt++ {
		if saveErr = c.store.Save(pair); saveErr == nil {
			logging.Debug().Msg("Rotated credential pair persisted")
			return nil
		}
		select {
		case <-time.After(time.Duration(1<<uint(attempt)) * 100 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("failed to persist rotated credentials: %w", saveErr)
}

// baseURL returns the versioned API base for an endpoint.
func (c *Client) baseURL(version Version) string {
	if version == V1 {
		return c.cfg.APIBaseV1
	}
	return c.cfg.APIBaseV2
}

// get performs a protected GET. 404 maps to ErrNotFound; callers treat it
// as an empty result.
func (c *Client) get(ctx context.Context, version Version, endpoint string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doProtected(ctx, c.baseURL(version)+endpoint, endpoint, query)
	})
	metrics.RecordProviderRequest(endpoint, requestResult(err))
	return body, err
}

// doProtected issues a bearer-authenticated request with a one-shot
// re-authentication retry: the first 401 triggers exactly one refresh and
// one retry; a second 401 is fatal for this request. The bound is an
// explicit loop counter, not recursion, so it stays visible and testable.
func (c *Client) doProtected(ctx context.Context, fullURL, endpoint string, query url.Values) ([]byte, error) {
	for attempt := 0; attempt <= 1; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
		}
		if query != nil {
			req.URL.RawQuery = query.Encode()
		}

		c.credMu.Lock()
		token := c.cred.AccessToken
		c.credMu.Unlock()
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &TransientError{Endpoint: endpoint, Err: err}
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			_ = resp.Body.Close()
			if attempt > 0 {
				return nil, &AuthError{Op: endpoint, Err: errors.New("unauthorized after token refresh")}
			}
			logging.Debug().Str("endpoint", endpoint).Msg("Unauthorized, refreshing token pair")
			if err := c.Refresh(ctx); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode == http.StatusNotFound:
			_ = resp.Body.Close()
			return nil, ErrNotFound

		case resp.StatusCode != http.StatusOK:
			body := readBodyForError(resp.Body)
			_ = resp.Body.Close()
			logging.Warn().Str("endpoint", endpoint).Int("status", resp.StatusCode).
				Str("body", body).Msg("Provider request failed")
			return nil, &TransientError{Endpoint: endpoint, Status: resp.StatusCode}
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, &TransientError{Endpoint: endpoint, Err: err}
		}
		return body, nil
	}

	// Unreachable: the loop either returns or retries exactly once.
	return nil, &AuthError{Op: endpoint}
}

// GetProfile fetches the basic account profile.
func (c *Client) GetProfile(ctx context.Context) (*RawProfile, error) {
	body, err := c.get(ctx, V1, EndpointProfile, nil)
	if err != nil {
		return nil, err
	}

	var p RawProfile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &p, nil
}

// GetBodyMeasurement fetches the latest body measurement.
func (c *Client) GetBodyMeasurement(ctx context.Context) (*RawBodyMeasurement, error) {
	body, err := c.get(ctx, V1, EndpointBody, nil)
	if err != nil {
		return nil, err
	}

	var b RawBodyMeasurement
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("failed to decode body measurement: %w", err)
	}
	return &b, nil
}

// requestResult classifies an outcome for the provider request counter.
func requestResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case IsAuthError(err):
		return "auth_error"
	default:
		return "error"
	}
}

// readBodyForError reads up to maxErrorBodySize bytes for diagnostics.
func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	return string(body)
}
