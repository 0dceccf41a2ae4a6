// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package whoop

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/Samarth2709/pulseboard/internal/logging"
)

// Direction selects how FetchRange walks the time range.
type Direction int

const (
	// Backward walks from the range end toward the start, newest first,
	// and stops early once maxEmptyWindows consecutive windows come back
	// empty. Used for historical backfills where the account history has
	// an unknown beginning.
	Backward Direction = iota

	// Forward walks from the range start toward the end and visits every
	// window. Sparse data is expected mid-range (travel, device off), so
	// empty windows never terminate a forward walk.
	Forward
)

const (
	// windowDays is the span of one request window.
	windowDays = 7

	// pageLimit is the per-request record limit.
	pageLimit = 25

	// maxEmptyWindows ends a backward walk after this many consecutive
	// empty windows: the account history has been exhausted.
	maxEmptyWindows = 3

	// maxWindows caps a single walk at roughly ten years of weekly
	// windows, a hard stop against runaway loops.
	maxWindows = 520
)

// FetchRange retrieves every record of an endpoint between start and end by
// walking the range in windows of windowDays, paginating each window until
// its continuation token is exhausted.
//
// In Backward mode a zero start means unbounded: the walk relies on the
// consecutive-empty-window stop instead of a boundary.
//
// On error the records accumulated so far are returned alongside the error,
// so a partially fetched range still reaches the reconciler.
func (c *Client) FetchRange(ctx context.Context, endpoint string, version Version,
	start, end time.Time, direction Direction) ([]json.RawMessage, error) {
	if direction == Backward {
		return c.fetchBackward(ctx, endpoint, version, start, end)
	}
	return c.fetchForward(ctx, endpoint, version, start, end)
}

func (c *Client) fetchBackward(ctx context.Context, endpoint string, version Version,
	start, end time.Time) ([]json.RawMessage, error) {
	var records []json.RawMessage

	windowEnd := end
	emptyStreak := 0

	for i := 0; i < maxWindows; i++ {
		windowStart := windowEnd.AddDate(0, 0, -windowDays)
		if !start.IsZero() && windowStart.Before(start) {
			windowStart = start
		}

		windowRecords, err := c.fetchWindow(ctx, endpoint, version, windowStart, windowEnd)
		records = append(records, windowRecords...)
		if err != nil {
			return records, err
		}

		if len(windowRecords) == 0 {
			emptyStreak++
			if emptyStreak >= maxEmptyWindows {
				logging.Debug().Str("endpoint", endpoint).Int("windows", i+1).
					Msg("History exhausted, stopping backward walk")
				break
			}
		} else {
			emptyStreak = 0
		}

		if !start.IsZero() && !windowStart.After(start) {
			break
		}
		windowEnd = windowStart
	}

	return records, nil
}

func (c *Client) fetchForward(ctx context.Context, endpoint string, version Version,
	start, end time.Time) ([]json.RawMessage, error) {
	var records []json.RawMessage

	windowStart := start
	for i := 0; i < maxWindows && windowStart.Before(end); i++ {
		windowEnd := windowStart.AddDate(0, 0, windowDays)
		if windowEnd.After(end) {
			windowEnd = end
		}

		windowRecords, err := c.fetchWindow(ctx, endpoint, version, windowStart, windowEnd)
		records = append(records, windowRecords...)
		if err != nil {
			return records, err
		}

		windowStart = windowEnd
	}

	return records, nil
}

// fetchWindow pages through one [start, end) window, following the
// continuation token until the provider stops returning one. Records
// accumulated before a mid-window failure are returned with the error.
func (c *Client) fetchWindow(ctx context.Context, endpoint string, version Version,
	start, end time.Time) ([]json.RawMessage, error) {
	var records []json.RawMessage
	var nextToken string

	for {
		query := url.Values{
			"start": {FormatTimestamp(start)},
			"end":   {FormatTimestamp(end)},
			"limit": {strconv.Itoa(pageLimit)},
		}
		if nextToken != "" {
			query.Set("nextToken", nextToken)
		}

		body, err := c.get(ctx, version, endpoint, query)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return records, nil
			}
			return records, err
		}

		var page pageResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return records, fmt.Errorf("failed to decode %s page: %w", endpoint, err)
		}

		records = append(records, page.Records...)

		if page.NextToken == nil || *page.NextToken == "" {
			return records, nil
		}
		nextToken = *page.NextToken
	}
}
