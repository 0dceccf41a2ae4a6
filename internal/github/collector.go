// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

// Package github collects repository statistics for the projects side of
// the dashboard. Statistics come entirely from the GitHub API: no clone and
// no line counter is needed, which keeps a refresh fast and host-agnostic.
package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/Samarth2709/pulseboard/internal/config"
	"github.com/Samarth2709/pulseboard/internal/logging"
	"github.com/Samarth2709/pulseboard/internal/models"
)

// recentCommitPage is how many recent commits feed the active-days
// estimate.
const recentCommitPage = 30

// bytesPerLine approximates lines of code from repository size. Around 50
// bytes per line is a long-standing rule of thumb for mixed codebases.
const bytesPerLine = 50

// Store is the persistence surface the collector needs.
type Store interface {
	UpsertProject(ctx context.Context, p *models.Project) error
	InsertRefreshJob(ctx context.Context, job *models.RefreshJob) error
	UpdateRefreshJob(ctx context.Context, job *models.RefreshJob) error
}

// Collector fetches repository statistics and mirrors them into the store.
// jobMu serializes background refreshes so repository upserts never race.
type Collector struct {
	cfg    config.GitHubConfig
	store  Store
	client *gh.Client

	jobMu sync.Mutex
	wg    sync.WaitGroup

	// now is replaceable in tests.
	now func() time.Time
}

// NewCollector creates a collector authenticated with the configured token.
func NewCollector(cfg config.GitHubConfig, store Store) *Collector {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = cfg.Timeout

	return newCollector(cfg, store, gh.NewClient(tc))
}

func newCollector(cfg config.GitHubConfig, store Store, client *gh.Client) *Collector {
	return &Collector{
		cfg:    cfg,
		store:  store,
		client: client,
		now:    time.Now,
	}
}

// listRepositories resolves the set of repositories to refresh: the
// configured list when present, otherwise all non-fork repositories owned
// by the configured user.
func (c *Collector) listRepositories(ctx context.Context) ([]*gh.Repository, error) {
	if len(c.cfg.Repos) > 0 {
		repos := make([]*gh.Repository, 0, len(c.cfg.Repos))
		for _, full := range c.cfg.Repos {
			owner, name, ok := splitRepo(full)
			if !ok {
				return nil, fmt.Errorf("invalid repository %q, want owner/name", full)
			}
			repo, _, err := c.client.Repositories.Get(ctx, owner, name)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch repository %s: %w", full, err)
			}
			repos = append(repos, repo)
		}
		return repos, nil
	}

	opts := &gh.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var repos []*gh.Repository
	for {
		page, resp, err := c.client.Repositories.ListByUser(ctx, c.cfg.Username, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories: %w", err)
		}
		for _, repo := range page {
			if repo.GetFork() {
				continue
			}
			repos = append(repos, repo)
		}
		if resp.NextPage == 0 {
			return repos, nil
		}
		opts.Page = resp.NextPage
	}
}

// collectRepo builds one Project from a repository's API statistics.
func (c *Collector) collectRepo(ctx context.Context, repo *gh.Repository) (*models.Project, error) {
	project := &models.Project{
		Name:        repo.GetFullName(),
		Description: repo.GetDescription(),
		SizeKB:      repo.GetSize(),
		UpdatedAt:   c.now().UTC(),
	}
	if project.SizeKB > 0 {
		project.LinesOfCode = project.SizeKB * 1024 / bytesPerLine
	}

	owner := repo.GetOwner().GetLogin()
	name := repo.GetName()

	commits, _, err := c.client.Repositories.ListCommits(ctx, owner, name,
		&gh.CommitsListOptions{ListOptions: gh.ListOptions{PerPage: recentCommitPage}})
	if err != nil {
		// An empty repository answers 409. Keep whatever stats we have.
		var errResp *gh.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response != nil &&
			errResp.Response.StatusCode == 409 {
			logging.Debug().Str("repo", project.Name).Msg("Repository has no commits")
			return project, nil
		}
		return nil, fmt.Errorf("failed to list commits for %s: %w", project.Name, err)
	}

	total, err := c.countCommits(ctx, owner, name)
	if err != nil {
		logging.Warn().Err(err).Str("repo", project.Name).Msg("Failed to count commits")
		total = len(commits)
	}
	project.CommitCount = total
	project.ActiveDays = activeDays(commits)
	if len(commits) > 0 {
		if date := commits[0].GetCommit().GetCommitter().GetDate(); !date.Time.IsZero() {
			t := date.Time.UTC()
			project.LastCommitDate = &t
		}
	}

	languages, _, err := c.client.Repositories.ListLanguages(ctx, owner, name)
	if err != nil {
		logging.Warn().Err(err).Str("repo", project.Name).Msg("Failed to list languages")
	} else {
		project.PrimaryLanguage = primaryLanguage(languages)
	}

	return project, nil
}

// countCommits returns the exact total commit count. With page size 1 the
// Link header's last page index equals the commit count; a missing Link
// header means everything fit on the single one-commit page.
func (c *Collector) countCommits(ctx context.Context, owner, name string) (int, error) {
	page, resp, err := c.client.Repositories.ListCommits(ctx, owner, name,
		&gh.CommitsListOptions{ListOptions: gh.ListOptions{PerPage: 1}})
	if err != nil {
		return 0, err
	}
	if resp.LastPage > 0 {
		return resp.LastPage, nil
	}
	return len(page), nil
}

// activeDays counts distinct commit dates among the recent commits.
func activeDays(commits []*gh.RepositoryCommit) int {
	days := make(map[string]struct{}, len(commits))
	for _, commit := range commits {
		date := commit.GetCommit().GetCommitter().GetDate()
		if date.Time.IsZero() {
			continue
		}
		days[date.Time.UTC().Format("2006-01-02")] = struct{}{}
	}
	return len(days)
}

// primaryLanguage picks the language with the most bytes.
func primaryLanguage(languages map[string]int) string {
	best := ""
	bestBytes := 0
	for lang, bytes := range languages {
		if bytes > bestBytes || (bytes == bestBytes && lang < best) {
			best = lang
			bestBytes = bytes
		}
	}
	return best
}

func splitRepo(full string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(full, "/")
	if !found || owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}
