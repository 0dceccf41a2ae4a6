// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samarth2709/pulseboard/internal/config"
	"github.com/Samarth2709/pulseboard/internal/models"
)

type fakeProjectStore struct {
	mu       sync.Mutex
	projects map[string]models.Project
	jobs     map[uuid.UUID]models.RefreshJob
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{
		projects: make(map[string]models.Project),
		jobs:     make(map[uuid.UUID]models.RefreshJob),
	}
}

func (s *fakeProjectStore) UpsertProject(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.Name] = *p
	return nil
}

func (s *fakeProjectStore) InsertRefreshJob(_ context.Context, job *models.RefreshJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *fakeProjectStore) UpdateRefreshJob(_ context.Context, job *models.RefreshJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *fakeProjectStore) job(id uuid.UUID) models.RefreshJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// serveRepo registers handlers for one repository with three commits on two
// distinct days, a total count of 42 and Go as the dominant language.
func serveRepo(mux *http.ServeMux, owner, name string, sizeKB int) {
	full := owner + "/" + name

	mux.HandleFunc("/repos/"+full, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":1,"name":%q,"full_name":%q,"description":"test repo","size":%d,"owner":{"login":%q}}`,
			name, full, sizeKB, owner)
	})
	mux.HandleFunc("/repos/"+full+"/commits", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("per_page") == "1" {
			w.Header().Set("Link", fmt.Sprintf(
				`<https://api.github.com/repos/%s/commits?per_page=1&page=42>; rel="last"`, full))
			fmt.Fprint(w, `[{"sha":"a1","commit":{"committer":{"date":"2026-08-30T10:00:00Z"}}}]`)
			return
		}
		fmt.Fprint(w, `[
			{"sha":"a1","commit":{"committer":{"date":"2026-08-30T10:00:00Z"}}},
			{"sha":"a2","commit":{"committer":{"date":"2026-08-30T08:00:00Z"}}},
			{"sha":"a3","commit":{"committer":{"date":"2026-08-28T20:00:00Z"}}}
		]`)
	})
	mux.HandleFunc("/repos/"+full+"/languages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Go":150000,"Python":2000}`)
	})
}

func newTestCollector(t *testing.T, cfg config.GitHubConfig, store Store, mux *http.ServeMux) *Collector {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := gh.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	c := newCollector(cfg, store, client)
	c.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestCollectRepoStats(t *testing.T) {
	mux := http.NewServeMux()
	serveRepo(mux, "sam", "alpha", 500)

	store := newFakeProjectStore()
	cfg := config.GitHubConfig{Enabled: true, Token: "t", Repos: []string{"sam/alpha"}}
	c := newTestCollector(t, cfg, store, mux)

	repos, err := c.listRepositories(context.Background())
	require.NoError(t, err)
	require.Len(t, repos, 1)

	project, err := c.collectRepo(context.Background(), repos[0])
	require.NoError(t, err)

	assert.Equal(t, "sam/alpha", project.Name)
	assert.Equal(t, "test repo", project.Description)
	assert.Equal(t, 42, project.CommitCount)
	assert.Equal(t, 2, project.ActiveDays)
	assert.Equal(t, "Go", project.PrimaryLanguage)
	assert.Equal(t, 500, project.SizeKB)
	assert.Equal(t, 500*1024/50, project.LinesOfCode)
	require.NotNil(t, project.LastCommitDate)
	assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), *project.LastCommitDate)
}

func TestListRepositoriesByUserSkipsForks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/sam/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id":1,"name":"alpha","full_name":"sam/alpha","owner":{"login":"sam"}},
			{"id":2,"name":"forked","full_name":"sam/forked","fork":true,"owner":{"login":"sam"}}
		]`)
	})

	cfg := config.GitHubConfig{Enabled: true, Token: "t", Username: "sam"}
	c := newTestCollector(t, cfg, newFakeProjectStore(), mux)

	repos, err := c.listRepositories(context.Background())
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "sam/alpha", repos[0].GetFullName())
}

func TestStartRefreshCompletesJob(t *testing.T) {
	mux := http.NewServeMux()
	serveRepo(mux, "sam", "alpha", 100)

	store := newFakeProjectStore()
	cfg := config.GitHubConfig{Enabled: true, Token: "t", Repos: []string{"sam/alpha"}}
	c := newTestCollector(t, cfg, store, mux)

	job, err := c.StartRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusQueued, job.Status)

	c.Wait()

	final := store.job(job.ID)
	assert.Equal(t, models.JobStatusCompleted, final.Status)
	assert.Equal(t, 1, final.Total)
	assert.Equal(t, 1, final.Processed)
	assert.Equal(t, 0, final.Failed)
	require.NotNil(t, final.CompletedAt)

	assert.Contains(t, store.projects, "sam/alpha")
}

func TestStartRefreshFailsWhenListingFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/sam/alpha", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	})

	store := newFakeProjectStore()
	cfg := config.GitHubConfig{Enabled: true, Token: "t", Repos: []string{"sam/alpha"}}
	c := newTestCollector(t, cfg, store, mux)

	job, err := c.StartRefresh(context.Background())
	require.NoError(t, err)

	c.Wait()

	final := store.job(job.ID)
	assert.Equal(t, models.JobStatusFailed, final.Status)
	assert.NotEmpty(t, final.Error)
	assert.Empty(t, store.projects)
}

func TestStartRefreshDisabled(t *testing.T) {
	c := newTestCollector(t, config.GitHubConfig{Enabled: false}, newFakeProjectStore(), http.NewServeMux())

	_, err := c.StartRefresh(context.Background())
	assert.Error(t, err)
}

func TestPrimaryLanguage(t *testing.T) {
	assert.Equal(t, "Go", primaryLanguage(map[string]int{"Go": 100, "Python": 50}))
	assert.Equal(t, "", primaryLanguage(nil))
}

func TestSplitRepo(t *testing.T) {
	owner, name, ok := splitRepo("sam/alpha")
	assert.True(t, ok)
	assert.Equal(t, "sam", owner)
	assert.Equal(t, "alpha", name)

	_, _, ok = splitRepo("no-slash")
	assert.False(t, ok)
	_, _, ok = splitRepo("/missing-owner")
	assert.False(t, ok)
}
