// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Samarth2709/pulseboard/internal/logging"
	"github.com/Samarth2709/pulseboard/internal/metrics"
	"github.com/Samarth2709/pulseboard/internal/models"
)

// jobTimeout bounds one background refresh end to end.
const jobTimeout = 10 * time.Minute

// StartRefresh queues a background refresh of all tracked repositories and
// returns immediately with the queued job. Progress is persisted after
// every repository, so pollers see it move. Only one refresh runs at a
// time; a second request while one is in flight still gets its own job,
// which waits its turn.
func (c *Collector) StartRefresh(ctx context.Context) (*models.RefreshJob, error) {
	if !c.cfg.Enabled {
		return nil, fmt.Errorf("github collection is disabled")
	}

	job := &models.RefreshJob{
		ID:        uuid.New(),
		Status:    models.JobStatusQueued,
		CreatedAt: c.now().UTC(),
	}
	if err := c.store.InsertRefreshJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create refresh job: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		runCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		c.jobMu.Lock()
		defer c.jobMu.Unlock()
		c.runRefresh(runCtx, job)
	}()

	return job, nil
}

// Wait blocks until all in-flight refresh jobs finish. Used on shutdown.
func (c *Collector) Wait() {
	c.wg.Wait()
}

func (c *Collector) runRefresh(ctx context.Context, job *models.RefreshJob) {
	started := c.now().UTC()
	job.Status = models.JobStatusRunning
	job.StartedAt = &started
	c.updateJob(ctx, job)

	repos, err := c.listRepositories(ctx)
	if err != nil {
		c.failJob(ctx, job, err)
		return
	}

	job.Total = len(repos)
	c.updateJob(ctx, job)
	logging.Info().Str("job_id", job.ID.String()).Int("repositories", len(repos)).
		Msg("Project refresh started")

	for _, repo := range repos {
		project, err := c.collectRepo(ctx, repo)
		if err == nil {
			err = c.store.UpsertProject(ctx, project)
		}
		if err != nil {
			job.Failed++
			logging.Warn().Err(err).Str("repo", repo.GetFullName()).
				Msg("Failed to refresh repository")
		}
		job.Processed++
		c.updateJob(ctx, job)
	}

	completed := c.now().UTC()
	job.Status = models.JobStatusCompleted
	job.CompletedAt = &completed
	c.updateJob(ctx, job)

	metrics.RecordProjectRefreshJob(job.Status, completed.Sub(started))
	logging.Info().Str("job_id", job.ID.String()).
		Int("processed", job.Processed).Int("failed", job.Failed).
		Msg("Project refresh completed")
}

func (c *Collector) failJob(ctx context.Context, job *models.RefreshJob, cause error) {
	completed := c.now().UTC()
	job.Status = models.JobStatusFailed
	job.Error = cause.Error()
	job.CompletedAt = &completed
	c.updateJob(ctx, job)

	duration := time.Duration(0)
	if job.StartedAt != nil {
		duration = completed.Sub(*job.StartedAt)
	}
	metrics.RecordProjectRefreshJob(job.Status, duration)
	logging.Error().Err(cause).Str("job_id", job.ID.String()).Msg("Project refresh failed")
}

func (c *Collector) updateJob(ctx context.Context, job *models.RefreshJob) {
	if err := c.store.UpdateRefreshJob(ctx, job); err != nil {
		logging.Error().Err(err).Str("job_id", job.ID.String()).
			Msg("Failed to persist job progress")
	}
}
