// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

// Package main is the entry point for the Pulseboard server.
//
// Pulseboard is a self-hosted personal dashboard backend that mirrors
// fitness data from a WHOOP-style wearable provider into a local DuckDB
// store and decorates it with GitHub repository statistics.
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables over config file over defaults (Koanf v2)
//  2. Database: DuckDB with the fitness, project and job tables
//  3. Provider client: OAuth credential store plus rate-limited HTTP client
//  4. Sync manager: scheduled incremental synchronization
//  5. Project collector: GitHub statistics refresh jobs
//  6. HTTP server: REST API plus Prometheus metrics
//
// Shutdown on SIGINT/SIGTERM is graceful: the HTTP listener drains for up
// to 10 seconds, the sync scheduler stops, running refresh jobs finish,
// then the database closes.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Samarth2709/pulseboard/internal/api"
	"github.com/Samarth2709/pulseboard/internal/config"
	"github.com/Samarth2709/pulseboard/internal/database"
	"github.com/Samarth2709/pulseboard/internal/github"
	"github.com/Samarth2709/pulseboard/internal/logging"
	"github.com/Samarth2709/pulseboard/internal/sync"
	"github.com/Samarth2709/pulseboard/internal/whoop"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Bool("whoop_enabled", cfg.Whoop.Enabled).
		Bool("github_enabled", cfg.GitHub.Enabled).
		Str("db_path", cfg.Database.Path).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	credStore := whoop.NewFileCredentialStore(cfg.Whoop.CredentialsPath)
	client, err := whoop.NewClient(&cfg.Whoop, credStore)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize provider client")
	}

	manager := sync.NewManager(cfg.Sync, db, client)
	if cfg.Whoop.Enabled {
		manager.Start()
		defer manager.Stop()
	}

	collector := github.NewCollector(cfg.GitHub, db)
	defer collector.Wait()

	handler := api.NewHandler(cfg, db, manager, client, collector)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(cfg, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("HTTP server failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("HTTP shutdown incomplete")
	}
	logging.Info().Msg("Shutdown complete")
}
