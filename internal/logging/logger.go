// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

// Package logging provides centralized zerolog-based logging for Pulseboard.
//
// All packages log through the global logger configured here:
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Msg("Server starting")
//	logging.Error().Err(err).Msg("Sync failed")
//
// JSON output is the default; console output is available for development.
// Always terminate log chains with .Msg() or .Send(), and prefer structured
// fields over string formatting:
//
//	logging.Info().Str("entity", "sleep").Int("records", n).Msg("Reconciled")
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config controls the global logger output.
type Config struct {
	// Level is the minimum level emitted: trace, debug, info, warn, error.
	Level string

	// Format selects "json" (default) or human-readable "console" output.
	Format string

	// Caller annotates events with the emitting file and line.
	Caller bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

var (
	mu  sync.Mutex
	log zerolog.Logger
)

// The package is usable before Init so config loading itself can log.
func init() {
	Init(Config{})
}

// Init (re)configures the global logger. Called from main once the
// configuration is loaded; safe to call again.
func Init(cfg Config) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	l := zerolog.New(out).With().Timestamp()
	if cfg.Caller {
		l = l.Caller()
	}

	mu.Lock()
	log = l.Logger()
	mu.Unlock()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func current() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return log
}

// With starts a child logger context carrying preset fields.
func With() zerolog.Context {
	return current().With()
}

// Debug starts a debug-level event.
func Debug() *zerolog.Event {
	l := current()
	return l.Debug()
}

// Info starts an info-level event.
func Info() *zerolog.Event {
	l := current()
	return l.Info()
}

// Warn starts a warn-level event.
func Warn() *zerolog.Event {
	l := current()
	return l.Warn()
}

// Error starts an error-level event.
func Error() *zerolog.Event {
	l := current()
	return l.Error()
}

// Fatal starts a fatal-level event; the message call exits the process.
func Fatal() *zerolog.Event {
	l := current()
	return l.Fatal()
}

// Err starts an error-level event with err attached, or an info-level event
// when err is nil.
func Err(err error) *zerolog.Event {
	l := current()
	return l.Err(err)
}

// NewTestLogger returns an independent logger writing to w, for tests that
// assert on log output without touching the global sink.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
