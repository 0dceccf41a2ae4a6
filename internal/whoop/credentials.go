// Pulseboard - Personal Fitness and Project Dashboard Backend
// Copyright 2026 Samarth (Samarth2709)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Samarth2709/pulseboard

package whoop

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// Credential is the rotating OAuth token pair. Every successful refresh
// invalidates the prior refresh token and issues a new one, so the pair held
// here and in durable storage must always be the most recently issued one.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CredentialStore persists the rotating token pair. Save must be durable
// before the new access token is used for a protected request: once rotation
// succeeds the old refresh token is permanently invalid, and losing the new
// one requires out-of-band re-authorization.
type CredentialStore interface {
	Load() (Credential, error)
	Save(Credential) error
}

// FileCredentialStore keeps the token pair in a JSON file, written
// atomically via a temp file and rename.
type FileCredentialStore struct {
	path string
	mu   sync.Mutex
}

// NewFileCredentialStore creates a store backed by the given path. The file
// may not exist yet; Load then returns an empty credential.
func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

// Load reads the stored token pair. A missing file is not an error.
func (s *FileCredentialStore) Load() (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Credential{}, nil
	}
	if err != nil {
		return Credential{}, fmt.Errorf("failed to read credential file: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, fmt.Errorf("credential file %s is corrupt: %w", s.path, err)
	}
	return cred, nil
}

// Save writes the token pair durably. 0600: the refresh token is a secret.
func (s *FileCredentialStore) Save(cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create credential directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}
	return nil
}

// MemoryCredentialStore keeps the token pair in memory. For tests.
type MemoryCredentialStore struct {
	mu   sync.Mutex
	cred Credential
	// SaveErr, when set, is returned by Save to simulate persistence failure.
	SaveErr error
	// Saves counts successful Save calls.
	Saves int
}

// NewMemoryCredentialStore creates an in-memory store seeded with cred.
func NewMemoryCredentialStore(cred Credential) *MemoryCredentialStore {
	return &MemoryCredentialStore{cred: cred}
}

// Load returns the current token pair.
func (s *MemoryCredentialStore) Load() (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred, nil
}

// Save replaces the token pair.
func (s *MemoryCredentialStore) Save(cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.cred = cred
	s.Saves++
	return nil
}
