// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/prepped-health/prepped-tui/internal/backend"
	"github.com/prepped-health/prepped-tui/internal/config"
	"github.com/prepped-health/prepped-tui/internal/identity"
	"github.com/prepped-health/prepped-tui/internal/storage"
)

// =============================================================================
// SHARED CLIENT WIRING
// =============================================================================

// newBackendClient builds an intake backend client from the global config.
func newBackendClient() *backend.Client {
	return backend.New(config.Global().Backend.BaseURL)
}

// newIdentityClient builds an identity client from the global config. The
// session secret lives in the storage directory next to the cache database.
func newIdentityClient() (*identity.Client, error) {
	cfg := config.Global()
	dir, err := cfg.StorageDir()
	if err != nil {
		return nil, fmt.Errorf("resolve storage directory: %w", err)
	}
	return identity.New(cfg.Identity.Endpoint, cfg.Identity.ProjectID, dir), nil
}

// openStore opens the local cache store from the global config.
func openStore() (*storage.Store, error) {
	cfg := config.Global()
	dir, err := cfg.StorageDir()
	if err != nil {
		return nil, fmt.Errorf("resolve storage directory: %w", err)
	}
	return storage.Open(dir, cfg.Storage.EncryptCache)
}

// currentUserID returns the cached user id hint, or "" for anonymous use.
// The hint is not authoritative; backend calls that need a real identity
// still go through CurrentAccount.
func currentUserID(ctx context.Context) string {
	store, err := openStore()
	if err != nil {
		return ""
	}
	defer store.Close()

	hint, err := store.GetAuthHint(ctx)
	if err != nil || !hint.LoggedIn {
		return ""
	}
	return hint.UserID
}
