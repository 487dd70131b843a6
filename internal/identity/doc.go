// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity implements the account client for the hosted identity
// service (an Appwrite-compatible REST surface): email/password sessions,
// OAuth2 sessions via a loopback redirect capture, current-account lookup
// and logout.
//
// All operations are direct pass-throughs; failures propagate as typed
// APIError values and are shown inline by the login views, never as the
// blocking connection-error modal. The identity service - not any local
// cache - is the source of truth for "logged in".
package identity
