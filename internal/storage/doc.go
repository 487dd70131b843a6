// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local sqlite cache for the prepped TUI:
// the auth redirect hint, the offline sidebar session list, and encrypted
// briefing snapshots for offline re-printing.
//
// Nothing in here is authoritative. The identity service decides whether
// the user is logged in and the backend owns the session list; the cache
// only makes startup faster and keeps the last briefing readable when the
// network is gone.
package storage
