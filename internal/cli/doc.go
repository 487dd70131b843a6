// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI entry points of the prepped binary:
// one-shot questions, a headless REPL for low-capability terminals, session
// management, briefing export and identity login/logout.
package cli
