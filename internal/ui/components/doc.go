// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the prepped TUI:
// the session sidebar, status bar, loading spinner, the modal set (medical
// profile, settings, delete confirmation, connection error, call), and the
// agent trace view.
//
// Components are plain Bubble Tea models where they hold state and pure
// render helpers where they do not. None of them talk to the network; the
// app model owns all I/O and feeds results in as messages.
package components
