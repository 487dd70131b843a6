// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// LAYOUT HELPERS
// =============================================================================

// CenterOverlay places a modal in the middle of the terminal.
func CenterOverlay(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// GroupLabel maps a raw session date string to a friendlier group header.
// The backend sends ISO dates; anything unparseable is shown as-is.
func GroupLabel(date, today, yesterday string) string {
	switch date {
	case today:
		return "Today"
	case yesterday:
		return "Yesterday"
	default:
		return date
	}
}
