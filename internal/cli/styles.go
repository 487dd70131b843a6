// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

// =============================================================================
// CLI OUTPUT STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)

	agentStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	warnStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	okStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	headingStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true).
			Underline(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)
)
