// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

// =============================================================================
// CONNECTION ERROR MODAL
// =============================================================================

// ConnectionError is the blocking modal shown when the intake backend is
// unreachable. There is no automatic retry; the user drives it.
type ConnectionError struct {
	theme *styles.Theme

	// Detail is the underlying error text shown beneath the headline.
	Detail string
}

// NewConnectionError creates the modal.
func NewConnectionError(theme *styles.Theme, detail string) ConnectionError {
	return ConnectionError{theme: theme, Detail: detail}
}

// View renders the modal box.
func (c *ConnectionError) View() string {
	lines := []string{
		c.theme.ErrorTitle.Render("Connection problem"),
		"",
		c.theme.ErrorMessage.Render("Could not reach the intake service."),
	}
	if c.Detail != "" {
		lines = append(lines, c.theme.ModalHint.Render(c.Detail))
	}
	lines = append(lines,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			c.theme.ButtonActive.Render("Retry"), "  ",
			c.theme.Button.Render("Dismiss")),
		"",
		c.theme.ModalHint.Render("enter retries, esc dismisses"),
	)

	return c.theme.ErrorBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
