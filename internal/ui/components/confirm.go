// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

// =============================================================================
// CONFIRMATION MODAL
// =============================================================================

// Confirm is a two-button yes/no modal, used for session deletion.
type Confirm struct {
	theme *styles.Theme

	Title   string
	Body    string
	Danger  bool
	confirm bool
}

// NewConfirm creates a confirmation modal. Danger styles the confirm
// button destructively.
func NewConfirm(theme *styles.Theme, title, body string, danger bool) Confirm {
	return Confirm{theme: theme, Title: title, Body: body, Danger: danger}
}

// Toggle flips the focused button.
func (c *Confirm) Toggle() {
	c.confirm = !c.confirm
}

// Confirmed reports whether the confirm button is focused.
func (c *Confirm) Confirmed() bool {
	return c.confirm
}

// View renders the modal box.
func (c *Confirm) View() string {
	yes := "Delete"
	if !c.Danger {
		yes = "OK"
	}

	var yesBtn, noBtn string
	if c.confirm {
		if c.Danger {
			yesBtn = c.theme.ButtonDanger.Render(yes)
		} else {
			yesBtn = c.theme.ButtonActive.Render(yes)
		}
		noBtn = c.theme.Button.Render("Cancel")
	} else {
		yesBtn = c.theme.Button.Render(yes)
		noBtn = c.theme.ButtonActive.Render("Cancel")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		c.theme.ModalTitle.Render(c.Title),
		"",
		c.theme.ModalBody.Render(c.Body),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, noBtn, "  ", yesBtn),
		"",
		c.theme.ModalHint.Render("tab switches, enter confirms, esc cancels"),
	)

	return c.theme.ModalBox.Render(content)
}
