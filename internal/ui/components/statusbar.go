// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Status is the app-level state shown at the left of the bar.
type Status int

const (
	StatusReady Status = iota
	StatusThinking
	StatusTranscribing
	StatusCallLive
	StatusOffline
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusThinking:
		return "Thinking..."
	case StatusTranscribing:
		return "Transcribing..."
	case StatusCallLive:
		return "Call in progress"
	case StatusOffline:
		return "Offline"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Shortcut is one key hint shown at the right of the bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders the bottom bar: status, account, key hints.
type StatusBar struct {
	theme *styles.Theme

	Width     int
	Status    Status
	Account   string
	Shortcuts []Shortcut
}

// NewStatusBar creates a status bar with the default shortcut set.
func NewStatusBar(theme *styles.Theme) StatusBar {
	return StatusBar{
		theme: theme,
		Shortcuts: []Shortcut{
			{Key: "ctrl+n", Desc: "new"},
			{Key: "ctrl+b", Desc: "sidebar"},
			{Key: "ctrl+t", Desc: "call"},
			{Key: "ctrl+p", Desc: "profile"},
			{Key: "ctrl+c", Desc: "quit"},
		},
	}
}

// statusStyle picks the style for the current status.
func (b *StatusBar) statusStyle() func(...string) string {
	switch b.Status {
	case StatusReady:
		return b.theme.StatusOK.Render
	case StatusError, StatusOffline:
		return b.theme.StatusErr.Render
	default:
		return b.theme.StatusBusy.Render
	}
}

// View renders the bar at the configured width.
func (b *StatusBar) View() string {
	left := b.statusStyle()(b.Status.String())
	if b.Account != "" {
		left += b.theme.ShortcutDesc.Render("  " + b.Account)
	}

	var hints []string
	for _, sc := range b.Shortcuts {
		hints = append(hints,
			b.theme.ShortcutKey.Render(sc.Key)+" "+b.theme.ShortcutDesc.Render(sc.Desc))
	}
	right := strings.Join(hints, "  ")

	gap := b.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return b.theme.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}
