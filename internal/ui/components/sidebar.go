// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/prepped-health/prepped-tui/internal/model"
	"github.com/prepped-health/prepped-tui/internal/ui/styles"
	"github.com/prepped-health/prepped-tui/internal/util"
)

// =============================================================================
// SESSION SIDEBAR
// =============================================================================

// Sidebar lists past intake sessions grouped by date, with keyboard
// selection for switching and deleting.
type Sidebar struct {
	theme *styles.Theme

	Width  int
	Height int

	sessions []model.SessionSummary
	cursor   int
	activeID string

	// stale is set when the list came from the local cache, not the backend.
	stale     bool
	fetchedAt time.Time
}

// NewSidebar creates an empty sidebar.
func NewSidebar(theme *styles.Theme) Sidebar {
	return Sidebar{theme: theme}
}

// SetSessions replaces the list with a fresh backend result.
func (s *Sidebar) SetSessions(sessions []model.SessionSummary) {
	s.sessions = sessions
	s.stale = false
	s.fetchedAt = time.Now()
	s.clampCursor()
}

// SetCachedSessions replaces the list with a local-cache result and marks
// it stale so the view can say so.
func (s *Sidebar) SetCachedSessions(sessions []model.SessionSummary, fetchedAt time.Time) {
	s.sessions = sessions
	s.stale = true
	s.fetchedAt = fetchedAt
	s.clampCursor()
}

// Sessions returns the current list.
func (s *Sidebar) Sessions() []model.SessionSummary {
	return s.sessions
}

// SetActive marks the session currently open in the chat surface.
func (s *Sidebar) SetActive(id string) {
	s.activeID = id
}

// ActiveID returns the session currently open in the chat surface.
func (s *Sidebar) ActiveID() string {
	return s.activeID
}

// Selected returns the session under the cursor, or nil when empty.
func (s *Sidebar) Selected() *model.SessionSummary {
	if len(s.sessions) == 0 || s.cursor >= len(s.sessions) {
		return nil
	}
	return &s.sessions[s.cursor]
}

// CursorUp moves the selection up.
func (s *Sidebar) CursorUp() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// CursorDown moves the selection down.
func (s *Sidebar) CursorDown() {
	if s.cursor < len(s.sessions)-1 {
		s.cursor++
	}
}

// Remove drops a session from the list (after the backend confirmed the
// delete) and keeps the cursor in range.
func (s *Sidebar) Remove(id string) {
	for i, sess := range s.sessions {
		if sess.ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			break
		}
	}
	s.clampCursor()
}

func (s *Sidebar) clampCursor() {
	if s.cursor >= len(s.sessions) {
		s.cursor = len(s.sessions) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the sidebar at its configured width.
func (s *Sidebar) View() string {
	var b strings.Builder

	b.WriteString(s.theme.SidebarTitle.Render("Sessions"))
	b.WriteString("\n")
	if s.stale {
		b.WriteString(s.theme.StaleNotice.Render("cached " + s.fetchedAt.Format("Jan 2 15:04")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(s.sessions) == 0 {
		b.WriteString(s.theme.SessionPreview.Render("No sessions yet."))
		b.WriteString("\n")
		b.WriteString(s.theme.SessionPreview.Render("ctrl+n starts one."))
		return s.theme.Sidebar.Width(s.Width).Height(s.Height).Render(b.String())
	}

	itemWidth := s.Width - 4
	lastGroup := ""
	for i, sess := range s.sessions {
		if sess.Date != lastGroup {
			if lastGroup != "" {
				b.WriteString("\n")
			}
			b.WriteString(s.theme.SessionGroup.Render(sess.Date))
			b.WriteString("\n")
			lastGroup = sess.Date
		}

		title := sess.Title
		if title == "" {
			title = "Untitled intake"
		}
		marker := "  "
		if sess.ID == s.activeID {
			marker = "* "
		}
		line := util.TruncateWidth(marker+title, itemWidth)

		if i == s.cursor {
			b.WriteString(s.theme.SessionItemSelected.Render(line))
		} else {
			b.WriteString(s.theme.SessionItem.Render(line))
		}
		b.WriteString("\n")

		if sess.Preview != "" {
			b.WriteString(s.theme.SessionPreview.Render(
				util.TruncateWidth("   "+sess.Preview, itemWidth)))
			b.WriteString("\n")
		}
	}

	return s.theme.Sidebar.Width(s.Width).Height(s.Height).Render(b.String())
}
