// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/prepped-health/prepped-tui/internal/model"
	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

func testSessions() []model.SessionSummary {
	return []model.SessionSummary{
		{ID: "s1", Title: "Headache intake", Date: "2026-08-31", Preview: "It started Tuesday"},
		{ID: "s2", Title: "Back pain intake", Date: "2026-08-31", Preview: "Lower back"},
		{ID: "s3", Title: "Follow-up", Date: "2026-08-28", Preview: "Still sore"},
	}
}

func TestSidebarCursorMovement(t *testing.T) {
	sb := NewSidebar(styles.NewTheme())
	sb.SetSessions(testSessions())

	if sb.Selected().ID != "s1" {
		t.Fatalf("initial selection = %s, want s1", sb.Selected().ID)
	}

	sb.CursorUp() // already at top
	if sb.Selected().ID != "s1" {
		t.Errorf("selection after CursorUp at top = %s, want s1", sb.Selected().ID)
	}

	sb.CursorDown()
	sb.CursorDown()
	if sb.Selected().ID != "s3" {
		t.Errorf("selection = %s, want s3", sb.Selected().ID)
	}

	sb.CursorDown() // already at bottom
	if sb.Selected().ID != "s3" {
		t.Errorf("selection after CursorDown at bottom = %s, want s3", sb.Selected().ID)
	}
}

func TestSidebarRemoveKeepsCursorInRange(t *testing.T) {
	sb := NewSidebar(styles.NewTheme())
	sb.SetSessions(testSessions())
	sb.CursorDown()
	sb.CursorDown() // on s3

	sb.Remove("s3")
	if got := sb.Selected(); got == nil || got.ID != "s2" {
		t.Errorf("selection after removing last item = %v, want s2", got)
	}

	sb.Remove("s1")
	sb.Remove("s2")
	if sb.Selected() != nil {
		t.Errorf("Selected() on empty sidebar = %v, want nil", sb.Selected())
	}
}

func TestSidebarViewGroupsByDate(t *testing.T) {
	sb := NewSidebar(styles.NewTheme())
	sb.Width = 32
	sb.Height = 20
	sb.SetSessions(testSessions())

	view := sb.View()
	if c := strings.Count(view, "2026-08-31"); c != 1 {
		t.Errorf("date group 2026-08-31 appears %d times, want 1", c)
	}
	if !strings.Contains(view, "2026-08-28") {
		t.Error("view missing second date group")
	}
}

func TestSidebarStaleNotice(t *testing.T) {
	sb := NewSidebar(styles.NewTheme())
	sb.Width = 32
	sb.Height = 20
	sb.SetCachedSessions(testSessions(), time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))

	if !strings.Contains(sb.View(), "cached") {
		t.Error("cached list view missing stale notice")
	}

	sb.SetSessions(testSessions())
	if strings.Contains(sb.View(), "cached") {
		t.Error("fresh list view still shows stale notice")
	}
}

func TestSidebarEmptyView(t *testing.T) {
	sb := NewSidebar(styles.NewTheme())
	sb.Width = 32
	sb.Height = 20

	if !strings.Contains(sb.View(), "No sessions yet") {
		t.Error("empty sidebar missing placeholder text")
	}
}
