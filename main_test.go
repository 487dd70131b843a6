// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"testing"

	"github.com/prepped-health/prepped-tui/internal/config"
	"github.com/prepped-health/prepped-tui/internal/model"
)

// newTestApp builds an app model already in the chat state, with no
// sqlite store so session loads stay purely in memory.
func newTestApp(t *testing.T) *appModel {
	t.Helper()
	cfg := config.Default()
	m := newAppModel(cfg, nil, t.TempDir())
	m.enterChat("user-1", "", false)
	return m
}

func TestDeletingActiveSessionStartsFresh(t *testing.T) {
	m := newTestApp(t)
	active := m.chat.SessionID()

	m.sidebar.SetSessions([]model.SessionSummary{
		{ID: active, Title: "Headache intake"},
		{ID: "sess-other", Title: "Back pain intake"},
	})
	m.sidebar.SetActive(active)
	m.chat.Conversation().AddUserMessage("my head hurts")

	m.Update(sessionDeletedMsg{id: active})

	if m.chat.SessionID() == active {
		t.Fatal("chat still on the deleted session")
	}
	if !m.chat.Conversation().IsEmpty() {
		t.Error("fresh session should start with no messages")
	}
	if m.sidebar.ActiveID() != "" {
		t.Errorf("sidebar active id = %q, want cleared", m.sidebar.ActiveID())
	}
}

func TestDeletingOtherSessionLeavesActiveView(t *testing.T) {
	m := newTestApp(t)
	active := m.chat.SessionID()

	m.sidebar.SetSessions([]model.SessionSummary{
		{ID: active, Title: "Headache intake"},
		{ID: "sess-other", Title: "Back pain intake"},
	})
	m.sidebar.SetActive(active)
	m.chat.Conversation().AddUserMessage("my head hurts")

	m.Update(sessionDeletedMsg{id: "sess-other"})

	if m.chat.SessionID() != active {
		t.Fatal("active session changed after deleting another one")
	}
	if got := m.chat.Conversation().MessageCount(); got != 1 {
		t.Errorf("message count = %d, want 1", got)
	}
	if m.sidebar.ActiveID() != active {
		t.Errorf("sidebar active id = %q, want %q", m.sidebar.ActiveID(), active)
	}
}
