// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"testing"

	"github.com/prepped-health/prepped-tui/internal/backend"
	"github.com/prepped-health/prepped-tui/internal/model"
	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m := New(styles.NewTheme(), backend.New("http://127.0.0.1:1"), "user-1", false)
	m.SetSize(100, 40)
	return m
}

func reply(text string) *backend.ChatReply {
	return &backend.ChatReply{
		Text:      text,
		AgentName: "Intake Nurse",
		MemoryBank: model.MemoryBank{
			ChiefComplaint: "headache",
		},
	}
}

func TestReplyAppliedAndProfileReplaced(t *testing.T) {
	m := newTestModel(t)
	tag := backend.RequestTag{SessionID: m.SessionID(), Seq: 1}
	m.pending = true
	m.pendingTag = tag

	m.Update(ReplyMsg{Tag: tag, Reply: reply("How long has it hurt?")})

	if m.Loading() {
		t.Error("still loading after reply applied")
	}
	last := m.Conversation().LastAssistantMessage()
	if last == nil || last.Content != "How long has it hurt?" {
		t.Fatalf("assistant message not appended: %+v", last)
	}
	if m.Conversation().Profile.ChiefComplaint != "headache" {
		t.Error("memory bank not replaced from reply")
	}
}

func TestStaleReplyDiscarded(t *testing.T) {
	m := newTestModel(t)
	current := backend.RequestTag{SessionID: m.SessionID(), Seq: 2}
	m.pending = true
	m.pendingTag = current

	// A reply for an older request arrives late.
	stale := backend.RequestTag{SessionID: m.SessionID(), Seq: 1}
	m.Update(ReplyMsg{Tag: stale, Reply: reply("old answer")})

	if !m.Loading() {
		t.Error("stale reply cleared the loading state")
	}
	if m.Conversation().LastAssistantMessage() != nil {
		t.Error("stale reply was appended")
	}
	if m.Conversation().Profile.ChiefComplaint != "" {
		t.Error("stale reply replaced the memory bank")
	}
}

func TestStoppedReplyDiscardedOnce(t *testing.T) {
	m := newTestModel(t)
	tag := backend.RequestTag{SessionID: m.SessionID(), Seq: 1}
	m.pending = true
	m.pendingTag = tag

	m.stop()
	if m.Loading() {
		t.Error("stop did not clear loading state")
	}
	countBefore := m.Conversation().MessageCount()

	// The in-flight reply lands after stop; it must be dropped.
	m.Update(ReplyMsg{Tag: tag, Reply: reply("too late")})
	if m.Conversation().MessageCount() != countBefore {
		t.Error("reply applied after stop")
	}
	if m.Conversation().LastAssistantMessage() != nil {
		t.Error("assistant message appended after stop")
	}
}

func TestHandoffAttachesCallToAction(t *testing.T) {
	m := newTestModel(t)
	tag := backend.RequestTag{SessionID: m.SessionID(), Seq: 1}
	m.pending = true
	m.pendingTag = tag

	r := reply("Your briefing is ready.")
	r.IsHandoff = true
	m.Update(ReplyMsg{Tag: tag, Reply: r})

	last := m.Conversation().LastAssistantMessage()
	if last == nil || last.Action == nil {
		t.Fatal("handoff reply has no call-to-action")
	}
	if last.Action.Label != "View briefing" {
		t.Errorf("action label = %q, want View briefing", last.Action.Label)
	}
}

func TestConnectionErrorRaisesModalMsg(t *testing.T) {
	m := newTestModel(t)
	tag := backend.RequestTag{SessionID: m.SessionID(), Seq: 1}
	m.pending = true
	m.pendingTag = tag

	cmd := m.Update(ReplyMsg{Tag: tag, Err: backend.ErrConnection})
	if cmd == nil {
		t.Fatal("connection failure produced no command")
	}
	if _, ok := cmd().(ConnectionFailedMsg); !ok {
		t.Errorf("command produced %T, want ConnectionFailedMsg", cmd())
	}
}

func TestSessionLoadFailureLeavesStateUntouched(t *testing.T) {
	m := newTestModel(t)
	m.Conversation().AddUserMessage("already here")
	before := m.SessionID()

	cmd := m.Update(SessionLoadedMsg{
		SessionID: "other-session",
		Err:       errors.New("boom"),
	})

	if m.SessionID() != before {
		t.Error("failed load switched the active session")
	}
	if m.Conversation().MessageCount() != 1 {
		t.Error("failed load modified the message list")
	}
	if cmd == nil {
		t.Fatal("failed load produced no command")
	}
	if _, ok := cmd().(ConnectionFailedMsg); !ok {
		t.Errorf("command produced %T, want ConnectionFailedMsg", cmd())
	}
}

func TestSessionLoadSuccessInstallsHistory(t *testing.T) {
	m := newTestModel(t)

	m.Update(SessionLoadedMsg{
		SessionID: "sess-9",
		Detail: &backend.SessionDetail{
			MemoryBank: model.MemoryBank{ChiefComplaint: "back pain"},
			Messages: []*model.Message{
				model.NewUserMessage("my back hurts"),
				model.NewAssistantMessage("Since when?", "Intake Nurse", nil),
			},
		},
	})

	if m.SessionID() != "sess-9" {
		t.Errorf("active session = %q, want sess-9", m.SessionID())
	}
	if m.Conversation().MessageCount() != 2 {
		t.Errorf("message count = %d, want 2", m.Conversation().MessageCount())
	}
	if m.Conversation().Profile.ChiefComplaint != "back pain" {
		t.Error("profile not installed from session detail")
	}
}

func TestStartNewSessionResets(t *testing.T) {
	m := newTestModel(t)
	old := m.SessionID()
	m.Conversation().AddUserMessage("hello")
	m.pending = true

	m.StartNewSession()

	if m.SessionID() == old {
		t.Error("new session kept the old id")
	}
	if !m.Conversation().IsEmpty() {
		t.Error("new session kept old messages")
	}
	if m.Loading() {
		t.Error("new session kept loading state")
	}
}

func TestReplyForSupersededSessionDiscarded(t *testing.T) {
	m := newTestModel(t)
	tag := backend.RequestTag{SessionID: m.SessionID(), Seq: 1}
	m.pending = true
	m.pendingTag = tag

	// The user starts a fresh session while the reply is still in flight.
	m.StartNewSession()

	r := reply("late answer for the old session")
	r.MemoryBank.ChiefComplaint = "stale complaint"
	m.Update(ReplyMsg{Tag: tag, Reply: r})

	if !m.Conversation().IsEmpty() {
		t.Errorf("late reply appended into the new session: %q",
			m.Conversation().LastMessage().Content)
	}
	if m.Conversation().Profile.ChiefComplaint != "" {
		t.Errorf("late reply replaced the new session's memory bank: %q",
			m.Conversation().Profile.ChiefComplaint)
	}
}

func TestReplyDiscardedAfterSwitchingToLoadedSession(t *testing.T) {
	m := newTestModel(t)
	tag := backend.RequestTag{SessionID: m.SessionID(), Seq: 1}
	m.pending = true
	m.pendingTag = tag

	// A different session finishes loading before the reply lands.
	m.Update(SessionLoadedMsg{
		SessionID: "sess-7",
		Detail: &backend.SessionDetail{
			MemoryBank: model.MemoryBank{ChiefComplaint: "back pain"},
			Messages: []*model.Message{
				model.NewUserMessage("my back hurts"),
			},
		},
	})

	m.Update(ReplyMsg{Tag: tag, Reply: reply("late answer")})

	if m.Conversation().MessageCount() != 1 {
		t.Errorf("message count = %d, want 1", m.Conversation().MessageCount())
	}
	if m.Conversation().Profile.ChiefComplaint != "back pain" {
		t.Errorf("loaded session's memory bank overwritten: %q",
			m.Conversation().Profile.ChiefComplaint)
	}
}
