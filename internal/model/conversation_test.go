// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"testing"
)

func TestConversationAppendsAndCounts(t *testing.T) {
	conv := NewConversation("sess-1")
	if !conv.IsEmpty() {
		t.Error("new conversation not empty")
	}

	conv.AddUserMessage("my knee hurts")
	conv.AddAssistantMessage("How long has it hurt?", "Maya", nil)

	if conv.MessageCount() != 2 {
		t.Fatalf("count = %d, want 2", conv.MessageCount())
	}
	if conv.LastMessage().Role != RoleAssistant {
		t.Error("last message should be the assistant reply")
	}
	if conv.LastAssistantMessage().AgentName != "Maya" {
		t.Error("agent name lost")
	}
}

func TestConversationPrunesOldMessages(t *testing.T) {
	conv := NewConversation("sess-1")
	for i := 0; i < MaxMessages+25; i++ {
		conv.AddUserMessage(fmt.Sprintf("message %d", i))
	}

	if conv.MessageCount() > MaxMessages {
		t.Fatalf("count = %d, want <= %d", conv.MessageCount(), MaxMessages)
	}
	// The newest message survives pruning.
	want := fmt.Sprintf("message %d", MaxMessages+24)
	if got := conv.LastMessage().Content; got != want {
		t.Errorf("last = %q, want %q", got, want)
	}
}

func TestReplaceProfileSwapsWholesale(t *testing.T) {
	conv := NewConversation("sess-1")
	conv.ReplaceProfile(MemoryBank{
		ChiefComplaint:     "Knee pain",
		CurrentMedications: []string{"ibuprofen"},
	})
	conv.ReplaceProfile(MemoryBank{ChiefComplaint: "Headache"})

	if conv.Profile.ChiefComplaint != "Headache" {
		t.Errorf("chief complaint = %q", conv.Profile.ChiefComplaint)
	}
	if len(conv.Profile.CurrentMedications) != 0 {
		t.Error("stale medications survived a profile replace")
	}
}

func TestClearDropsMessagesAndProfile(t *testing.T) {
	conv := NewConversation("sess-1")
	conv.AddUserMessage("hello")
	conv.ReplaceProfile(MemoryBank{ChiefComplaint: "Knee pain"})

	conv.Clear()

	if !conv.IsEmpty() {
		t.Error("messages survived Clear")
	}
	if !conv.Profile.IsEmpty() {
		t.Error("profile survived Clear")
	}
}

func TestLastAssistantMessageSkipsLaterRoles(t *testing.T) {
	conv := NewConversation("sess-1")
	if conv.LastAssistantMessage() != nil {
		t.Error("empty conversation returned an assistant message")
	}

	conv.AddAssistantMessage("first", "Maya", nil)
	conv.AddUserMessage("then me")
	conv.AddSystemMessage("then a notice")

	if got := conv.LastAssistantMessage().Content; got != "first" {
		t.Errorf("last assistant = %q", got)
	}
}

func TestMessageContentNormalized(t *testing.T) {
	// "e" + combining acute accent composes to a single rune.
	msg := NewUserMessage("café")
	if msg.Content != "café" {
		t.Errorf("content = %q, want composed form", msg.Content)
	}
}

func TestMessageIsHandoff(t *testing.T) {
	plain := NewAssistantMessage("hi", "Maya", []ExecutionStep{{Type: StepThought, Content: "x"}})
	if plain.IsHandoff() {
		t.Error("thought step flagged as handoff")
	}

	handoff := NewAssistantMessage("done", "Maya", []ExecutionStep{{Type: StepHandoff, Content: "to briefing"}})
	if !handoff.IsHandoff() {
		t.Error("handoff step not detected")
	}
}

func TestCallStatusClassification(t *testing.T) {
	tests := []struct {
		status   CallStatus
		terminal bool
		failed   bool
	}{
		{CallRinging, false, false},
		{CallInProgress, false, false},
		{CallCompleted, true, false},
		{CallBusy, true, true},
		{CallFailed, true, true},
		{CallNoAnswer, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if tt.status.Terminal() != tt.terminal {
				t.Errorf("Terminal() = %v, want %v", tt.status.Terminal(), tt.terminal)
			}
			if tt.status.Failed() != tt.failed {
				t.Errorf("Failed() = %v, want %v", tt.status.Failed(), tt.failed)
			}
		})
	}
}

func TestMemoryBankPlaceholders(t *testing.T) {
	var mb MemoryBank
	if got := mb.MedicationsOrPlaceholder(); len(got) != 1 {
		t.Errorf("medications placeholder = %v", got)
	}
	mb.CurrentMedications = []string{"aspirin"}
	if got := mb.MedicationsOrPlaceholder(); len(got) != 1 || got[0] != "aspirin" {
		t.Errorf("medications = %v", got)
	}
}
