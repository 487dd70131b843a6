// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package briefing

import (
	"testing"

	"github.com/prepped-health/prepped-tui/internal/model"
)

func sampleConversation() *model.Conversation {
	conv := model.NewConversation("abc12345-6789-dead-beef-000000000000")
	conv.Title = "Knee pain intake"
	conv.AddUserMessage("My knee has been hurting for two weeks.")
	conv.AddAssistantMessage("How would you rate the pain?", "Maya", nil)
	conv.AddSystemMessage("Stopped waiting for the reply.")
	conv.ReplaceProfile(model.MemoryBank{
		ChiefComplaint: "Left knee pain",
		SymptomTimeline: []model.Symptom{
			{Description: "Knee pain", Duration: "2 weeks", Severity: "6/10"},
		},
		CurrentMedications: []string{"Ibuprofen 400mg"},
		SuggestedQuestions: []string{"Could this be a meniscus tear?"},
	})
	return conv
}

func TestBuildSkipsSystemMessages(t *testing.T) {
	doc := Build(sampleConversation())

	if len(doc.Transcript) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(doc.Transcript))
	}
	for _, entry := range doc.Transcript {
		if entry.Content == "Stopped waiting for the reply." {
			t.Error("system notice leaked into transcript")
		}
	}
	if doc.Transcript[0].Speaker != "Patient" {
		t.Errorf("first speaker = %q, want Patient", doc.Transcript[0].Speaker)
	}
	if doc.Transcript[1].Speaker != "Maya" {
		t.Errorf("second speaker = %q, want Maya", doc.Transcript[1].Speaker)
	}
}

func TestBuildDefaultsTitle(t *testing.T) {
	conv := model.NewConversation("s1")
	doc := Build(conv)

	if doc.Title != "Pre-visit briefing" {
		t.Errorf("title = %q, want default", doc.Title)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("created at should never be zero")
	}
}

func TestBuildAudioMessagesUsePlaceholder(t *testing.T) {
	conv := model.NewConversation("s1")
	conv.AddMessage(model.NewUserAudioMessage("ZmFrZSBhdWRpbw=="))
	doc := Build(conv)

	if len(doc.Transcript) != 1 {
		t.Fatalf("transcript length = %d, want 1", len(doc.Transcript))
	}
	if doc.Transcript[0].Content != "[voice note]" {
		t.Errorf("content = %q, want [voice note]", doc.Transcript[0].Content)
	}
}

func TestBuildFallsBackToAssistantDisplayName(t *testing.T) {
	conv := model.NewConversation("s1")
	conv.AddAssistantMessage("Hello.", "", nil)
	doc := Build(conv)

	if got := doc.Transcript[0].Speaker; got != model.RoleAssistant.DisplayName() {
		t.Errorf("speaker = %q, want %q", got, model.RoleAssistant.DisplayName())
	}
}

func TestHasProfile(t *testing.T) {
	empty := Build(model.NewConversation("s1"))
	if empty.HasProfile() {
		t.Error("empty profile reported as present")
	}
	full := Build(sampleConversation())
	if !full.HasProfile() {
		t.Error("recorded profile reported as absent")
	}
}
