// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package briefing

import (
	"time"

	"github.com/prepped-health/prepped-tui/internal/model"
)

// =============================================================================
// BRIEFING DOCUMENT
// =============================================================================

// TranscriptEntry is one interview turn in the briefing.
type TranscriptEntry struct {
	Speaker   string
	Content   string
	Timestamp time.Time
}

// Document is the renderable briefing: everything a clinician should see
// before the visit.
type Document struct {
	SessionID string
	Title     string
	CreatedAt time.Time

	Profile    model.MemoryBank
	Transcript []TranscriptEntry
}

// Build assembles a briefing document from a conversation. System notices
// and empty messages are left out of the transcript.
func Build(conv *model.Conversation) *Document {
	doc := &Document{
		SessionID: conv.SessionID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		Profile:   conv.Profile,
	}
	if doc.Title == "" {
		doc.Title = "Pre-visit briefing"
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	for _, msg := range conv.Messages {
		if msg.Role == model.RoleSystem || msg.IsEmpty() {
			continue
		}
		speaker := "Patient"
		if msg.Role == model.RoleAssistant {
			speaker = msg.AgentName
			if speaker == "" {
				speaker = model.RoleAssistant.DisplayName()
			}
		}
		content := msg.Content
		if msg.Type == model.TypeAudio {
			content = "[voice note]"
		}
		doc.Transcript = append(doc.Transcript, TranscriptEntry{
			Speaker:   speaker,
			Content:   content,
			Timestamp: msg.Timestamp,
		})
	}

	return doc
}

// HasProfile reports whether the agent recorded anything at all.
func (d *Document) HasProfile() bool {
	return !d.Profile.IsEmpty()
}
