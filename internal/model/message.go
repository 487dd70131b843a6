// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prepped-health/prepped-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Intake Nurse"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// MessageType classifies the content kind of a message.
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
	TypeAudio MessageType = "audio"
	TypeCard  MessageType = "card"
)

// StepType classifies a single step in an agent's execution trace.
type StepType string

const (
	StepThought  StepType = "thought"
	StepToolCall StepType = "tool_call"
	StepAction   StepType = "action"
	StepHandoff  StepType = "handoff"
)

// ExecutionStep is one entry in an agent's reasoning trace. Display only;
// the client never branches on trace content.
type ExecutionStep struct {
	Type    StepType `json:"type"`
	Content string   `json:"content"`
}

// CallToAction is an optional button attached to a message, used by the
// backend to point at the briefing once intake is complete.
type CallToAction struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Message represents a single message in a conversation.
// Messages are immutable once created.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string      `json:"content"`
	Type    MessageType `json:"type"`

	// Optional payloads
	ImageURL  string `json:"image_url,omitempty"`
	AudioData string `json:"audio_data,omitempty"` // base64 audio payload

	// Agent metadata (assistant messages)
	AgentName string          `json:"agent_name,omitempty"`
	Trace     []ExecutionStep `json:"trace,omitempty"`
	Action    *CallToAction   `json:"action,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   util.NormalizeNFC(content),
		Type:      TypeText,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user text message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewUserImageMessage creates a user message carrying an image reference.
func NewUserImageMessage(content, imageURL string) *Message {
	msg := NewMessage(RoleUser, content)
	msg.Type = TypeImage
	msg.ImageURL = imageURL
	return msg
}

// NewUserAudioMessage creates a user message carrying a recorded audio payload.
func NewUserAudioMessage(audioData string) *Message {
	msg := NewMessage(RoleUser, "[voice note]")
	msg.Type = TypeAudio
	msg.AudioData = audioData
	return msg
}

// NewAssistantMessage creates an assistant reply message.
func NewAssistantMessage(content, agentName string, trace []ExecutionStep) *Message {
	msg := NewMessage(RoleAssistant, content)
	msg.AgentName = agentName
	msg.Trace = trace
	return msg
}

// NewSystemMessage creates a system notice message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := m.Content
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content or payload.
func (m *Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == "" && m.ImageURL == "" && m.AudioData == ""
}

// HasTrace returns true if the message carries an execution trace.
func (m *Message) HasTrace() bool {
	return len(m.Trace) > 0
}

// IsHandoff returns true if any trace step marks an agent handoff.
func (m *Message) IsHandoff() bool {
	for _, s := range m.Trace {
		if s.Type == StepHandoff {
			return true
		}
	}
	return false
}
