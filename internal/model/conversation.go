// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// MaxMessages is the maximum number of messages kept in the in-memory
// conversation view. When exceeded, the oldest messages are pruned to
// prevent unbounded growth; the backend still holds the full transcript.
const MaxMessages = 1000

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the client-side view of one intake session: the
// append-only message list plus the latest medical profile snapshot.
// Both are always sourced from the most recent backend response for
// SessionID; stale responses for a superseded session must be discarded
// before they reach this type.
type Conversation struct {
	// Identity
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages (append-only for the lifetime of the session view)
	Messages []*Message `json:"messages"`

	// Latest medical profile snapshot, wholly replaced on every response.
	Profile MemoryBank `json:"profile"`
}

// NewConversation creates an empty conversation view for a session.
func NewConversation(sessionID string) *Conversation {
	return &Conversation{
		SessionID: sessionID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the conversation.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.pruneOldMessages()
}

// AddUserMessage creates and appends a user text message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantMessage creates and appends an assistant reply.
func (c *Conversation) AddAssistantMessage(content, agentName string, trace []ExecutionStep) *Message {
	msg := NewAssistantMessage(content, agentName, trace)
	c.AddMessage(msg)
	return msg
}

// AddSystemMessage creates and appends a system notice.
func (c *Conversation) AddSystemMessage(content string) *Message {
	msg := NewSystemMessage(content)
	c.AddMessage(msg)
	return msg
}

// ReplaceProfile swaps in a new medical profile snapshot.
func (c *Conversation) ReplaceProfile(mb MemoryBank) {
	c.Profile = mb
	c.UpdatedAt = time.Now()
}

// LastMessage returns the most recent message, or nil when empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// LastAssistantMessage returns the most recent assistant message, or nil.
func (c *Conversation) LastAssistantMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i]
		}
	}
	return nil
}

// MessageCount returns the number of messages in the view.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true when no messages have been exchanged.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Clear drops all messages and the profile snapshot. Used when the view
// switches to a different session id.
func (c *Conversation) Clear() {
	c.Messages = make([]*Message, 0)
	c.Profile = MemoryBank{}
	c.UpdatedAt = time.Now()
}

// pruneOldMessages drops the oldest messages beyond MaxMessages.
func (c *Conversation) pruneOldMessages() {
	if len(c.Messages) <= MaxMessages {
		return
	}
	excess := len(c.Messages) - MaxMessages
	c.Messages = append(c.Messages[:0:0], c.Messages[excess:]...)
}
