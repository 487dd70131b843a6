// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/prepped-health/prepped-tui/internal/backend"
	"github.com/prepped-health/prepped-tui/internal/model"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles one message for the chat surface. The second return value
// is a follow-up command for the app's event loop.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		return m.handleReply(msg)

	case SessionLoadedMsg:
		return m.handleSessionLoaded(msg)

	default:
		return m.spin.Update(msg)
	}
}

// handleKey routes keyboard input.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// File-path entry mode takes over the input until confirmed/cancelled.
	if m.attach.kind != attachNone {
		switch msg.String() {
		case "enter":
			m.confirmAttach()
			return nil
		case "esc":
			m.cancelAttach()
			return nil
		}
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Stop):
		m.stop()
		return nil

	case key.Matches(msg, m.keys.ToggleTrace):
		m.toggleLastTrace()
		return nil

	case key.Matches(msg, m.keys.OpenAction):
		return m.openAction()

	case key.Matches(msg, m.keys.AttachImage):
		m.beginAttach(attachImage)
		return nil

	case key.Matches(msg, m.keys.AttachAudio):
		m.beginAttach(attachAudio)
		return nil

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown),
		key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return cmd
}

// handleReply applies (or discards) a chat response.
func (m *Model) handleReply(msg ReplyMsg) tea.Cmd {
	// Stale guard: only the newest outstanding request for the session on
	// screen may touch state. A session switch clears the pending tag, so
	// replies for a superseded session fail both checks.
	if msg.Tag != m.pendingTag || msg.Tag.SessionID != m.conversation.SessionID {
		return nil
	}

	// The stop button already wrote the outcome for this request.
	if m.stopped {
		m.stopped = false
		return nil
	}

	if !m.pending {
		return nil
	}
	m.pending = false
	m.spin.Stop()

	if msg.Err != nil {
		if errors.Is(msg.Err, backend.ErrConnection) {
			return func() tea.Msg {
				return ConnectionFailedMsg{Detail: msg.Err.Error()}
			}
		}
		m.inlineError = msg.Err.Error()
		return nil
	}

	reply := msg.Reply
	assistant := m.conversation.AddAssistantMessage(reply.Text, reply.AgentName, reply.Trace)
	if reply.IsHandoff {
		assistant.Action = &model.CallToAction{
			Label: "View briefing",
			URL:   "briefing://" + m.conversation.SessionID,
		}
	}
	m.conversation.ReplaceProfile(reply.MemoryBank)
	m.refreshViewport()
	m.viewport.GotoBottom()
	return nil
}

// handleSessionLoaded installs fetched history, or surfaces the failure
// without touching local state.
func (m *Model) handleSessionLoaded(msg SessionLoadedMsg) tea.Cmd {
	m.pending = false
	m.spin.Stop()

	if msg.Err != nil {
		return func() tea.Msg {
			return ConnectionFailedMsg{Detail: msg.Err.Error()}
		}
	}

	m.applyLoadedSession(msg)
	return nil
}

// openAction follows the newest handoff call-to-action, if any.
func (m *Model) openAction() tea.Cmd {
	last := m.conversation.LastAssistantMessage()
	if last == nil || last.Action == nil {
		return nil
	}
	sessionID := m.conversation.SessionID
	return func() tea.Msg {
		return HandoffMsg{SessionID: sessionID}
	}
}

// toggleLastTrace expands/collapses the newest assistant trace.
func (m *Model) toggleLastTrace() {
	last := m.conversation.LastAssistantMessage()
	if last == nil || !last.HasTrace() {
		return
	}
	m.expandedTraces[last.ID] = !m.expandedTraces[last.ID]
	m.refreshViewport()
}
