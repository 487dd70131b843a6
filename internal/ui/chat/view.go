// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/prepped-health/prepped-tui/internal/model"
	"github.com/prepped-health/prepped-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat surface: viewport, loading line, input area.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.spin.Active() {
		b.WriteString(m.spin.View())
		b.WriteString("\n")
	}
	if m.inlineError != "" {
		b.WriteString(m.theme.FormError.Render(m.inlineError))
		b.WriteString("\n")
	}
	if m.attach.staged() {
		b.WriteString(m.theme.AttachmentChip.Render(m.attachmentLabel()))
		b.WriteString("\n")
	}

	b.WriteString(m.theme.InputContainer.Width(m.width - 2).Render(m.textarea.View()))
	return b.String()
}

// attachmentLabel describes what is staged for the next send.
func (m *Model) attachmentLabel() string {
	if m.attach.imagePath != "" {
		return "image attached"
	}
	return "voice note attached"
}

// refreshViewport rebuilds the viewport content from the conversation.
func (m *Model) refreshViewport() {
	if m.viewport.Width <= 0 {
		return
	}

	var parts []string
	for _, msg := range m.conversation.Messages {
		parts = append(parts, m.renderMessage(msg))
	}
	if len(parts) == 0 {
		parts = append(parts, m.emptyState())
	}
	m.viewport.SetContent(strings.Join(parts, "\n\n"))
}

// renderMessage renders one message bubble with its metadata lines.
func (m *Model) renderMessage(msg *model.Message) string {
	bubbleWidth := m.viewport.Width * 3 / 4
	if bubbleWidth < 20 {
		bubbleWidth = m.viewport.Width - 4
	}

	switch msg.Role {
	case model.RoleUser:
		content := msg.Content
		switch msg.Type {
		case model.TypeImage:
			content = strings.TrimSpace("[image] " + msg.Content)
		case model.TypeAudio:
			content = "[voice note]"
		}
		bubble := m.theme.UserBubble.MaxWidth(bubbleWidth).Render(content)
		time := m.theme.MessageTime.Render(msg.Timestamp.Format("15:04"))
		return lipgloss.JoinVertical(lipgloss.Right, bubble, time)

	case model.RoleAssistant:
		var lines []string
		name := msg.AgentName
		if name == "" {
			name = model.RoleAssistant.DisplayName()
		}
		lines = append(lines, m.theme.AgentName.Render(name))

		content := msg.Content
		if m.renderer != nil {
			if rendered, err := m.renderer.Render(content); err == nil {
				content = strings.TrimSpace(rendered)
			}
		}
		lines = append(lines, m.theme.AssistantBubble.MaxWidth(bubbleWidth).Render(content))

		if msg.HasTrace() {
			lines = append(lines, components.RenderTrace(
				m.theme, msg.Trace, m.expandedTraces[msg.ID], m.viewport.Width))
		}
		if msg.Action != nil {
			lines = append(lines, m.theme.ButtonActive.Render(msg.Action.Label)+
				m.theme.ShortcutDesc.Render("  ctrl+o opens"))
		}
		lines = append(lines, m.theme.MessageTime.Render(msg.Timestamp.Format("15:04")))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)

	default:
		return m.theme.SystemBubble.MaxWidth(bubbleWidth).Render(msg.Content)
	}
}

// emptyState greets the user on a fresh session.
func (m *Model) emptyState() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.HeaderTitle.Render("prepped"),
		m.theme.HeaderSubtitle.Render("Tell the intake nurse what's bothering you."),
		"",
		m.theme.ShortcutDesc.Render("enter sends - ctrl+g attaches an image - ctrl+a attaches a voice note"),
	)
}
