// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prepped-health/prepped-tui/internal/call"
	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

// =============================================================================
// CALL MODAL
// =============================================================================

// CallModal is the voice-call flow: phone entry, live status while the
// interview runs, terminal outcome. The app model owns the state machine
// and poller; this component only holds the form and renders.
type CallModal struct {
	theme *styles.Theme

	phone   textinput.Model
	machine *call.Machine
}

// NewCallModal creates the modal around a machine.
func NewCallModal(theme *styles.Theme, machine *call.Machine) CallModal {
	ti := textinput.New()
	ti.Placeholder = "+1 555 000 0000"
	ti.CharLimit = 24
	ti.Width = 24
	ti.Focus()

	return CallModal{theme: theme, phone: ti, machine: machine}
}

// Phone returns the entered phone number, trimmed.
func (m *CallModal) Phone() string {
	return strings.TrimSpace(m.phone.Value())
}

// ValidPhone reports whether the entered number is plausible: an optional
// leading +, then at least seven digits ignoring separators.
func (m *CallModal) ValidPhone() bool {
	digits := 0
	for i, r := range m.Phone() {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7
}

// Update handles key input while the form is visible.
func (m *CallModal) Update(msg tea.Msg) tea.Cmd {
	if m.machine.State() != call.StateIdle && m.machine.State() != call.StateError {
		return nil
	}
	var cmd tea.Cmd
	m.phone, cmd = m.phone.Update(msg)
	return cmd
}

// View renders the modal for the machine's current state.
func (m *CallModal) View() string {
	var lines []string
	lines = append(lines, m.theme.ModalTitle.Render("Phone interview"), "")

	switch m.machine.State() {
	case call.StateIdle:
		lines = append(lines,
			m.theme.ModalBody.Render("The intake nurse will call you and walk"),
			m.theme.ModalBody.Render("through your symptoms by voice."),
			"",
			m.theme.FormLabel.Render("Phone number"),
			m.phone.View(),
			"",
			m.theme.ModalHint.Render("enter starts the call, esc closes"),
		)

	case call.StateCalling:
		lines = append(lines,
			m.theme.CallStatusLine.Render("Placing call to "+m.Phone()+"..."),
		)

	case call.StateConnected:
		status := m.machine.CallStatus().DisplayLabel()
		lines = append(lines, m.theme.CallLive.Render(status))
		if m.machine.AgentStatus() != "" {
			lines = append(lines, m.theme.CallStatusLine.Render("Agent: "+m.machine.AgentStatus()))
		}
		if m.machine.LastMessage() != "" {
			lines = append(lines, "", m.theme.ModalBody.Render(m.machine.LastMessage()))
		}
		lines = append(lines, "", m.theme.ModalHint.Render("esc hangs up the view"))

	case call.StateCompleted:
		lines = append(lines,
			m.theme.FormSaved.Render("Interview complete"),
			m.theme.CallStatusLine.Render("Opening your briefing..."),
		)

	case call.StateError:
		lines = append(lines,
			m.theme.CallEnded.Render(m.machine.ErrorText()),
			"",
			lipgloss.JoinHorizontal(lipgloss.Top,
				m.theme.ButtonActive.Render("Retry"), "  ",
				m.theme.Button.Render("Close")),
			"",
			m.theme.ModalHint.Render("enter retries, esc closes"),
		)
	}

	return m.theme.ModalBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
