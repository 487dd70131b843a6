// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package call

import (
	"fmt"

	"github.com/prepped-health/prepped-tui/internal/model"
)

// =============================================================================
// STATE MACHINE
// =============================================================================

// State is the call modal's lifecycle state.
type State int

const (
	// StateIdle shows the phone-number entry form.
	StateIdle State = iota

	// StateCalling means the initiate request is in flight.
	StateCalling

	// StateConnected means the backend accepted the call and polling is live.
	StateConnected

	// StateCompleted means the interview finished; the briefing is next.
	StateCompleted

	// StateError is terminal for this attempt; retry returns to calling.
	StateError
)

// String returns the state name for logs and tests.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCalling:
		return "calling"
	case StateConnected:
		return "connected"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal returns true when no further polling may happen in this state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateError
}

// Machine tracks one call attempt. It is not safe for concurrent use; the
// Bubble Tea update loop is its only writer.
type Machine struct {
	state State

	// errText holds the inline failure message when state == StateError.
	errText string

	// Last observation from the poller, for the modal's status line.
	callStatus  model.CallStatus
	agentStatus string
	lastMessage string
}

// NewMachine returns a machine in the idle state.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// ErrorText returns the inline failure message, if any.
func (m *Machine) ErrorText() string { return m.errText }

// CallStatus returns the last telephony status the poller observed.
func (m *Machine) CallStatus() model.CallStatus { return m.callStatus }

// AgentStatus returns the last agent status the poller observed.
func (m *Machine) AgentStatus() string { return m.agentStatus }

// LastMessage returns the latest interview utterance the poller observed.
func (m *Machine) LastMessage() string { return m.lastMessage }

// =============================================================================
// TRANSITIONS
// =============================================================================

// Submit moves to calling. Valid from idle, and from error as a retry.
func (m *Machine) Submit() error {
	if m.state != StateIdle && m.state != StateError {
		return fmt.Errorf("cannot submit a call from state %s", m.state)
	}
	m.state = StateCalling
	m.errText = ""
	m.callStatus = ""
	m.agentStatus = ""
	m.lastMessage = ""
	return nil
}

// Connected records that the backend accepted the initiate request.
func (m *Machine) Connected() error {
	if m.state != StateCalling {
		return fmt.Errorf("cannot connect from state %s", m.state)
	}
	m.state = StateConnected
	return nil
}

// Fail ends the attempt with an inline message. Valid from calling (server
// rejection) and connected (terminal telephony status, timeout, network).
func (m *Machine) Fail(text string) error {
	if m.state != StateCalling && m.state != StateConnected {
		return fmt.Errorf("cannot fail from state %s", m.state)
	}
	m.state = StateError
	m.errText = text
	return nil
}

// Complete records a finished interview.
func (m *Machine) Complete() error {
	if m.state != StateConnected {
		return fmt.Errorf("cannot complete from state %s", m.state)
	}
	m.state = StateCompleted
	return nil
}

// Observe records one poll tick's view of the live call. Ignored outside
// connected so a late tick can never touch a terminal state.
func (m *Machine) Observe(status model.CallStatus, agentStatus, lastMessage string) {
	if m.state != StateConnected {
		return
	}
	m.callStatus = status
	m.agentStatus = agentStatus
	if lastMessage != "" {
		m.lastMessage = lastMessage
	}
}

// Reset returns to the idle form. Used when the modal is reopened.
func (m *Machine) Reset() {
	*m = Machine{state: StateIdle}
}
