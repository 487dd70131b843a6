// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package call

import (
	"testing"

	"github.com/prepped-health/prepped-tui/internal/model"
)

func TestMachineHappyPath(t *testing.T) {
	m := NewMachine()
	if m.State() != StateIdle {
		t.Fatalf("new machine state = %s, want idle", m.State())
	}

	if err := m.Submit(); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if m.State() != StateCalling {
		t.Errorf("state after Submit = %s, want calling", m.State())
	}

	if err := m.Connected(); err != nil {
		t.Fatalf("Connected() error = %v", err)
	}
	m.Observe(model.CallRinging, "interviewing", "Hello, this is your intake nurse")
	if m.CallStatus() != model.CallRinging {
		t.Errorf("CallStatus() = %q, want ringing", m.CallStatus())
	}
	if m.LastMessage() == "" {
		t.Error("LastMessage() empty after Observe")
	}

	if err := m.Complete(); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if m.State() != StateCompleted {
		t.Errorf("state after Complete = %s, want completed", m.State())
	}
}

func TestMachineRejectAndRetry(t *testing.T) {
	m := NewMachine()
	if err := m.Submit(); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := m.Fail("Invalid phone number"); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if m.State() != StateError {
		t.Fatalf("state after Fail = %s, want error", m.State())
	}
	if m.ErrorText() != "Invalid phone number" {
		t.Errorf("ErrorText() = %q", m.ErrorText())
	}

	// Retry goes straight back to calling and clears the failure.
	if err := m.Submit(); err != nil {
		t.Fatalf("Submit() retry error = %v", err)
	}
	if m.State() != StateCalling {
		t.Errorf("state after retry = %s, want calling", m.State())
	}
	if m.ErrorText() != "" {
		t.Errorf("ErrorText() after retry = %q, want empty", m.ErrorText())
	}
}

func TestMachineInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		run  func(m *Machine) error
	}{
		{"connect from idle", func(m *Machine) error { return m.Connected() }},
		{"complete from idle", func(m *Machine) error { return m.Complete() }},
		{"fail from idle", func(m *Machine) error { return m.Fail("x") }},
		{"submit while connected", func(m *Machine) error {
			m.Submit()
			m.Connected()
			return m.Submit()
		}},
		{"complete twice", func(m *Machine) error {
			m.Submit()
			m.Connected()
			m.Complete()
			return m.Complete()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(NewMachine()); err == nil {
				t.Error("expected transition error, got nil")
			}
		})
	}
}

func TestMachineObserveIgnoredInTerminalState(t *testing.T) {
	m := NewMachine()
	m.Submit()
	m.Connected()
	m.Observe(model.CallInProgress, "interviewing", "first")
	m.Complete()

	// A late tick must not touch a terminal state.
	m.Observe(model.CallRinging, "stale", "late")
	if m.CallStatus() != model.CallInProgress {
		t.Errorf("CallStatus() = %q after terminal Observe, want in-progress", m.CallStatus())
	}
	if m.LastMessage() != "first" {
		t.Errorf("LastMessage() = %q after terminal Observe, want first", m.LastMessage())
	}
}

func TestMachineReset(t *testing.T) {
	m := NewMachine()
	m.Submit()
	m.Fail("busy")
	m.Reset()

	if m.State() != StateIdle {
		t.Errorf("state after Reset = %s, want idle", m.State())
	}
	if m.ErrorText() != "" {
		t.Errorf("ErrorText() after Reset = %q, want empty", m.ErrorText())
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateIdle, StateCalling, StateConnected} {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true, want false", s)
		}
	}
	for _, s := range []State{StateCompleted, StateError} {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
	}
}
