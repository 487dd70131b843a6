// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

// =============================================================================
// LOADING SPINNER
// =============================================================================

// LoadingPhase discriminates what the app is waiting for, so the status
// line can say "Transcribing" for audio and "Thinking" for text.
type LoadingPhase int

const (
	PhaseIdle LoadingPhase = iota
	PhaseThinking
	PhaseTranscribing
	PhaseLoadingSession
	PhaseCalling
)

// Label returns the status-line text for a phase.
func (p LoadingPhase) Label() string {
	switch p {
	case PhaseThinking:
		return "Thinking"
	case PhaseTranscribing:
		return "Transcribing"
	case PhaseLoadingSession:
		return "Loading session"
	case PhaseCalling:
		return "Placing call"
	default:
		return ""
	}
}

// Spinner is the loading indicator shown while a request is outstanding.
type Spinner struct {
	spinner spinner.Model
	theme   *styles.Theme

	phase     LoadingPhase
	startTime time.Time
}

// NewSpinner creates a spinner with ASCII-safe frames.
func NewSpinner(theme *styles.Theme) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	s.Style = theme.Spinner

	return Spinner{spinner: s, theme: theme}
}

// Start activates the spinner for a phase and returns the tick command.
func (s *Spinner) Start(phase LoadingPhase) tea.Cmd {
	s.phase = phase
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.phase = PhaseIdle
}

// Active reports whether a request is outstanding.
func (s *Spinner) Active() bool {
	return s.phase != PhaseIdle
}

// Phase returns the current loading phase.
func (s *Spinner) Phase() LoadingPhase {
	return s.phase
}

// Update advances the spinner animation.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if !s.Active() {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// View renders the spinner with its phase label and elapsed time.
func (s *Spinner) View() string {
	if !s.Active() {
		return ""
	}
	elapsed := time.Since(s.startTime).Round(time.Second)
	text := s.phase.Label() + "... (" + elapsed.String() + ")"
	return s.spinner.View() + " " + s.theme.ThinkingText.Render(text)
}
