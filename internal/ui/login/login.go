// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login implements the sign-in and registration forms shown before
// the chat surface. Identity failures render inline under the form, never
// as the blocking connection-error modal.
package login

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prepped-health/prepped-tui/internal/identity"
	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

// authTimeout bounds one identity round trip.
const authTimeout = 30 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// ResultMsg carries the outcome of a sign-in or registration attempt.
type ResultMsg struct {
	Account *identity.Account
	Err     error
}

// =============================================================================
// MODEL
// =============================================================================

// mode switches the form between sign-in and registration.
type mode int

const (
	modeSignIn mode = iota
	modeRegister
)

// field indexes the focusable inputs, top to bottom.
type field int

const (
	fieldName field = iota
	fieldEmail
	fieldPassword
)

// Model is the auth form.
type Model struct {
	theme  *styles.Theme
	client *identity.Client

	mode  mode
	focus field

	name     textinput.Model
	email    textinput.Model
	password textinput.Model

	submitting bool
	formError  string

	Width  int
	Height int
}

// New creates the form in sign-in mode.
func New(theme *styles.Theme, client *identity.Client) *Model {
	name := textinput.New()
	name.Placeholder = "Full name"
	name.CharLimit = 128
	name.Width = 36

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 128
	email.Width = 36
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 128
	password.Width = 36
	password.EchoMode = textinput.EchoPassword

	return &Model{
		theme:    theme,
		client:   client,
		focus:    fieldEmail,
		name:     name,
		email:    email,
		password: password,
	}
}

// Submitting reports whether an auth request is outstanding.
func (m *Model) Submitting() bool {
	return m.submitting
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles one message for the form.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ResultMsg:
		m.submitting = false
		if msg.Err != nil {
			// Inline, with the identity service's own wording.
			m.formError = msg.Err.Error()
		}
		return nil

	case tea.KeyMsg:
		if m.submitting {
			return nil
		}
		switch msg.String() {
		case "tab", "down":
			m.cycleFocus(1)
			return nil
		case "shift+tab", "up":
			m.cycleFocus(-1)
			return nil
		case "ctrl+r":
			m.toggleMode()
			return nil
		case "enter":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldName:
		m.name, cmd = m.name.Update(msg)
	case fieldEmail:
		m.email, cmd = m.email.Update(msg)
	case fieldPassword:
		m.password, cmd = m.password.Update(msg)
	}
	return cmd
}

// toggleMode switches between sign-in and registration.
func (m *Model) toggleMode() {
	if m.mode == modeSignIn {
		m.mode = modeRegister
		m.setFocus(fieldName)
	} else {
		m.mode = modeSignIn
		m.setFocus(fieldEmail)
	}
	m.formError = ""
}

// cycleFocus moves focus through the visible fields.
func (m *Model) cycleFocus(dir int) {
	first := fieldEmail
	if m.mode == modeRegister {
		first = fieldName
	}
	next := m.focus + field(dir)
	if next < first {
		next = fieldPassword
	}
	if next > fieldPassword {
		next = first
	}
	m.setFocus(next)
}

func (m *Model) setFocus(f field) {
	m.focus = f
	m.name.Blur()
	m.email.Blur()
	m.password.Blur()
	switch f {
	case fieldName:
		m.name.Focus()
	case fieldEmail:
		m.email.Focus()
	case fieldPassword:
		m.password.Focus()
	}
}

// submit validates the form and starts the auth request.
func (m *Model) submit() tea.Cmd {
	name := strings.TrimSpace(m.name.Value())
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()

	if email == "" || !strings.Contains(email, "@") {
		m.formError = "Enter a valid email address."
		return nil
	}
	if len(password) < 8 {
		m.formError = "Password must be at least 8 characters."
		return nil
	}
	if m.mode == modeRegister && name == "" {
		m.formError = "Enter your name."
		return nil
	}

	m.formError = ""
	m.submitting = true

	client := m.client
	register := m.mode == modeRegister
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()

		var err error
		if register {
			_, err = client.CreateAccount(ctx, name, email, password)
		} else {
			_, err = client.CreateEmailSession(ctx, email, password)
		}
		if err != nil {
			return ResultMsg{Err: err}
		}

		acct, err := client.CurrentAccount(ctx)
		return ResultMsg{Account: acct, Err: err}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the centered form.
func (m *Model) View() string {
	title := "Sign in to prepped"
	action := "create an account"
	if m.mode == modeRegister {
		title = "Create your account"
		action = "sign in instead"
	}

	lines := []string{
		m.theme.ModalTitle.Render(title),
		"",
	}
	if m.mode == modeRegister {
		lines = append(lines, m.name.View())
	}
	lines = append(lines, m.email.View(), m.password.View(), "")

	switch {
	case m.submitting:
		lines = append(lines, m.theme.ModalHint.Render("Signing in..."))
	case m.formError != "":
		lines = append(lines, m.theme.FormError.Render(m.formError))
	default:
		lines = append(lines, m.theme.ModalHint.Render("enter submits, ctrl+r "+action))
	}

	box := m.theme.ModalBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	if m.Width > 0 && m.Height > 0 {
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
