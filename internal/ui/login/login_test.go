// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"strings"
	"testing"

	"github.com/prepped-health/prepped-tui/internal/identity"
	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

func newTestForm(t *testing.T) *Model {
	t.Helper()
	client := identity.New("https://cloud.example.com/v1", "proj", t.TempDir())
	return New(styles.NewTheme(), client)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  string
	}{
		{"empty email", "", "longenough", "Enter a valid email address."},
		{"malformed email", "nobody", "longenough", "Enter a valid email address."},
		{"short password", "a@b.com", "short", "Password must be at least 8 characters."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestForm(t)
			m.email.SetValue(tt.email)
			m.password.SetValue(tt.password)

			if cmd := m.submit(); cmd != nil {
				t.Error("invalid form produced a command")
			}
			if m.formError != tt.wantErr {
				t.Errorf("formError = %q, want %q", m.formError, tt.wantErr)
			}
			if m.Submitting() {
				t.Error("invalid form entered submitting state")
			}
		})
	}
}

func TestRegisterRequiresName(t *testing.T) {
	m := newTestForm(t)
	m.toggleMode()
	m.email.SetValue("a@b.com")
	m.password.SetValue("longenough")

	if cmd := m.submit(); cmd != nil {
		t.Error("register without name produced a command")
	}
	if m.formError != "Enter your name." {
		t.Errorf("formError = %q", m.formError)
	}
}

func TestIdentityErrorShownInline(t *testing.T) {
	m := newTestForm(t)
	m.submitting = true

	m.Update(ResultMsg{Err: &identity.APIError{
		Status:  401,
		Message: "Invalid credentials. Please check the email and password.",
	}})

	if m.Submitting() {
		t.Error("still submitting after result")
	}
	if !strings.Contains(m.View(), "Invalid credentials") {
		t.Error("identity error not rendered inline")
	}
}

func TestToggleModeSwitchesForm(t *testing.T) {
	m := newTestForm(t)
	if strings.Contains(m.View(), "Create your account") {
		t.Fatal("form starts in register mode")
	}

	m.toggleMode()
	if !strings.Contains(m.View(), "Create your account") {
		t.Error("toggle did not switch to register mode")
	}

	m.toggleMode()
	if !strings.Contains(m.View(), "Sign in to prepped") {
		t.Error("toggle did not switch back to sign-in mode")
	}
}
