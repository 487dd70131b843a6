// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prepped-health/prepped-tui/internal/config"
	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

// =============================================================================
// SETTINGS MODAL
// =============================================================================

// savedDisplayTime is how long the "Saved" confirmation stays visible.
const savedDisplayTime = 2 * time.Second

// SettingsSavedExpiredMsg clears the save confirmation.
type SettingsSavedExpiredMsg struct{}

// settingsField indexes the focusable rows.
type settingsField int

const (
	fieldBackendURL settingsField = iota
	fieldTheme
	fieldMarkdown
	fieldCount
)

// Settings is the settings modal: backend URL, theme, markdown rendering.
type Settings struct {
	theme *styles.Theme

	backendURL textinput.Model
	themeName  string
	markdown   bool

	focus     settingsField
	saved     bool
	saveError string
}

// NewSettings creates the modal pre-filled from the current config.
func NewSettings(theme *styles.Theme, cfg *config.Config) Settings {
	ti := textinput.New()
	ti.Placeholder = "https://..."
	ti.SetValue(cfg.Backend.BaseURL)
	ti.CharLimit = 256
	ti.Width = 48
	ti.Focus()

	return Settings{
		theme:      theme,
		backendURL: ti,
		themeName:  cfg.UI.Theme,
		markdown:   cfg.UI.Markdown,
	}
}

// Update handles key input while the modal is open.
func (s *Settings) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SettingsSavedExpiredMsg:
		s.saved = false
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			s.setFocus((s.focus + 1) % fieldCount)
			return nil
		case "shift+tab", "up":
			s.setFocus((s.focus + fieldCount - 1) % fieldCount)
			return nil
		case " ", "left", "right":
			switch s.focus {
			case fieldTheme:
				if s.themeName == "dark" {
					s.themeName = "light"
				} else {
					s.themeName = "dark"
				}
				return nil
			case fieldMarkdown:
				s.markdown = !s.markdown
				return nil
			}
		}
	}

	if s.focus == fieldBackendURL {
		var cmd tea.Cmd
		s.backendURL, cmd = s.backendURL.Update(msg)
		return cmd
	}
	return nil
}

func (s *Settings) setFocus(f settingsField) {
	s.focus = f
	if f == fieldBackendURL {
		s.backendURL.Focus()
	} else {
		s.backendURL.Blur()
	}
}

// Save applies the form to the config and persists it. The returned command
// clears the confirmation after a short delay.
func (s *Settings) Save(cfg *config.Config) tea.Cmd {
	cfg.Backend.BaseURL = s.backendURL.Value()
	cfg.UI.Theme = s.themeName
	cfg.UI.Markdown = s.markdown

	if err := cfg.Validate(); err != nil {
		s.saveError = err.Error()
		return nil
	}
	if err := config.Save(cfg); err != nil {
		s.saveError = err.Error()
		return nil
	}

	s.saveError = ""
	s.saved = true
	return tea.Tick(savedDisplayTime, func(time.Time) tea.Msg {
		return SettingsSavedExpiredMsg{}
	})
}

// View renders the modal box.
func (s *Settings) View() string {
	focusMark := func(f settingsField) string {
		if s.focus == f {
			return "> "
		}
		return "  "
	}

	themeRow := focusMark(fieldTheme) +
		s.theme.FormLabel.Render("Theme     ") + s.themeName
	mdVal := "off"
	if s.markdown {
		mdVal = "on"
	}
	mdRow := focusMark(fieldMarkdown) +
		s.theme.FormLabel.Render("Markdown  ") + mdVal

	lines := []string{
		s.theme.ModalTitle.Render("Settings"),
		"",
		focusMark(fieldBackendURL) + s.theme.FormLabel.Render("Backend   ") + s.backendURL.View(),
		themeRow,
		mdRow,
		"",
	}

	switch {
	case s.saveError != "":
		lines = append(lines, s.theme.FormError.Render(s.saveError))
	case s.saved:
		lines = append(lines, s.theme.FormSaved.Render("Saved"))
	default:
		lines = append(lines, s.theme.ModalHint.Render("ctrl+s saves, esc closes"))
	}

	return s.theme.ModalBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
