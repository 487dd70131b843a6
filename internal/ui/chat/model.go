// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"

	"github.com/prepped-health/prepped-tui/internal/backend"
	"github.com/prepped-health/prepped-tui/internal/model"
	"github.com/prepped-health/prepped-tui/internal/ui/components"
	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

// sendTimeout bounds one chat round trip. Intake replies can be slow when
// the agent does profile extraction, so this is generous.
const sendTimeout = 60 * time.Second

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the conversation surface.
type Model struct {
	theme *styles.Theme
	keys  KeyMap

	client *backend.Client
	userID string

	// Conversation state. The message list is append-only for the life of
	// a session view; the memory bank is wholly replaced on each reply.
	conversation *model.Conversation

	// Widgets
	viewport viewport.Model
	textarea textarea.Model
	spin     components.Spinner
	renderer *glamour.TermRenderer

	markdownOn bool

	width  int
	height int

	// In-flight request tracking. pendingTag identifies the newest
	// outstanding send; replies with any other tag are stale and dropped.
	pending    bool
	pendingTag backend.RequestTag

	// stopped short-circuits local receipt of the current pending reply.
	// The request itself is not cancelled.
	stopped bool

	// Attachment entry state.
	attach attachState

	// expandedTraces toggles trace detail per message id.
	expandedTraces map[string]bool

	// inlineError shows transient, non-blocking failures under the input.
	inlineError string
}

// New creates a chat surface for a user.
func New(theme *styles.Theme, client *backend.Client, userID string, markdown bool) *Model {
	ta := textarea.New()
	ta.Placeholder = "Describe your symptoms..."
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	vp := viewport.New(0, 0)

	return &Model{
		theme:          theme,
		keys:           DefaultKeyMap(),
		client:         client,
		userID:         userID,
		conversation:   model.NewConversation(uuid.NewString()),
		viewport:       vp,
		textarea:       ta,
		spin:           components.NewSpinner(theme),
		markdownOn:     markdown,
		expandedTraces: make(map[string]bool),
	}
}

// SessionID returns the active session id.
func (m *Model) SessionID() string {
	return m.conversation.SessionID
}

// Conversation exposes the active conversation for the profile modal and
// the briefing builder.
func (m *Model) Conversation() *model.Conversation {
	return m.conversation
}

// Loading reports whether a request is outstanding.
func (m *Model) Loading() bool {
	return m.pending
}

// LoadingPhase returns what the surface is waiting for.
func (m *Model) LoadingPhase() components.LoadingPhase {
	return m.spin.Phase()
}

// SetSize lays the surface out for the given area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := m.textarea.Height() + 2
	m.viewport.Width = width
	m.viewport.Height = height - inputHeight - 1
	m.textarea.SetWidth(width - 4)

	if m.markdownOn {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(min(width-10, 100)),
		)
		if err == nil {
			m.renderer = renderer
		}
	}

	m.refreshViewport()
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// StartNewSession resets the surface to a fresh, empty session. The
// pending tag is invalidated so an in-flight reply for the old session
// cannot land in the new one.
func (m *Model) StartNewSession() {
	m.conversation = model.NewConversation(uuid.NewString())
	m.pending = false
	m.pendingTag = backend.RequestTag{}
	m.stopped = false
	m.spin.Stop()
	m.inlineError = ""
	m.expandedTraces = make(map[string]bool)
	m.refreshViewport()
}

// OpenSession switches to an existing session and fetches its history.
// The local state is only replaced when the fetch succeeds.
func (m *Model) OpenSession(sessionID string) tea.Cmd {
	client := m.client
	load := m.spin.Start(components.PhaseLoadingSession)
	m.pending = true

	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		detail, err := client.GetSession(ctx, sessionID)
		return SessionLoadedMsg{SessionID: sessionID, Detail: detail, Err: err}
	}
	return tea.Batch(load, fetch)
}

// applyLoadedSession installs a fetched session into the surface and
// invalidates any request still in flight for the previous session.
func (m *Model) applyLoadedSession(msg SessionLoadedMsg) {
	conv := model.NewConversation(msg.SessionID)
	conv.Messages = append(conv.Messages, msg.Detail.Messages...)
	conv.Profile = msg.Detail.MemoryBank
	m.conversation = conv
	m.pendingTag = backend.RequestTag{}
	m.expandedTraces = make(map[string]bool)
	m.refreshViewport()
	m.viewport.GotoBottom()
}
