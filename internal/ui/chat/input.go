// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/prepped-health/prepped-tui/internal/backend"
	"github.com/prepped-health/prepped-tui/internal/model"
	"github.com/prepped-health/prepped-tui/internal/ui/components"
)

// maxAttachmentSize bounds attachment files read into memory.
const maxAttachmentSize = 20 * 1024 * 1024 // 20MB

// attachKind is what the user is attaching, if anything.
type attachKind int

const (
	attachNone attachKind = iota
	attachImage
	attachAudio
)

// attachState tracks attachment entry. While kind != attachNone the
// textarea collects a file path instead of a chat message.
type attachState struct {
	kind attachKind

	// Staged payloads, consumed by the next send.
	imagePath   string
	audioBase64 string
}

// staged reports whether anything is attached and ready to send.
func (a *attachState) staged() bool {
	return a.imagePath != "" || a.audioBase64 != ""
}

// =============================================================================
// ATTACHMENT ENTRY
// =============================================================================

// beginAttach switches the input into file-path entry mode.
func (m *Model) beginAttach(kind attachKind) {
	m.attach.kind = kind
	m.textarea.Reset()
	if kind == attachImage {
		m.textarea.Placeholder = "Path to image file..."
	} else {
		m.textarea.Placeholder = "Path to audio file..."
	}
}

// cancelAttach leaves file-path entry mode.
func (m *Model) cancelAttach() {
	m.attach.kind = attachNone
	m.textarea.Reset()
	m.textarea.Placeholder = "Describe your symptoms..."
}

// confirmAttach reads the entered file and stages it for the next send.
func (m *Model) confirmAttach() {
	path := strings.TrimSpace(m.textarea.Value())
	kind := m.attach.kind
	m.cancelAttach()
	if path == "" {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		m.inlineError = "Cannot read " + filepath.Base(path)
		return
	}
	if info.Size() > maxAttachmentSize {
		m.inlineError = filepath.Base(path) + " is too large to attach"
		return
	}

	switch kind {
	case attachImage:
		m.attach.imagePath = path
	case attachAudio:
		data, err := os.ReadFile(path)
		if err != nil {
			m.inlineError = "Cannot read " + filepath.Base(path)
			return
		}
		m.attach.audioBase64 = base64.StdEncoding.EncodeToString(data)
	}
	m.inlineError = ""
}

// =============================================================================
// SEND
// =============================================================================

// submit sends the typed message (plus any staged attachments) and starts
// the loading phase. No-op while a request is already outstanding.
func (m *Model) submit() tea.Cmd {
	if m.pending {
		return nil
	}

	text := strings.TrimSpace(m.textarea.Value())
	if text == "" && !m.attach.staged() {
		return nil
	}

	// Record the user's turn locally before the round trip.
	switch {
	case m.attach.imagePath != "":
		m.conversation.AddMessage(model.NewUserImageMessage(text, m.attach.imagePath))
	case m.attach.audioBase64 != "":
		m.conversation.AddMessage(model.NewUserAudioMessage(m.attach.audioBase64))
	default:
		m.conversation.AddUserMessage(text)
	}
	m.textarea.Reset()
	m.inlineError = ""
	m.refreshViewport()
	m.viewport.GotoBottom()

	phase := components.PhaseThinking
	if m.attach.audioBase64 != "" {
		phase = components.PhaseTranscribing
	}

	tag := m.client.NextTag(m.conversation.SessionID)
	m.pending = true
	m.stopped = false
	m.pendingTag = tag

	// Capture everything the goroutine needs before returning.
	client := m.client
	req := backend.SendRequest{
		SessionID: m.conversation.SessionID,
		Message:   text,
		Audio:     m.attach.audioBase64,
		UserID:    m.userID,
	}
	m.attach = attachState{}

	send := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		reply, err := client.SendMessage(ctx, req, tag)
		return ReplyMsg{Tag: tag, Reply: reply, Err: err}
	}
	return tea.Batch(m.spin.Start(phase), send)
}

// stop short-circuits local receipt of the outstanding reply. The request
// itself keeps running server-side; its answer is dropped on arrival.
func (m *Model) stop() {
	if !m.pending {
		return
	}
	m.stopped = true
	m.pending = false
	m.spin.Stop()
	m.conversation.AddSystemMessage("Stopped waiting for the reply.")
	m.refreshViewport()
	m.viewport.GotoBottom()
}
