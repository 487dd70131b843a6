// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/prepped-health/prepped-tui/internal/backend"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ReplyMsg carries the backend's answer to one tagged send.
type ReplyMsg struct {
	Tag   backend.RequestTag
	Reply *backend.ChatReply
	Err   error
}

// SessionLoadedMsg carries the result of a session history fetch.
type SessionLoadedMsg struct {
	SessionID string
	Detail    *backend.SessionDetail
	Err       error
}

// HandoffMsg asks the app to open the briefing for the active session.
// Emitted when the user activates a handoff call-to-action.
type HandoffMsg struct {
	SessionID string
}

// ConnectionFailedMsg asks the app to raise the blocking connection-error
// modal. Detail is the underlying error text.
type ConnectionFailedMsg struct {
	Detail string
}
