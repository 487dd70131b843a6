// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation surface: the message viewport,
// the input area with image/audio attachments, and the request lifecycle
// for one active intake session.
//
// The surface owns the active session id, the append-only message list and
// the memory bank. Every outbound send is tagged with the session id and a
// sequence number; replies whose tag does not match the newest outstanding
// request are discarded, so a slow response can never overwrite state that
// a newer action already owns.
package chat
