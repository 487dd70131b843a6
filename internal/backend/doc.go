// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend implements the REST client for the prepped intake
// service: chat message dispatch, session listing/fetch/delete and
// voice-call initiation.
//
// The client is deliberately thin. Every operation is a single HTTP round
// trip with no local retry; any non-2xx status or network failure is
// normalized to ErrConnection and propagated to the caller. There are no
// partial results and no fallback data - when the backend is unreachable
// the caller is told so and decides what to surface.
package backend
