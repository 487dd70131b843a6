// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package call implements the voice-call state machine and the bounded
// status poller behind the call modal.
//
// The machine itself is pure and synchronous: idle → calling → connected →
// {completed | error}, with error → calling on retry. The poller runs in
// its own goroutine, clocks itself with a rate limiter, and reports each
// observation through a send callback. It stops on the first terminal
// telephony status, on context cancellation, or after the attempt bound,
// so a stuck "ringing" call can never poll forever.
package call
