// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the prepped
// client: chat messages, conversations, the structured medical profile
// ("memory bank"), session summaries and call status values.
//
// Everything in this package is a plain serializable record. The backend
// is the system of record for all of it; the client only creates messages
// on send and maps backend responses into these shapes for display.
package model
