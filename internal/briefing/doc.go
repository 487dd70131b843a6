// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package briefing builds the printable pre-visit briefing: the medical
// profile the intake agent assembled plus the interview transcript,
// rendered to Markdown, standalone HTML, or plain text.
package briefing
