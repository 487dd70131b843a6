// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/prepped-health/prepped-tui/internal/model"
	"github.com/prepped-health/prepped-tui/internal/ui/styles"
	"github.com/prepped-health/prepped-tui/internal/util"
)

// =============================================================================
// AGENT TRACE VIEW
// =============================================================================

// stepPrefixes label each trace step kind.
var stepPrefixes = map[model.StepType]string{
	model.StepThought:  "thought",
	model.StepToolCall: "tool",
	model.StepAction:   "action",
	model.StepHandoff:  "handoff",
}

// RenderTrace renders an execution trace beneath an assistant message.
// Collapsed mode shows only a summary line; expanded shows every step.
func RenderTrace(theme *styles.Theme, trace []model.ExecutionStep, expanded bool, width int) string {
	if len(trace) == 0 {
		return ""
	}

	if !expanded {
		label := "1 step"
		if len(trace) > 1 {
			label = strconv.Itoa(len(trace)) + " steps"
		}
		return theme.TraceHeader.Render("[+] trace (" + label + ") - ctrl+r expands")
	}

	var b strings.Builder
	b.WriteString(theme.TraceHeader.Render("[-] trace"))
	b.WriteString("\n")
	for _, step := range trace {
		prefix, ok := stepPrefixes[step.Type]
		if !ok {
			prefix = string(step.Type)
		}
		content := util.TruncateWidth(step.Content, width-len(prefix)-6)
		b.WriteString(theme.TraceStep.Render(theme.TraceKind.Render(prefix+":") + " " + content))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
