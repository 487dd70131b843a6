// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package briefing

import (
	"fmt"
	"strings"
	"time"

	"github.com/prepped-health/prepped-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders a briefing to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// Export renders the document.
func (e *MarkdownExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var sb strings.Builder

	sb.WriteString("# " + doc.Title + "\n\n")
	sb.WriteString("Prepared " + doc.CreatedAt.Format("January 2, 2006") + "\n\n")

	sb.WriteString("## Chief complaint\n\n")
	sb.WriteString(orPlaceholder(doc.Profile.ChiefComplaint) + "\n\n")

	sb.WriteString("## Symptoms\n\n")
	if len(doc.Profile.SymptomTimeline) == 0 {
		sb.WriteString(model.PlaceholderNone + "\n\n")
	} else {
		for _, sym := range doc.Profile.SymptomTimeline {
			sb.WriteString("- **" + sym.Description + "**")
			if sym.Duration != "" {
				sb.WriteString(" (" + sym.Duration + ")")
			}
			if sym.Severity != "" {
				sb.WriteString(" - severity: " + sym.Severity)
			}
			sb.WriteString("\n")
			if sym.Notes != "" {
				sb.WriteString("  - " + sym.Notes + "\n")
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Current medications\n\n")
	writeList(&sb, doc.Profile.MedicationsOrPlaceholder())

	sb.WriteString("## Family history\n\n")
	writeList(&sb, doc.Profile.FamilyHistoryOrPlaceholder())

	if len(doc.Profile.SuggestedQuestions) > 0 {
		sb.WriteString("## Questions to ask your clinician\n\n")
		for i, q := range doc.Profile.SuggestedQuestions {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, q))
		}
		sb.WriteString("\n")
	}

	if e.options.IncludeTranscript && len(doc.Transcript) > 0 {
		sb.WriteString("---\n\n## Interview transcript\n\n")
		for _, entry := range doc.Transcript {
			sb.WriteString(fmt.Sprintf("**%s** (%s):\n\n%s\n\n",
				entry.Speaker,
				entry.Timestamp.Format(time.Kitchen),
				entry.Content))
		}
	}

	return []byte(sb.String()), nil
}

// writeList writes a bulleted markdown list.
func writeList(sb *strings.Builder, items []string) {
	for _, item := range items {
		sb.WriteString("- " + item + "\n")
	}
	sb.WriteString("\n")
}

// orPlaceholder substitutes the standard placeholder for empty fields.
func orPlaceholder(v string) string {
	if v == "" {
		return model.PlaceholderNone
	}
	return v
}
