// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package briefing

import (
	"fmt"
	"strings"

	"github.com/prepped-health/prepped-tui/internal/model"
)

// =============================================================================
// PLAIN TEXT EXPORTER
// =============================================================================

// TextExporter renders a briefing to plain text for pipes and printers
// that want no markup at all.
type TextExporter struct {
	options *Options
}

// NewTextExporter creates a plain text exporter.
func NewTextExporter(opts *Options) *TextExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextExporter{options: opts}
}

// FileExtension returns ".txt".
func (e *TextExporter) FileExtension() string { return ".txt" }

// Export renders the document.
func (e *TextExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var sb strings.Builder
	rule := strings.Repeat("=", len(doc.Title))

	sb.WriteString(doc.Title + "\n" + rule + "\n")
	sb.WriteString("Prepared " + doc.CreatedAt.Format("January 2, 2006") + "\n\n")

	writeTextSection(&sb, "CHIEF COMPLAINT", []string{orPlaceholder(doc.Profile.ChiefComplaint)})

	var symptoms []string
	for _, sym := range doc.Profile.SymptomTimeline {
		line := sym.Description
		if sym.Duration != "" {
			line += " (" + sym.Duration + ")"
		}
		symptoms = append(symptoms, line)
	}
	if len(symptoms) == 0 {
		symptoms = []string{model.PlaceholderNone}
	}
	writeTextSection(&sb, "SYMPTOMS", symptoms)

	writeTextSection(&sb, "CURRENT MEDICATIONS", doc.Profile.MedicationsOrPlaceholder())
	writeTextSection(&sb, "FAMILY HISTORY", doc.Profile.FamilyHistoryOrPlaceholder())

	if len(doc.Profile.SuggestedQuestions) > 0 {
		sb.WriteString("QUESTIONS TO ASK YOUR CLINICIAN\n")
		for i, q := range doc.Profile.SuggestedQuestions {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, q))
		}
		sb.WriteString("\n")
	}

	if e.options.IncludeTranscript && len(doc.Transcript) > 0 {
		sb.WriteString("INTERVIEW TRANSCRIPT\n")
		for _, entry := range doc.Transcript {
			sb.WriteString("  " + entry.Speaker + ": " + entry.Content + "\n")
		}
	}

	return []byte(sb.String()), nil
}

func writeTextSection(sb *strings.Builder, header string, items []string) {
	sb.WriteString(header + "\n")
	for _, item := range items {
		sb.WriteString("  - " + item + "\n")
	}
	sb.WriteString("\n")
}
