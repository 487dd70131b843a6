// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package briefing

import (
	"fmt"
	"html"
	"strings"

	"github.com/prepped-health/prepped-tui/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter renders a briefing as a standalone printable page.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// FileExtension returns ".html".
func (e *HTMLExporter) FileExtension() string { return ".html" }

// pageStyle keeps the printed page readable without external assets.
const pageStyle = `
body { font-family: Georgia, serif; max-width: 46em; margin: 2em auto; padding: 0 1em; color: #1f2937; }
h1 { border-bottom: 2px solid #0d9488; padding-bottom: .3em; }
h2 { color: #0f766e; margin-top: 1.6em; }
.meta { color: #6b7280; font-style: italic; }
.placeholder { color: #9ca3af; font-style: italic; }
.transcript p { margin: .4em 0; }
.speaker { font-weight: bold; color: #4f46e5; }
@media print { body { margin: 0 auto; } }
`

// Export renders the document.
func (e *HTMLExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	sb.WriteString("<title>" + html.EscapeString(doc.Title) + "</title>\n")
	sb.WriteString("<style>" + pageStyle + "</style>\n")
	sb.WriteString("</head>\n<body>\n")

	sb.WriteString("<h1>" + html.EscapeString(doc.Title) + "</h1>\n")
	sb.WriteString("<p class=\"meta\">Prepared " +
		doc.CreatedAt.Format("January 2, 2006") + "</p>\n")

	sb.WriteString("<h2>Chief complaint</h2>\n")
	writeHTMLValue(&sb, doc.Profile.ChiefComplaint)

	sb.WriteString("<h2>Symptoms</h2>\n")
	if len(doc.Profile.SymptomTimeline) == 0 {
		sb.WriteString("<p class=\"placeholder\">" + model.PlaceholderNone + "</p>\n")
	} else {
		sb.WriteString("<ul>\n")
		for _, sym := range doc.Profile.SymptomTimeline {
			item := html.EscapeString(sym.Description)
			if sym.Duration != "" {
				item += " (" + html.EscapeString(sym.Duration) + ")"
			}
			if sym.Notes != "" {
				item += " &mdash; " + html.EscapeString(sym.Notes)
			}
			sb.WriteString("<li>" + item + "</li>\n")
		}
		sb.WriteString("</ul>\n")
	}

	sb.WriteString("<h2>Current medications</h2>\n")
	writeHTMLList(&sb, doc.Profile.MedicationsOrPlaceholder())

	sb.WriteString("<h2>Family history</h2>\n")
	writeHTMLList(&sb, doc.Profile.FamilyHistoryOrPlaceholder())

	if len(doc.Profile.SuggestedQuestions) > 0 {
		sb.WriteString("<h2>Questions to ask your clinician</h2>\n<ol>\n")
		for _, q := range doc.Profile.SuggestedQuestions {
			sb.WriteString("<li>" + html.EscapeString(q) + "</li>\n")
		}
		sb.WriteString("</ol>\n")
	}

	if e.options.IncludeTranscript && len(doc.Transcript) > 0 {
		sb.WriteString("<h2>Interview transcript</h2>\n<div class=\"transcript\">\n")
		for _, entry := range doc.Transcript {
			sb.WriteString("<p><span class=\"speaker\">" +
				html.EscapeString(entry.Speaker) + ":</span> " +
				html.EscapeString(entry.Content) + "</p>\n")
		}
		sb.WriteString("</div>\n")
	}

	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String()), nil
}

func writeHTMLValue(sb *strings.Builder, v string) {
	if v == "" {
		sb.WriteString("<p class=\"placeholder\">" + model.PlaceholderNone + "</p>\n")
		return
	}
	sb.WriteString("<p>" + html.EscapeString(v) + "</p>\n")
}

func writeHTMLList(sb *strings.Builder, items []string) {
	if len(items) == 1 && items[0] == model.PlaceholderNone {
		sb.WriteString("<p class=\"placeholder\">" + model.PlaceholderNone + "</p>\n")
		return
	}
	sb.WriteString("<ul>\n")
	for _, item := range items {
		sb.WriteString("<li>" + html.EscapeString(item) + "</li>\n")
	}
	sb.WriteString("</ul>\n")
}
