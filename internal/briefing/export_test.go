// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package briefing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prepped-health/prepped-tui/internal/model"
)

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{"markdown", ".md", false},
		{"md", ".md", false},
		{"HTML", ".html", false},
		{"text", ".txt", false},
		{"txt", ".txt", false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exp, err := ForFormat(tt.format, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ForFormat: %v", err)
			}
			if exp.FileExtension() != tt.wantExt {
				t.Errorf("extension = %q, want %q", exp.FileExtension(), tt.wantExt)
			}
		})
	}
}

func TestMarkdownExportSections(t *testing.T) {
	doc := Build(sampleConversation())
	out, err := NewMarkdownExporter(nil).Export(doc)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	content := string(out)

	for _, want := range []string{
		"# Knee pain intake",
		"## Chief complaint",
		"Left knee pain",
		"## Symptoms",
		"**Knee pain** (2 weeks) - severity: 6/10",
		"## Current medications",
		"Ibuprofen 400mg",
		"## Questions to ask your clinician",
		"1. Could this be a meniscus tear?",
		"## Interview transcript",
		"**Maya**",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownEmptyProfileUsesPlaceholders(t *testing.T) {
	doc := Build(model.NewConversation("s1"))
	out, err := NewMarkdownExporter(nil).Export(doc)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n := strings.Count(string(out), model.PlaceholderNone); n < 4 {
		t.Errorf("placeholder count = %d, want at least 4 (complaint, symptoms, meds, history)", n)
	}
}

func TestHTMLExportEscapes(t *testing.T) {
	conv := model.NewConversation("s1")
	conv.AddUserMessage("I take <b>aspirin</b> & nothing else.")
	doc := Build(conv)

	out, err := NewHTMLExporter(nil).Export(doc)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	content := string(out)

	if strings.Contains(content, "<b>aspirin</b>") {
		t.Error("user content was not escaped")
	}
	if !strings.Contains(content, "&lt;b&gt;aspirin&lt;/b&gt; &amp; nothing else.") {
		t.Error("escaped content missing")
	}
	if !strings.Contains(content, "<!DOCTYPE html>") {
		t.Error("not a standalone page")
	}
}

func TestTextExportOmitsTranscriptWhenDisabled(t *testing.T) {
	doc := Build(sampleConversation())
	exp := NewTextExporter(&Options{IncludeTranscript: false})
	out, err := exp.Export(doc)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(string(out), "INTERVIEW TRANSCRIPT") {
		t.Error("transcript rendered despite IncludeTranscript=false")
	}
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	doc := Build(sampleConversation())

	path, err := ExportToFile(doc, "markdown", &Options{OutputDir: dir, IncludeTranscript: true})
	if err != nil {
		t.Fatalf("ExportToFile: %v", err)
	}

	name := filepath.Base(path)
	if !strings.HasPrefix(name, "briefing-abc12345-") || !strings.HasSuffix(name, ".md") {
		t.Errorf("unexpected filename %q", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if !strings.Contains(string(data), "# Knee pain intake") {
		t.Error("exported file missing title")
	}
}

func TestExportNilDocument(t *testing.T) {
	for _, format := range []string{"markdown", "html", "text"} {
		exp, err := ForFormat(format, nil)
		if err != nil {
			t.Fatalf("ForFormat(%s): %v", format, err)
		}
		if _, err := exp.Export(nil); err == nil {
			t.Errorf("%s: expected error for nil document", format)
		}
	}
}
