// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package briefing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prepped-health/prepped-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a briefing document to one output format.
type Exporter interface {
	// Export renders the document and returns the content.
	Export(doc *Document) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g. ".md").
	FileExtension() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written. Default: current directory.
	OutputDir string

	// IncludeTranscript appends the full interview transcript.
	IncludeTranscript bool
}

// DefaultOptions returns the default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeTranscript: true,
	}
}

// ForFormat returns the exporter for a format name.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "markdown", "md":
		return NewMarkdownExporter(opts), nil
	case "html":
		return NewHTMLExporter(opts), nil
	case "text", "txt":
		return NewTextExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown briefing format: %s", format)
	}
}

// ExportToFile renders the document and writes it next to the session id.
// Returns the output path.
func ExportToFile(doc *Document, format string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	exporter, err := ForFormat(format, opts)
	if err != nil {
		return "", err
	}

	content, err := exporter.Export(doc)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("briefing-%s-%s%s",
		shortID(doc.SessionID),
		time.Now().Format("2006-01-02"),
		exporter.FileExtension())
	path := filepath.Join(opts.OutputDir, name)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write briefing: %w", err)
	}
	return path, nil
}

// shortID keeps filenames readable for uuid session ids.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "session"
	}
	return id
}
