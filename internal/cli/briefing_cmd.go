// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prepped-health/prepped-tui/internal/backend"
	"github.com/prepped-health/prepped-tui/internal/briefing"
	"github.com/prepped-health/prepped-tui/internal/model"
	"github.com/prepped-health/prepped-tui/internal/storage"
)

const briefingTimeout = 30 * time.Second

// =============================================================================
// BRIEFING HANDLER
// =============================================================================

// HandleBriefing prints or exports the briefing document for a session.
// When the backend is unreachable the encrypted local snapshot is used,
// clearly marked as cached.
func HandleBriefing(args *ArgParser) error {
	sessionID := args.Positional(0)
	if sessionID == "" {
		return fmt.Errorf("usage: prepped briefing <session-id> [--format md|html|text] [-o DIR]")
	}

	format := args.FlagOrDefault("format", args.FlagOrDefault("f", "md"))
	opts := &briefing.Options{
		OutputDir:         args.FlagOrDefault("output", args.FlagOrDefault("o", "")),
		IncludeTranscript: !args.BoolFlag("no-transcript"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), briefingTimeout)
	defer cancel()

	detail, err := newBackendClient().GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, backend.ErrConnection) {
			return printCachedBriefing(ctx, sessionID)
		}
		return err
	}

	conv := model.NewConversation(sessionID)
	for _, msg := range detail.Messages {
		conv.AddMessage(msg)
	}
	conv.ReplaceProfile(detail.MemoryBank)
	doc := briefing.Build(conv)

	cacheBriefing(ctx, sessionID, doc)

	if opts.OutputDir != "" {
		path, err := briefing.ExportToFile(doc, format, opts)
		if err != nil {
			return err
		}
		fmt.Println(okStyle.Render("Wrote " + path))
		return nil
	}

	exporter, err := briefing.ForFormat(format, opts)
	if err != nil {
		return err
	}
	content, err := exporter.Export(doc)
	if err != nil {
		return err
	}

	if format == "md" || format == "markdown" {
		displayReply(string(content), false)
		return nil
	}
	fmt.Print(string(content))
	return nil
}

// cacheBriefing stores the markdown snapshot for offline re-print. Failures
// are ignored; the cache is a convenience, never a requirement.
func cacheBriefing(ctx context.Context, sessionID string, doc *briefing.Document) {
	content, err := briefing.NewMarkdownExporter(nil).Export(doc)
	if err != nil {
		return
	}
	store, err := openStore()
	if err != nil {
		return
	}
	defer store.Close()
	_ = store.PutBriefing(ctx, sessionID, content)
}

// printCachedBriefing falls back to the encrypted local snapshot.
func printCachedBriefing(ctx context.Context, sessionID string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("could not reach the intake service and no local cache is available")
	}
	defer store.Close()

	content, fetchedAt, err := store.GetBriefing(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotCached) {
			return fmt.Errorf("could not reach the intake service and no cached briefing exists for %s", sessionID)
		}
		return err
	}

	fmt.Println(warnStyle.Render(fmt.Sprintf(
		"Offline: showing briefing cached %s.", fetchedAt.Format("Jan 2 15:04"))))
	displayReply(string(content), false)
	return nil
}
