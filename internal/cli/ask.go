// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"

	"github.com/prepped-health/prepped-tui/internal/backend"
)

// askTimeout bounds one ask round trip; the backend can take a while when
// the interview agent reasons over a long profile.
const askTimeout = 90 * time.Second

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the glamour renderer for CLI output. nil when the
// terminal profile could not be detected; output falls back to plain text.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(TerminalWidth(), 100)),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown for terminal display, returning the input
// unchanged when rendering is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayReply prints a reply, markdown-rendered only on a TTY so piped
// output stays clean.
func displayReply(text string, plain bool) {
	if !plain && IsStdoutTTY() {
		fmt.Print(renderMarkdown(text))
		return
	}
	fmt.Println(text)
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAsk sends a single question and prints the reply.
func HandleAsk(args *ArgParser) error {
	question := args.JoinPositional(0)
	if question == "" {
		return fmt.Errorf("no question provided. Usage: prepped ask \"your question\"")
	}

	sessionID := args.FlagOrDefault("session", args.Flag("s"))
	newSession := sessionID == ""
	if newSession {
		sessionID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	client := newBackendClient()
	tag := client.NextTag(sessionID)
	reply, err := client.SendMessage(ctx, backend.SendRequest{
		SessionID: sessionID,
		Message:   question,
		UserID:    currentUserID(ctx),
	}, tag)
	if err != nil {
		if errors.Is(err, backend.ErrConnection) {
			return fmt.Errorf("could not reach the intake service; check your connection and try again")
		}
		return err
	}

	if reply.AgentName != "" && IsStdoutTTY() {
		fmt.Println(agentStyle.Render(reply.AgentName + ":"))
	}
	displayReply(reply.Text, args.BoolFlag("plain"))

	if reply.IsHandoff {
		fmt.Fprintln(os.Stderr, okStyle.Render(
			"Interview complete. Run: prepped briefing "+sessionID))
	}
	if newSession {
		fmt.Fprintln(os.Stderr, noticeStyle.Render(
			"Continue with: prepped ask --session "+sessionID+" \"...\""))
	}
	return nil
}
