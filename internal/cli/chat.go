// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/peterh/liner"

	"github.com/prepped-health/prepped-tui/internal/backend"
	"github.com/prepped-health/prepped-tui/internal/briefing"
	"github.com/prepped-health/prepped-tui/internal/config"
	"github.com/prepped-health/prepped-tui/internal/model"
)

// historyFileName is the liner history file inside the storage directory.
const historyFileName = "chat_history"

// =============================================================================
// LINE READER
// =============================================================================

// lineReader wraps liner with history persistence.
type lineReader struct {
	line        *liner.State
	historyPath string
}

func newLineReader() *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &lineReader{line: line}
	if dir, err := config.Global().StorageDir(); err == nil {
		r.historyPath = filepath.Join(dir, historyFileName)
	}
	r.loadHistory()
	return r
}

func (r *lineReader) loadHistory() {
	if r.historyPath == "" {
		return
	}
	if f, err := os.Open(r.historyPath); err == nil {
		_, _ = r.line.ReadHistory(f)
		f.Close()
	}
}

func (r *lineReader) saveHistory() {
	if r.historyPath == "" {
		return
	}
	f, err := os.OpenFile(r.historyPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = r.line.WriteHistory(f)
}

func (r *lineReader) read(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	input = strings.TrimSpace(input)
	if input != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *lineReader) close() {
	r.saveHistory()
	r.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// chatSession is the headless REPL state: one backend client and the
// conversation view for the current session.
type chatSession struct {
	client       *backend.Client
	conversation *model.Conversation
	userID       string
	agentName    string
}

func (s *chatSession) startSession(id string) {
	s.conversation = model.NewConversation(id)
	s.agentName = ""
}

// HandleChat runs the headless chat REPL.
func HandleChat(args *ArgParser) error {
	if !IsTTY() {
		return fmt.Errorf("stdin is not a terminal; use `prepped ask` for scripted input")
	}

	ctx := context.Background()
	session := &chatSession{
		client: newBackendClient(),
		userID: currentUserID(ctx),
	}

	sessionID := args.FlagOrDefault("session", args.Flag("s"))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	session.startSession(sessionID)

	reader := newLineReader()
	defer reader.close()

	fmt.Println(promptStyle.Render("prepped") + noticeStyle.Render(" - describe what brings you in. /help for commands, /quit to exit."))
	fmt.Println()

	for {
		input, err := reader.read(promptStyle.Render("you> "))
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println()
				return nil
			}
			return err
		}
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := handleSlashCommand(input, session)
			if err != nil {
				fmt.Println(errStyle.Render(err.Error()))
			}
			if quit {
				return nil
			}
			continue
		}

		if err := sendChatMessage(ctx, session, input); err != nil {
			fmt.Println(errStyle.Render(err.Error()))
		}
	}
}

// sendChatMessage does one round trip and prints the reply.
func sendChatMessage(ctx context.Context, session *chatSession, input string) error {
	session.conversation.AddUserMessage(input)

	reqCtx, cancel := context.WithTimeout(ctx, askTimeout)
	defer cancel()

	tag := session.client.NextTag(session.conversation.SessionID)
	reply, err := session.client.SendMessage(reqCtx, backend.SendRequest{
		SessionID: session.conversation.SessionID,
		Message:   input,
		UserID:    session.userID,
	}, tag)
	if err != nil {
		if errors.Is(err, backend.ErrConnection) {
			return fmt.Errorf("could not reach the intake service; your message was not delivered")
		}
		return err
	}

	session.conversation.AddAssistantMessage(reply.Text, reply.AgentName, reply.Trace)
	session.conversation.ReplaceProfile(reply.MemoryBank)
	if reply.AgentName != "" {
		session.agentName = reply.AgentName
	}

	name := reply.AgentName
	if name == "" {
		name = model.RoleAssistant.DisplayName()
	}
	fmt.Println()
	fmt.Println(agentStyle.Render(name + ":"))
	displayReply(reply.Text, false)

	if reply.IsHandoff {
		fmt.Println(okStyle.Render(
			"Interview complete. /briefing prints your briefing document."))
	}
	fmt.Println()
	return nil
}

// handleSlashCommand processes REPL commands. Returns true to exit.
func handleSlashCommand(cmd string, session *chatSession) (bool, error) {
	switch strings.ToLower(strings.Fields(cmd)[0]) {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h":
		fmt.Println(noticeStyle.Render(
			"/new start a fresh session | /profile show recorded profile | " +
				"/briefing print briefing | /quit exit"))
		return false, nil

	case "/new", "/n":
		session.startSession(uuid.NewString())
		fmt.Println(noticeStyle.Render("Started a new session."))
		return false, nil

	case "/profile", "/p":
		return false, printProfile(session)

	case "/briefing", "/b":
		return false, printBriefing(session)

	default:
		return false, fmt.Errorf("unknown command %s (try /help)", cmd)
	}
}

// printProfile renders the current medical profile without the transcript.
func printProfile(session *chatSession) error {
	doc := briefing.Build(session.conversation)
	if !doc.HasProfile() {
		fmt.Println(noticeStyle.Render("Nothing recorded yet."))
		return nil
	}
	content, err := briefing.NewMarkdownExporter(
		&briefing.Options{IncludeTranscript: false}).Export(doc)
	if err != nil {
		return err
	}
	fmt.Print(renderMarkdown(string(content)))
	return nil
}

// printBriefing renders the full briefing including the transcript.
func printBriefing(session *chatSession) error {
	if session.conversation.IsEmpty() {
		fmt.Println(noticeStyle.Render("Nothing to brief yet."))
		return nil
	}
	content, err := briefing.NewMarkdownExporter(nil).Export(briefing.Build(session.conversation))
	if err != nil {
		return err
	}
	fmt.Print(renderMarkdown(string(content)))
	return nil
}
