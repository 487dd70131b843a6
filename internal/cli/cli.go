// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSessions
	CmdBriefing
	CmdLogin
	CmdLogout
	CmdConfig
	CmdVersion
	CmdHelp
)

const usageText = `prepped - talk through your symptoms before the visit

Prepped interviews you about your symptoms and turns the conversation
into a briefing document your clinician can read in a minute.

Usage:
  prepped                         Start the full-screen TUI (default)
  prepped ask "question"          Ask a single question
  prepped chat                    Headless chat for basic terminals
  prepped sessions [list|delete]  Manage intake sessions
  prepped briefing <session-id>   Print or export a briefing document
  prepped login                   Sign in to your prepped account
  prepped logout                  Sign out and clear the local session
  prepped config [show|get|set|path]  Inspect configuration
  prepped version                 Show version information

Ask command:
  prepped ask "My knee hurts when I climb stairs"
  prepped ask --session ID "..."  Continue an existing session
    -s, --session ID              Session to continue (default: new)
    --plain                       No markdown rendering

Sessions command:
  prepped sessions list           List your sessions (alias: ls)
  prepped sessions delete <id>    Delete a session
    --confirm                     Required confirmation flag

Briefing command:
  prepped briefing <session-id>
    -f, --format md|html|text     Output format (default: md)
    -o, --output DIR              Write to a file in DIR instead of stdout
    --no-transcript               Leave out the interview transcript

Config command:
  prepped config show             Show the effective configuration
  prepped config get KEY          Print one value (e.g. backend.base_url)
  prepped config set KEY VALUE    Set and save one value
  prepped config path             Print the config file path

Chat commands (inside prepped chat):
  /new                            Start a fresh session
  /profile                        Show what has been recorded so far
  /briefing                       Print the briefing for this session
  /help                           Show commands
  /quit                           Exit (also Ctrl+D)

Version: %s
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("prepped version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses os.Args and returns the command plus its argument parser.
func Parse() (Command, *ArgParser) {
	raw := os.Args[1:]
	if len(raw) == 0 {
		return CmdTUI, NewArgParser(nil)
	}

	cmd := strings.ToLower(raw[0])
	rest := NewArgParser(raw[1:])

	switch cmd {
	case "tui":
		return CmdTUI, rest
	case "ask":
		return CmdAsk, rest
	case "chat":
		return CmdChat, rest
	case "sessions", "session":
		return CmdSessions, rest
	case "briefing":
		return CmdBriefing, rest
	case "login":
		return CmdLogin, rest
	case "logout":
		return CmdLogout, rest
	case "config":
		return CmdConfig, rest
	case "version", "--version", "-v":
		return CmdVersion, rest
	case "help", "--help", "-h":
		return CmdHelp, rest
	default:
		// Unknown words are treated as a question for convenience:
		// `prepped my knee hurts` just works.
		return CmdAsk, NewArgParser(raw)
	}
}
