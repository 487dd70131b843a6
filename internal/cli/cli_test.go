// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"testing"
)

func TestArgParserFlags(t *testing.T) {
	p := NewArgParser([]string{"delete", "abc123", "--confirm", "--format=html", "-o", "out"})

	if p.Subcommand() != "delete" {
		t.Errorf("subcommand = %q, want delete", p.Subcommand())
	}
	if p.Positional(1) != "abc123" {
		t.Errorf("positional(1) = %q, want abc123", p.Positional(1))
	}
	if !p.BoolFlag("confirm") {
		t.Error("confirm flag not parsed")
	}
	if p.Flag("format") != "html" {
		t.Errorf("format = %q, want html", p.Flag("format"))
	}
	if p.Flag("o") != "out" {
		t.Errorf("o = %q, want out", p.Flag("o"))
	}
}

func TestArgParserBoolEquals(t *testing.T) {
	p := NewArgParser([]string{"--markdown=false", "--confirm=true"})
	if p.BoolFlag("markdown") {
		t.Error("markdown=false parsed as true")
	}
	if !p.BoolFlag("confirm") {
		t.Error("confirm=true parsed as false")
	}
}

func TestArgParserJoinPositional(t *testing.T) {
	p := NewArgParser([]string{"my", "knee", "hurts", "--plain"})
	if got := p.JoinPositional(0); got != "my knee hurts" {
		t.Errorf("joined = %q", got)
	}
	if !p.BoolFlag("plain") {
		t.Error("trailing flag lost")
	}
}

func TestArgParserDefaults(t *testing.T) {
	p := NewArgParser(nil)
	if p.Subcommand() != "" {
		t.Errorf("subcommand = %q, want empty", p.Subcommand())
	}
	if p.Positional(5) != "" {
		t.Error("out-of-range positional not empty")
	}
	if p.FlagOrDefault("format", "md") != "md" {
		t.Error("default not applied")
	}
}

func TestParseRouting(t *testing.T) {
	tests := []struct {
		args []string
		want Command
	}{
		{[]string{"prepped"}, CmdTUI},
		{[]string{"prepped", "ask", "hi"}, CmdAsk},
		{[]string{"prepped", "chat"}, CmdChat},
		{[]string{"prepped", "sessions", "list"}, CmdSessions},
		{[]string{"prepped", "session", "delete", "x"}, CmdSessions},
		{[]string{"prepped", "briefing", "abc"}, CmdBriefing},
		{[]string{"prepped", "login"}, CmdLogin},
		{[]string{"prepped", "logout"}, CmdLogout},
		{[]string{"prepped", "config", "show"}, CmdConfig},
		{[]string{"prepped", "version"}, CmdVersion},
		{[]string{"prepped", "help"}, CmdHelp},
	}

	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	for _, tt := range tests {
		t.Run(tt.args[len(tt.args)-1], func(t *testing.T) {
			os.Args = tt.args
			cmd, _ := Parse()
			if cmd != tt.want {
				t.Errorf("Parse(%v) = %d, want %d", tt.args[1:], cmd, tt.want)
			}
		})
	}
}

func TestParseBareQuestionBecomesAsk(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"prepped", "my", "knee", "hurts"}
	cmd, args := Parse()
	if cmd != CmdAsk {
		t.Fatalf("cmd = %d, want CmdAsk", cmd)
	}
	if got := args.JoinPositional(0); got != "my knee hurts" {
		t.Errorf("question = %q", got)
	}
}
