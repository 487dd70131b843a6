// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/prepped-health/prepped-tui/internal/config"
)

// =============================================================================
// CONFIG HANDLER
// =============================================================================

// HandleConfig routes the config subcommands.
func HandleConfig(args *ArgParser) error {
	switch args.Subcommand() {
	case "", "show":
		return configShow()
	case "get":
		return configGet(args.Positional(1))
	case "set":
		return configSet(args.Positional(1), args.Positional(2))
	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand %q (try show, get, set, path)", args.Subcommand())
	}
}

func configShow() error {
	cfg := config.Global()

	fmt.Println(headingStyle.Render("backend"))
	fmt.Printf("  %s %s\n", labelStyle.Render("base_url"), cfg.Backend.BaseURL)
	fmt.Printf("  %s %d\n", labelStyle.Render("timeout_secs"), cfg.Backend.TimeoutSecs)

	fmt.Println(headingStyle.Render("identity"))
	fmt.Printf("  %s %s\n", labelStyle.Render("endpoint"), cfg.Identity.Endpoint)
	fmt.Printf("  %s %s\n", labelStyle.Render("project_id"), maskValue(cfg.Identity.ProjectID))
	fmt.Printf("  %s %d\n", labelStyle.Render("oauth_callback_port"), cfg.Identity.OAuthCallbackPort)

	fmt.Println(headingStyle.Render("call"))
	fmt.Printf("  %s %d\n", labelStyle.Render("poll_interval_ms"), cfg.Call.PollIntervalMs)
	fmt.Printf("  %s %d\n", labelStyle.Render("max_poll_attempts"), cfg.Call.MaxPollAttempts)
	fmt.Printf("  %s %.2f\n", labelStyle.Render("backoff_factor"), cfg.Call.BackoffFactor)
	fmt.Printf("  %s %d\n", labelStyle.Render("completed_close_delay_ms"), cfg.Call.CompletedCloseDelayMs)

	fmt.Println(headingStyle.Render("storage"))
	fmt.Printf("  %s %s\n", labelStyle.Render("dir"), orDefault(cfg.Storage.Dir, "~/.prepped"))
	fmt.Printf("  %s %t\n", labelStyle.Render("encrypt_cache"), cfg.Storage.EncryptCache)

	fmt.Println(headingStyle.Render("ui"))
	fmt.Printf("  %s %s\n", labelStyle.Render("theme"), cfg.UI.Theme)
	fmt.Printf("  %s %t\n", labelStyle.Render("markdown"), cfg.UI.Markdown)
	fmt.Printf("  %s %d\n", labelStyle.Render("sidebar_width"), cfg.UI.SidebarWidth)
	return nil
}

func configGet(key string) error {
	if key == "" {
		return fmt.Errorf("usage: prepped config get KEY")
	}
	cfg := config.Global()

	switch strings.ToLower(key) {
	case "backend.base_url":
		fmt.Println(cfg.Backend.BaseURL)
	case "backend.timeout_secs":
		fmt.Println(cfg.Backend.TimeoutSecs)
	case "identity.endpoint":
		fmt.Println(cfg.Identity.Endpoint)
	case "identity.project_id":
		fmt.Println(cfg.Identity.ProjectID)
	case "identity.oauth_callback_port":
		fmt.Println(cfg.Identity.OAuthCallbackPort)
	case "call.poll_interval_ms":
		fmt.Println(cfg.Call.PollIntervalMs)
	case "call.max_poll_attempts":
		fmt.Println(cfg.Call.MaxPollAttempts)
	case "storage.encrypt_cache":
		fmt.Println(cfg.Storage.EncryptCache)
	case "ui.theme":
		fmt.Println(cfg.UI.Theme)
	case "ui.markdown":
		fmt.Println(cfg.UI.Markdown)
	case "ui.sidebar_width":
		fmt.Println(cfg.UI.SidebarWidth)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func configSet(key, value string) error {
	if key == "" || value == "" {
		return fmt.Errorf("usage: prepped config set KEY VALUE")
	}
	cfg := config.Global()

	var err error
	switch strings.ToLower(key) {
	case "backend.base_url":
		cfg.Backend.BaseURL = value
	case "backend.timeout_secs":
		cfg.Backend.TimeoutSecs, err = strconv.Atoi(value)
	case "identity.endpoint":
		cfg.Identity.Endpoint = value
	case "identity.project_id":
		cfg.Identity.ProjectID = value
	case "identity.oauth_callback_port":
		cfg.Identity.OAuthCallbackPort, err = strconv.Atoi(value)
	case "call.poll_interval_ms":
		cfg.Call.PollIntervalMs, err = strconv.Atoi(value)
	case "call.max_poll_attempts":
		cfg.Call.MaxPollAttempts, err = strconv.Atoi(value)
	case "storage.encrypt_cache":
		cfg.Storage.EncryptCache, err = strconv.ParseBool(value)
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.markdown":
		cfg.UI.Markdown, err = strconv.ParseBool(value)
	case "ui.sidebar_width":
		cfg.UI.SidebarWidth, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("rejected: %w", err)
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	config.SetGlobal(cfg)

	fmt.Println(okStyle.Render("Set " + key + " = " + value))
	return nil
}

// maskValue hides most of a sensitive value in output.
func maskValue(v string) string {
	if v == "" {
		return "(not set)"
	}
	if len(v) <= 4 {
		return "****"
	}
	return v[:4] + strings.Repeat("*", len(v)-4)
}

func orDefault(v, def string) string {
	if v == "" {
		return def + " (default)"
	}
	return v
}
