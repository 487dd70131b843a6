// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prepped-health/prepped-tui/internal/backend"
	"github.com/prepped-health/prepped-tui/internal/model"
	"github.com/prepped-health/prepped-tui/internal/util"
)

const sessionsTimeout = 30 * time.Second

// =============================================================================
// SESSIONS HANDLER
// =============================================================================

// HandleSessions routes the sessions subcommands.
func HandleSessions(args *ArgParser) error {
	switch args.Subcommand() {
	case "", "list", "ls", "l":
		return listSessions()
	case "delete", "rm":
		return deleteSession(args)
	default:
		return fmt.Errorf("unknown sessions subcommand %q (try list, delete)", args.Subcommand())
	}
}

// listSessions prints the session list, refreshing the local cache on
// success and falling back to it when the backend is unreachable.
func listSessions() error {
	ctx, cancel := context.WithTimeout(context.Background(), sessionsTimeout)
	defer cancel()

	client := newBackendClient()
	sessions, err := client.ListSessions(ctx, currentUserID(ctx))
	if err != nil {
		if errors.Is(err, backend.ErrConnection) {
			return listCachedSessions(ctx)
		}
		return err
	}

	if store, storeErr := openStore(); storeErr == nil {
		_ = store.ReplaceSessions(ctx, sessions)
		store.Close()
	}

	printSessionList(sessions)
	return nil
}

// listCachedSessions shows the last fetched list with a staleness notice.
func listCachedSessions(ctx context.Context) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("could not reach the intake service and no local cache is available")
	}
	defer store.Close()

	sessions, fetchedAt, err := store.CachedSessions(ctx)
	if err != nil || len(sessions) == 0 {
		return fmt.Errorf("could not reach the intake service and no local cache is available")
	}

	fmt.Println(warnStyle.Render(fmt.Sprintf(
		"Offline: showing sessions cached %s.", fetchedAt.Format("Jan 2 15:04"))))
	printSessionList(sessions)
	return nil
}

func printSessionList(sessions []model.SessionSummary) {
	if len(sessions) == 0 {
		fmt.Println(noticeStyle.Render("No sessions yet. Start one with: prepped ask \"...\""))
		return
	}

	group := ""
	for _, sess := range sessions {
		if sess.Date != group {
			group = sess.Date
			fmt.Println(headingStyle.Render(group))
		}
		title := sess.Title
		if title == "" {
			title = "Untitled session"
		}
		fmt.Printf("  %s  %s\n", labelStyle.Render(sess.ID), title)
		if sess.Preview != "" {
			fmt.Printf("      %s\n", noticeStyle.Render(util.TruncateRunes(sess.Preview, 70)))
		}
	}
}

// deleteSession removes a session on the backend and drops local cache rows.
func deleteSession(args *ArgParser) error {
	id := args.Positional(1)
	if id == "" {
		return fmt.Errorf("usage: prepped sessions delete <id> --confirm")
	}
	if !args.BoolFlag("confirm") {
		return fmt.Errorf("deleting a session is permanent; re-run with --confirm")
	}

	ctx, cancel := context.WithTimeout(context.Background(), sessionsTimeout)
	defer cancel()

	if err := newBackendClient().DeleteSession(ctx, id); err != nil {
		if errors.Is(err, backend.ErrConnection) {
			return fmt.Errorf("could not reach the intake service; the session was not deleted")
		}
		return err
	}

	if store, err := openStore(); err == nil {
		_ = store.DeleteSession(ctx, id)
		store.Close()
	}

	fmt.Println(okStyle.Render("Deleted session " + id))
	return nil
}
