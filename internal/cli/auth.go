// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/prepped-health/prepped-tui/internal/config"
	"github.com/prepped-health/prepped-tui/internal/identity"
)

const authTimeout = 2 * time.Minute

// =============================================================================
// LOGIN / LOGOUT HANDLERS
// =============================================================================

// HandleLogin signs the user in with email+password or an OAuth provider
// and caches the logged-in hint.
func HandleLogin(args *ArgParser) error {
	client, err := newIdentityClient()
	if err != nil {
		return err
	}
	if !client.Configured() {
		return fmt.Errorf("identity project not configured; set identity.project_id or PREPPED_APPWRITE_PROJECT")
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	if provider := args.FlagOrDefault("provider", args.Flag("oauth")); provider != "" {
		fmt.Println(noticeStyle.Render("Opening your browser to sign in with " + provider + "..."))
		_, err = client.CreateOAuthSession(ctx, provider, config.Global().Identity.OAuthCallbackPort)
	} else {
		_, err = loginWithPassword(ctx, client, args)
	}
	if err != nil {
		var apiErr *identity.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("sign in failed: %s", apiErr.Message)
		}
		return err
	}

	account, err := client.CurrentAccount(ctx)
	if err != nil {
		return fmt.Errorf("signed in but could not load the account: %w", err)
	}

	if store, storeErr := openStore(); storeErr == nil {
		_ = store.SaveAuthHint(ctx, account.ID)
		store.Close()
	}

	name := account.Name
	if name == "" {
		name = account.Email
	}
	fmt.Println(okStyle.Render("Signed in as " + name))
	return nil
}

// loginWithPassword reads credentials interactively unless provided as flags.
func loginWithPassword(ctx context.Context, client *identity.Client, args *ArgParser) (*identity.Session, error) {
	email := args.Flag("email")
	if email == "" {
		if !IsTTY() {
			return nil, fmt.Errorf("stdin is not a terminal; pass --email and --password or use --provider")
		}
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		email = strings.TrimSpace(line)
	}

	password := args.Flag("password")
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return nil, err
		}
		password = string(raw)
	}

	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("that doesn't look like an email address")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	return client.CreateEmailSession(ctx, email, password)
}

// HandleLogout ends the identity session and clears the local hint.
func HandleLogout() error {
	client, err := newIdentityClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.DeleteCurrentSession(ctx); err != nil && !identity.IsUnauthorized(err) {
		fmt.Println(warnStyle.Render(
			"Could not end the remote session (" + err.Error() + "); clearing local state anyway."))
	}

	if store, storeErr := openStore(); storeErr == nil {
		_ = store.ClearAuthHint(ctx)
		store.Close()
	}

	fmt.Println(okStyle.Render("Signed out."))
	return nil
}
