// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// =============================================================================
// OAUTH LOOPBACK FLOW
// =============================================================================

// ErrOAuthDenied indicates the provider redirected to the failure URL.
var ErrOAuthDenied = errors.New("authorization was denied")

// ErrOAuthTimeout indicates no redirect arrived before the deadline.
var ErrOAuthTimeout = errors.New("timed out waiting for authorization")

// oauthResult is what the loopback capture hands back.
type oauthResult struct {
	userID string
	secret string
	err    error
}

// CreateOAuthSession runs the full browser OAuth2 flow for a provider:
// start a loopback callback server, open the provider redirect URL in the
// user's browser, wait for the success/failure redirect, then exchange the
// captured token for a session. The context bounds the whole wait.
func (c *Client) CreateOAuthSession(ctx context.Context, provider string, callbackPort int) (*Session, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	addr := fmt.Sprintf("127.0.0.1:%d", callbackPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not open callback port %d: %w", callbackPort, err)
	}

	results := make(chan oauthResult, 1)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/callback", func(w http.ResponseWriter, req *http.Request) {
		userID := req.URL.Query().Get("userId")
		secret := req.URL.Query().Get("secret")
		if userID == "" || secret == "" {
			http.Error(w, "missing token parameters", http.StatusBadRequest)
			select {
			case results <- oauthResult{err: ErrOAuthDenied}:
			default:
			}
			return
		}
		fmt.Fprint(w, "Signed in. You can close this tab and return to the terminal.")
		select {
		case results <- oauthResult{userID: userID, secret: secret}:
		default:
		}
	})
	r.Get("/failure", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, "Sign-in was cancelled. You can close this tab.")
		select {
		case results <- oauthResult{err: ErrOAuthDenied}:
		default:
		}
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = srv.Serve(listener)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	successURL := fmt.Sprintf("http://%s/callback", addr)
	failureURL := fmt.Sprintf("http://%s/failure", addr)
	redirectURL := c.OAuthRedirectURL(provider, successURL, failureURL)

	if err := openBrowser(redirectURL); err != nil {
		// The user can still paste the URL manually; report it instead of failing.
		fmt.Printf("Open this URL to sign in:\n  %s\n", redirectURL)
	}

	select {
	case <-ctx.Done():
		return nil, ErrOAuthTimeout
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		return c.CreateTokenSession(ctx, res.userID, res.secret)
	}
}

// openBrowser opens a URL in the platform default browser.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
