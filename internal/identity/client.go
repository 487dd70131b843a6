// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prepped-health/prepped-tui/internal/util"
)

// Configuration constants for the identity API.
const (
	// DefaultTimeout is the default timeout for identity requests.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize bounds identity response bodies.
	maxResponseSize = 1 * 1024 * 1024 // 1MB
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNoSession indicates there is no active identity session.
var ErrNoSession = errors.New("no active session")

// ErrNotConfigured indicates the identity project id is not set.
var ErrNotConfigured = errors.New("identity project not configured")

// APIError represents an error response from the identity service.
// Identity errors surface inline in the login form, so Message keeps the
// server's own wording.
type APIError struct {
	Status  int    `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"type"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("identity error (HTTP %d)", e.Status)
}

// IsUnauthorized reports whether the error means the session is gone.
func IsUnauthorized(err error) bool {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status == http.StatusUnauthorized
	}
	return errors.Is(err, ErrNoSession)
}

// =============================================================================
// TYPES
// =============================================================================

// Account is the identity service's view of the current user.
type Account struct {
	ID    string `json:"$id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is an identity session handle.
type Session struct {
	ID       string `json:"$id"`
	UserID   string `json:"userId"`
	Provider string `json:"provider"`
	Secret   string `json:"secret,omitempty"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the identity service account API.
type Client struct {
	endpoint   string
	projectID  string
	httpClient *http.Client

	// sessionFile persists the session secret between CLI invocations.
	sessionFile string
	secret      string
}

// New creates an identity client for the given endpoint and project.
// sessionDir is where the session secret file lives (0600).
func New(endpoint, projectID, sessionDir string) *Client {
	c := &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		projectID: projectID,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		sessionFile: filepath.Join(sessionDir, "session.secret"),
	}
	c.loadSecret()
	return c
}

// Configured reports whether the client has a project id.
func (c *Client) Configured() bool {
	return c.projectID != ""
}

// HasSessionSecret reports whether a persisted session secret is loaded.
// This is a hint only; CurrentAccount decides whether it is still valid.
func (c *Client) HasSessionSecret() bool {
	return c.secret != ""
}

// =============================================================================
// OPERATIONS
// =============================================================================

// CreateEmailSession signs in with email and password.
func (c *Client) CreateEmailSession(ctx context.Context, email, password string) (*Session, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body := map[string]string{"email": email, "password": password}
	var sess Session
	if err := c.request(ctx, http.MethodPost, "/account/sessions/email", body, &sess); err != nil {
		return nil, err
	}
	c.storeSecret(sess.Secret)
	return &sess, nil
}

// CreateTokenSession exchanges a userId/secret pair (from an OAuth redirect
// capture) for a session.
func (c *Client) CreateTokenSession(ctx context.Context, userID, secret string) (*Session, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body := map[string]string{"userId": userID, "secret": secret}
	var sess Session
	if err := c.request(ctx, http.MethodPost, "/account/sessions/token", body, &sess); err != nil {
		return nil, err
	}
	c.storeSecret(sess.Secret)
	return &sess, nil
}

// CreateAccount registers a new account, then signs it in.
func (c *Client) CreateAccount(ctx context.Context, name, email, password string) (*Session, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body := map[string]string{
		"userId":   "unique()",
		"name":     name,
		"email":    email,
		"password": password,
	}
	if err := c.request(ctx, http.MethodPost, "/account", body, nil); err != nil {
		return nil, err
	}
	return c.CreateEmailSession(ctx, email, password)
}

// CurrentAccount returns the account for the active session. This is the
// source of truth for "logged in"; callers invalidate any local hint when
// it fails with an unauthorized error.
func (c *Client) CurrentAccount(ctx context.Context) (*Account, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if c.secret == "" {
		return nil, ErrNoSession
	}

	var acct Account
	if err := c.request(ctx, http.MethodGet, "/account", nil, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// DeleteCurrentSession logs out of the active session and drops the
// persisted secret regardless of the server result.
func (c *Client) DeleteCurrentSession(ctx context.Context) error {
	defer c.clearSecret()
	if !c.Configured() || c.secret == "" {
		return nil
	}
	return c.request(ctx, http.MethodDelete, "/account/sessions/current", nil, nil)
}

// OAuthRedirectURL builds the provider redirect URL the browser opens to
// start an OAuth2 token flow. successURL/failureURL point at the loopback
// callback server.
func (c *Client) OAuthRedirectURL(provider, successURL, failureURL string) string {
	q := url.Values{}
	q.Set("project", c.projectID)
	q.Set("success", successURL)
	q.Set("failure", failureURL)
	return fmt.Sprintf("%s/account/tokens/oauth2/%s?%s", c.endpoint, url.PathEscape(provider), q.Encode())
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// request performs one identity API round trip.
func (c *Client) request(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.projectID)
	req.Header.Set("X-Appwrite-Response-Format", "1.6.0")
	if c.secret != "" {
		req.Header.Set("X-Appwrite-Session", c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Status: 0, Message: err.Error(), Kind: "network"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: err.Error(), Kind: "network"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response", Kind: "decode"}
	}
	return nil
}

// =============================================================================
// SESSION SECRET PERSISTENCE
// =============================================================================

// loadSecret reads the persisted session secret, if any.
func (c *Client) loadSecret() {
	data, err := os.ReadFile(c.sessionFile)
	if err != nil {
		return
	}
	c.secret = strings.TrimSpace(string(data))
}

// storeSecret persists the session secret with owner-only permissions.
func (c *Client) storeSecret(secret string) {
	if secret == "" {
		return
	}
	c.secret = secret
	if err := util.AtomicWriteFile(c.sessionFile, []byte(secret), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not persist session: %v\n", err)
	}
}

// clearSecret drops the in-memory and persisted secret.
func (c *Client) clearSecret() {
	c.secret = ""
	_ = os.Remove(c.sessionFile)
}
