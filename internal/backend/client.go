// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

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
	"strings"
	"sync/atomic"
	"time"

	"github.com/prepped-health/prepped-tui/internal/model"
)

// Configuration constants for the intake backend API.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// Bounds memory use on a misbehaving or malicious endpoint.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// sharedHTTPClient is the pooled HTTP client for all backend requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrConnection is the single error kind surfaced for backend failures.
// Any non-2xx response or network failure maps to it; callers branch on
// errors.Is(err, ErrConnection) and show the connection-error affordance.
var ErrConnection = errors.New("could not reach the intake service")

// CallRejectedError carries the server-provided rejection message for a
// refused call initiation. Unlike transport failures this is not a
// connection error; the message is shown verbatim in the call modal.
type CallRejectedError struct {
	Detail string
}

// Error implements the error interface.
func (e *CallRejectedError) Error() string {
	if e.Detail == "" {
		return "failed to initiate call"
	}
	return e.Detail
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// SendRequest is the payload for one outbound chat message.
type SendRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Audio     string `json:"audio,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// wireProfile is the backend's medical profile shape.
type wireProfile struct {
	MainComplaint      string        `json:"main_complaint"`
	Symptoms           []wireSymptom `json:"symptoms"`
	Medications        []string      `json:"medications"`
	FamilyHistory      []string      `json:"family_history"`
	SuggestedQuestions []string      `json:"suggested_questions"`
}

type wireSymptom struct {
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Severity    string `json:"severity"`
}

// toMemoryBank maps the wire profile into the client model.
func (p wireProfile) toMemoryBank() model.MemoryBank {
	symptoms := make([]model.Symptom, 0, len(p.Symptoms))
	for _, s := range p.Symptoms {
		symptoms = append(symptoms, model.Symptom{
			Description: s.Description,
			Duration:    s.Duration,
			Severity:    s.Severity,
		})
	}
	return model.MemoryBank{
		ChiefComplaint:     p.MainComplaint,
		SymptomTimeline:    symptoms,
		CurrentMedications: p.Medications,
		FamilyHistory:      p.FamilyHistory,
		SuggestedQuestions: p.SuggestedQuestions,
	}
}

// chatResponse is the POST /chat response body.
type chatResponse struct {
	Response  string                `json:"response"`
	IsHandoff bool                  `json:"is_handoff"`
	Profile   wireProfile           `json:"current_profile"`
	AgentName string                `json:"agent_name"`
	Trace     []model.ExecutionStep `json:"trace"`
}

// wireMessage is one transcript entry in GET /session/{id}.
type wireMessage struct {
	ID        string                `json:"id"`
	Role      string                `json:"role"`
	Content   string                `json:"content"`
	Type      string                `json:"type"`
	Timestamp int64                 `json:"timestamp"`
	AgentName string                `json:"agent_name"`
	Trace     []model.ExecutionStep `json:"trace"`
}

// sessionResponse is the GET /session/{id} response body. Profile fields
// are inlined at the top level on this endpoint.
type sessionResponse struct {
	wireProfile
	Messages   []wireMessage `json:"messages"`
	CallStatus string        `json:"call_status"`
	Status     string        `json:"status"`
}

// errorResponse is the backend's error body shape.
type errorResponse struct {
	Detail string `json:"detail"`
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// ChatReply is the mapped result of one SendMessage round trip.
type ChatReply struct {
	Text       string
	MemoryBank model.MemoryBank
	AgentName  string
	IsHandoff  bool
	Trace      []model.ExecutionStep

	// Tag identifies which outbound request this reply answers. The chat
	// surface discards replies whose tag no longer matches its state.
	Tag RequestTag
}

// SessionDetail is the mapped result of one GetSession round trip.
type SessionDetail struct {
	MemoryBank  model.MemoryBank
	Messages    []*model.Message
	CallStatus  model.CallStatus
	AgentStatus string
}

// RequestTag tags an outbound request with the session it belongs to and a
// monotonically increasing sequence number, so responses arriving out of
// order can be rejected before they touch current state.
type RequestTag struct {
	SessionID string
	Seq       uint64
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the prepped intake backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	seq        atomic.Uint64
}

// New creates a backend client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: sharedHTTPClient,
	}
}

// NewWithHTTPClient creates a backend client with a custom http.Client.
// Used by tests to point at an httptest server with short timeouts.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NextTag allocates a request tag for the given session.
func (c *Client) NextTag(sessionID string) RequestTag {
	return RequestTag{SessionID: sessionID, Seq: c.seq.Add(1)}
}

// =============================================================================
// OPERATIONS
// =============================================================================

// SendMessage posts one chat message and returns the assistant reply with
// the replaced medical profile. The reply carries the given tag.
func (c *Client) SendMessage(ctx context.Context, req SendRequest, tag RequestTag) (*ChatReply, error) {
	var resp chatResponse
	if err := c.postJSON(ctx, "/chat", req, &resp); err != nil {
		return nil, err
	}

	return &ChatReply{
		Text:       resp.Response,
		MemoryBank: resp.Profile.toMemoryBank(),
		AgentName:  resp.AgentName,
		IsHandoff:  resp.IsHandoff,
		Trace:      resp.Trace,
		Tag:        tag,
	}, nil
}

// ListSessions fetches the session list for a user. An empty userID lists
// anonymous sessions.
func (c *Client) ListSessions(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	path := "/sessions"
	if userID != "" {
		path += "?user_id=" + url.QueryEscape(userID)
	}

	var sessions []model.SessionSummary
	if err := c.getJSON(ctx, path, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSession fetches the full transcript, profile and call status for a
// session.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*SessionDetail, error) {
	var resp sessionResponse
	if err := c.getJSON(ctx, "/session/"+url.PathEscape(sessionID), &resp); err != nil {
		return nil, err
	}

	messages := make([]*model.Message, 0, len(resp.Messages))
	for _, wm := range resp.Messages {
		msgType := model.MessageType(wm.Type)
		if msgType == "" {
			msgType = model.TypeText
		}
		messages = append(messages, &model.Message{
			ID:        wm.ID,
			Role:      model.Role(wm.Role),
			Content:   wm.Content,
			Type:      msgType,
			Timestamp: time.UnixMilli(wm.Timestamp),
			AgentName: wm.AgentName,
			Trace:     wm.Trace,
		})
	}

	return &SessionDetail{
		MemoryBank:  resp.wireProfile.toMemoryBank(),
		Messages:    messages,
		CallStatus:  model.CallStatus(resp.CallStatus),
		AgentStatus: resp.Status,
	}, nil
}

// DeleteSession deletes a session on the backend.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/session/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()
	drainBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrConnection, resp.StatusCode)
	}
	return nil
}

// InitiateCall asks the backend to place a voice interview call to the
// given phone number. A rejection with a server-provided detail message is
// returned as *CallRejectedError; transport failures map to ErrConnection.
func (c *Client) InitiateCall(ctx context.Context, sessionID, phoneNumber string) error {
	body := map[string]string{
		"session_id":   sessionID,
		"phone_number": phoneNumber,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/initiate-call", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		drainBody(resp.Body)
		return nil
	}

	// Rejections carry a {detail} body worth surfacing verbatim.
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Detail != "" {
		return &CallRejectedError{Detail: er.Detail}
	}
	return &CallRejectedError{}
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

// postJSON performs one POST round trip with a JSON body and decodes the
// JSON response into out.
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// getJSON performs one GET round trip and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return c.do(req, out)
}

// do executes the request and normalizes every failure mode to ErrConnection.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		drainBody(resp.Body)
		return fmt.Errorf("%w: HTTP %d", ErrConnection, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrConnection, err)
	}
	return nil
}

// drainBody discards the remaining body so the connection can be reused.
func drainBody(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, MaxResponseSize))
}
