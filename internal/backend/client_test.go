// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepped-health/prepped-tui/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithHTTPClient(srv.URL, srv.Client())
}

func TestSendMessageMapsReply(t *testing.T) {
	var gotBody SendRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"response":   "How long has your knee hurt?",
			"is_handoff": false,
			"agent_name": "Maya",
			"current_profile": map[string]interface{}{
				"main_complaint": "Knee pain",
				"symptoms": []map[string]string{
					{"description": "Knee pain", "duration": "2 weeks", "severity": "6/10"},
				},
				"medications":         []string{"ibuprofen"},
				"family_history":      []string{},
				"suggested_questions": []string{"Do I need an X-ray?"},
			},
			"trace": []map[string]string{
				{"type": "thought", "content": "ask about duration"},
			},
		})
	})

	tag := client.NextTag("sess-1")
	reply, err := client.SendMessage(context.Background(), SendRequest{
		SessionID: "sess-1",
		Message:   "my knee hurts",
		UserID:    "user-9",
	}, tag)
	require.NoError(t, err)

	assert.Equal(t, "sess-1", gotBody.SessionID)
	assert.Equal(t, "user-9", gotBody.UserID)

	assert.Equal(t, "How long has your knee hurt?", reply.Text)
	assert.Equal(t, "Maya", reply.AgentName)
	assert.False(t, reply.IsHandoff)
	assert.Equal(t, tag, reply.Tag)
	assert.Equal(t, "Knee pain", reply.MemoryBank.ChiefComplaint)
	require.Len(t, reply.MemoryBank.SymptomTimeline, 1)
	assert.Equal(t, "2 weeks", reply.MemoryBank.SymptomTimeline[0].Duration)
	require.Len(t, reply.Trace, 1)
	assert.Equal(t, model.StepThought, reply.Trace[0].Type)
}

func TestSendMessageServerErrorIsConnection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.SendMessage(context.Background(), SendRequest{SessionID: "s"}, RequestTag{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnection))
}

func TestSendMessageMalformedBodyIsConnection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.SendMessage(context.Background(), SendRequest{SessionID: "s"}, RequestTag{})
	assert.True(t, errors.Is(err, ErrConnection))
}

func TestSendMessageUnreachableIsConnection(t *testing.T) {
	// Reserved TEST-NET address; nothing listens there.
	client := New("http://192.0.2.1:9")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.SendMessage(ctx, SendRequest{SessionID: "s"}, RequestTag{})
	assert.True(t, errors.Is(err, ErrConnection))
}

func TestGetSessionMapsDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/session/sess-2", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"main_complaint": "Headache",
			"messages": []map[string]interface{}{
				{"id": "m1", "role": "user", "content": "hello", "timestamp": int64(1700000000000)},
				{"id": "m2", "role": "assistant", "content": "hi", "agent_name": "Maya"},
			},
			"call_status": "ringing",
			"status":      "asking about symptoms",
		})
	})

	detail, err := client.GetSession(context.Background(), "sess-2")
	require.NoError(t, err)

	assert.Equal(t, "Headache", detail.MemoryBank.ChiefComplaint)
	assert.Equal(t, model.CallRinging, detail.CallStatus)
	assert.Equal(t, "asking about symptoms", detail.AgentStatus)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, model.RoleUser, detail.Messages[0].Role)
	// Missing type defaults to text.
	assert.Equal(t, model.TypeText, detail.Messages[1].Type)
}

func TestListSessionsPassesUserID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sessions", r.URL.Path)
		require.Equal(t, "user 1", r.URL.Query().Get("user_id"))
		json.NewEncoder(w).Encode([]model.SessionSummary{
			{ID: "a", Title: "Knee pain", Date: "Today"},
		})
	})

	sessions, err := client.ListSessions(context.Background(), "user 1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Knee pain", sessions[0].Title)
}

func TestDeleteSession(t *testing.T) {
	deleted := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/session/gone", r.URL.Path)
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteSession(context.Background(), "gone"))
	assert.True(t, deleted)
}

func TestInitiateCallRejectionKeepsDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Phone number is not reachable"})
	})

	err := client.InitiateCall(context.Background(), "s", "+15555550100")
	require.Error(t, err)

	var rejected *CallRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "Phone number is not reachable", rejected.Detail)
	// A rejection is not a connection failure.
	assert.False(t, errors.Is(err, ErrConnection))
}

func TestInitiateCallRejectionWithoutDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	err := client.InitiateCall(context.Background(), "s", "+15555550100")
	var rejected *CallRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "failed to initiate call", rejected.Error())
}

func TestInitiateCallSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+15555550100", body["phone_number"])
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.InitiateCall(context.Background(), "s", "+15555550100"))
}

func TestNextTagMonotonicPerClient(t *testing.T) {
	client := New("http://localhost")

	a := client.NextTag("s1")
	b := client.NextTag("s1")
	c := client.NextTag("s2")

	assert.Equal(t, "s1", a.SessionID)
	assert.Less(t, a.Seq, b.Seq)
	assert.Less(t, b.Seq, c.Seq)
	assert.NotEqual(t, a, b)
}
