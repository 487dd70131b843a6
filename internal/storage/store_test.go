// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prepped-health/prepped-tui/internal/model"
)

func openTestStore(t *testing.T, encrypt bool) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), encrypt)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAuthHintRoundTrip(t *testing.T) {
	s := openTestStore(t, false)
	ctx := context.Background()

	// Empty store has no hint.
	if _, err := s.GetAuthHint(ctx); !errors.Is(err, ErrNotCached) {
		t.Errorf("GetAuthHint() on empty store error = %v, want ErrNotCached", err)
	}

	if err := s.SaveAuthHint(ctx, "user-123"); err != nil {
		t.Fatalf("SaveAuthHint() error = %v", err)
	}

	hint, err := s.GetAuthHint(ctx)
	if err != nil {
		t.Fatalf("GetAuthHint() error = %v", err)
	}
	if !hint.LoggedIn {
		t.Error("hint.LoggedIn = false, want true")
	}
	if hint.UserID != "user-123" {
		t.Errorf("hint.UserID = %q, want %q", hint.UserID, "user-123")
	}

	if err := s.ClearAuthHint(ctx); err != nil {
		t.Fatalf("ClearAuthHint() error = %v", err)
	}

	hint, err = s.GetAuthHint(ctx)
	if err != nil {
		t.Fatalf("GetAuthHint() after clear error = %v", err)
	}
	if hint.LoggedIn {
		t.Error("hint.LoggedIn = true after clear, want false")
	}
	if hint.UserID != "" {
		t.Errorf("hint.UserID = %q after clear, want empty", hint.UserID)
	}
}

func TestReplaceSessionsSwapsList(t *testing.T) {
	s := openTestStore(t, false)
	ctx := context.Background()

	first := []model.SessionSummary{
		{ID: "a", Title: "Headache intake", Date: "2026-08-30", Preview: "I have a headache"},
		{ID: "b", Title: "Back pain intake", Date: "2026-08-29", Preview: "Lower back pain"},
	}
	if err := s.ReplaceSessions(ctx, first); err != nil {
		t.Fatalf("ReplaceSessions() error = %v", err)
	}

	got, fetched, err := s.CachedSessions(ctx)
	if err != nil {
		t.Fatalf("CachedSessions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("sessions not ordered by date desc: %v", got)
	}
	if fetched.IsZero() {
		t.Error("fetched time is zero after ReplaceSessions")
	}

	// A fresh backend result fully replaces the previous list.
	second := []model.SessionSummary{
		{ID: "c", Title: "Follow-up", Date: "2026-08-31", Preview: "Still hurts"},
	}
	if err := s.ReplaceSessions(ctx, second); err != nil {
		t.Fatalf("ReplaceSessions() second error = %v", err)
	}

	got, _, err = s.CachedSessions(ctx)
	if err != nil {
		t.Fatalf("CachedSessions() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("sessions after replace = %v, want single id c", got)
	}
}

func TestCachedSessionsEmptyIsNotError(t *testing.T) {
	s := openTestStore(t, false)

	sessions, fetched, err := s.CachedSessions(context.Background())
	if err != nil {
		t.Fatalf("CachedSessions() error = %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("len(sessions) = %d, want 0", len(sessions))
	}
	if !fetched.IsZero() {
		t.Errorf("fetched = %v, want zero time", fetched)
	}
}

func TestDeleteSessionDropsBriefingToo(t *testing.T) {
	s := openTestStore(t, false)
	ctx := context.Background()

	if err := s.ReplaceSessions(ctx, []model.SessionSummary{{ID: "a", Title: "T", Date: "2026-08-30"}}); err != nil {
		t.Fatalf("ReplaceSessions() error = %v", err)
	}
	if err := s.PutBriefing(ctx, "a", []byte("# Briefing")); err != nil {
		t.Fatalf("PutBriefing() error = %v", err)
	}

	if err := s.DeleteSession(ctx, "a"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}

	sessions, _, err := s.CachedSessions(ctx)
	if err != nil {
		t.Fatalf("CachedSessions() error = %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("len(sessions) = %d after delete, want 0", len(sessions))
	}
	if _, _, err := s.GetBriefing(ctx, "a"); !errors.Is(err, ErrNotCached) {
		t.Errorf("GetBriefing() after delete error = %v, want ErrNotCached", err)
	}
}

func TestBriefingEncryptedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, true)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	plaintext := []byte("# Pre-visit briefing\n\nChief complaint: headache\n")
	if err := s.PutBriefing(ctx, "sess-1", plaintext); err != nil {
		t.Fatalf("PutBriefing() error = %v", err)
	}

	got, fetched, err := s.GetBriefing(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetBriefing() error = %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("GetBriefing() = %q, want %q", got, plaintext)
	}
	if fetched.IsZero() {
		t.Error("fetched time is zero")
	}

	// The keyfile must exist with owner-only permissions.
	info, err := os.Stat(filepath.Join(dir, keyFileName))
	if err != nil {
		t.Fatalf("keyfile stat error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("keyfile permissions = %o, want 0600", perm)
	}
}

func TestBriefingTamperDetected(t *testing.T) {
	s := openTestStore(t, true)
	ctx := context.Background()

	if err := s.PutBriefing(ctx, "sess-1", []byte("secret briefing")); err != nil {
		t.Fatalf("PutBriefing() error = %v", err)
	}

	// Corrupt the stored ciphertext directly in the table.
	if _, err := s.db.ExecContext(ctx,
		`UPDATE briefing_cache SET ciphertext = X'DEADBEEFDEADBEEFDEADBEEFDEADBEEF' WHERE session_id = ?`,
		"sess-1"); err != nil {
		t.Fatalf("tamper update error = %v", err)
	}

	if _, _, err := s.GetBriefing(ctx, "sess-1"); !errors.Is(err, ErrCipherTampered) {
		t.Errorf("GetBriefing() on tampered row error = %v, want ErrCipherTampered", err)
	}
}

func TestCipherSealOpen(t *testing.T) {
	c, err := newCacheCipher(t.TempDir())
	if err != nil {
		t.Fatalf("newCacheCipher() error = %v", err)
	}

	plaintext := []byte("briefing body")
	ciphertext, header, err := c.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if bytes.Contains(ciphertext, plaintext) {
		t.Error("ciphertext contains plaintext")
	}

	got, err := c.Open(ciphertext, header)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Open() = %q, want %q", got, plaintext)
	}

	// A truncated header is rejected, not a panic.
	if _, err := c.Open(ciphertext, header[:4]); !errors.Is(err, ErrCipherTampered) {
		t.Errorf("Open() with short header error = %v, want ErrCipherTampered", err)
	}
}
