// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/prepped-health/prepped-tui/internal/model"
)

// =============================================================================
// STORE
// =============================================================================

// ErrNotCached indicates the requested row is not in the local cache.
var ErrNotCached = errors.New("not cached")

// AuthHint is the locally cached login state. It only decides which screen
// the app opens on; the identity service is asked afterwards and wins.
type AuthHint struct {
	LoggedIn  bool
	UserID    string
	UpdatedAt time.Time
}

// Store is the local sqlite cache.
type Store struct {
	db      *sql.DB
	cipher  *cacheCipher
	encrypt bool
}

// Open opens (creating if needed) the cache database under dir.
// When encrypt is true, briefing snapshots are sealed with a keyfile-derived
// cipher before they touch disk.
func Open(dir string, encrypt bool) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	dsn := filepath.Join(dir, "prepped.db") + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single TUI process; one connection avoids SQLITE_BUSY entirely.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, encrypt: encrypt}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	if encrypt {
		c, err := newCacheCipher(dir)
		if err != nil {
			db.Close()
			return nil, err
		}
		s.cipher = c
	}

	return s, nil
}

func (s *Store) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS auth_hint (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		logged_in INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_cache (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		date TEXT NOT NULL,
		preview TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_session_cache_fetched ON session_cache(fetched_at);

	CREATE TABLE IF NOT EXISTS briefing_cache (
		session_id TEXT PRIMARY KEY,
		ciphertext BLOB NOT NULL,
		nonce BLOB NOT NULL,
		fetched_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// AUTH HINT
// =============================================================================

// SaveAuthHint records that a user appeared to be logged in.
func (s *Store) SaveAuthHint(ctx context.Context, userID string) error {
	query := `
	INSERT INTO auth_hint (id, logged_in, user_id, updated_at)
	VALUES (1, 1, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		logged_in = 1,
		user_id = excluded.user_id,
		updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, userID, time.Now().Unix()); err != nil {
		return fmt.Errorf("save auth hint: %w", err)
	}
	return nil
}

// ClearAuthHint invalidates the hint (logout, or the identity service
// disagreed with the cache).
func (s *Store) ClearAuthHint(ctx context.Context) error {
	query := `
	INSERT INTO auth_hint (id, logged_in, user_id, updated_at)
	VALUES (1, 0, '', ?)
	ON CONFLICT(id) DO UPDATE SET
		logged_in = 0,
		user_id = '',
		updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, time.Now().Unix()); err != nil {
		return fmt.Errorf("clear auth hint: %w", err)
	}
	return nil
}

// GetAuthHint returns the cached login hint, or ErrNotCached if none exists.
func (s *Store) GetAuthHint(ctx context.Context) (*AuthHint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT logged_in, user_id, updated_at FROM auth_hint WHERE id = 1`)

	var hint AuthHint
	var loggedIn int
	var updatedAt int64
	err := row.Scan(&loggedIn, &hint.UserID, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("scan auth hint: %w", err)
	}

	hint.LoggedIn = loggedIn != 0
	hint.UpdatedAt = time.Unix(updatedAt, 0)
	return &hint, nil
}

// =============================================================================
// SESSION LIST CACHE
// =============================================================================

// ReplaceSessions swaps the cached sidebar list for a fresh backend result.
func (s *Store) ReplaceSessions(ctx context.Context, sessions []model.SessionSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session cache tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_cache`); err != nil {
		return fmt.Errorf("clear session cache: %w", err)
	}

	now := time.Now().Unix()
	stmt := `INSERT INTO session_cache (id, title, date, preview, fetched_at) VALUES (?, ?, ?, ?, ?)`
	for _, sess := range sessions {
		if _, err := tx.ExecContext(ctx, stmt, sess.ID, sess.Title, sess.Date, sess.Preview, now); err != nil {
			return fmt.Errorf("insert session cache row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session cache: %w", err)
	}
	return nil
}

// CachedSessions returns the cached sidebar list plus when it was fetched.
// An empty cache returns an empty slice and a zero time, not an error.
func (s *Store) CachedSessions(ctx context.Context) ([]model.SessionSummary, time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, date, preview, fetched_at FROM session_cache ORDER BY date DESC`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query session cache: %w", err)
	}
	defer rows.Close()

	var sessions []model.SessionSummary
	var newest int64
	for rows.Next() {
		var sess model.SessionSummary
		var fetchedAt int64
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.Date, &sess.Preview, &fetchedAt); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan session cache row: %w", err)
		}
		if fetchedAt > newest {
			newest = fetchedAt
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("iterate session cache: %w", err)
	}

	var fetched time.Time
	if newest > 0 {
		fetched = time.Unix(newest, 0)
	}
	return sessions, fetched, nil
}

// DeleteSession drops one session from the cached list. Used after the
// backend confirms a delete so the sidebar and the cache agree.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_cache WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete cached session: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM briefing_cache WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete cached briefing: %w", err)
	}
	return nil
}

// =============================================================================
// BRIEFING CACHE
// =============================================================================

// PutBriefing stores a rendered briefing snapshot for offline re-printing.
func (s *Store) PutBriefing(ctx context.Context, sessionID string, markdown []byte) error {
	ciphertext, header := markdown, []byte{}
	if s.encrypt {
		var err error
		ciphertext, header, err = s.cipher.Seal(markdown)
		if err != nil {
			return fmt.Errorf("seal briefing: %w", err)
		}
	}

	query := `
	INSERT INTO briefing_cache (session_id, ciphertext, nonce, fetched_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		ciphertext = excluded.ciphertext,
		nonce = excluded.nonce,
		fetched_at = excluded.fetched_at`

	if _, err := s.db.ExecContext(ctx, query, sessionID, ciphertext, header, time.Now().Unix()); err != nil {
		return fmt.Errorf("store briefing: %w", err)
	}
	return nil
}

// GetBriefing returns the cached briefing snapshot and when it was fetched.
func (s *Store) GetBriefing(ctx context.Context, sessionID string) ([]byte, time.Time, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT ciphertext, nonce, fetched_at FROM briefing_cache WHERE session_id = ?`, sessionID)

	var ciphertext, header []byte
	var fetchedAt int64
	err := row.Scan(&ciphertext, &header, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, ErrNotCached
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("scan briefing row: %w", err)
	}

	markdown := ciphertext
	if s.encrypt {
		markdown, err = s.cipher.Open(ciphertext, header)
		if err != nil {
			return nil, time.Time{}, err
		}
	}
	return markdown, time.Unix(fetchedAt, 0), nil
}
