// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/genstudio-tui/internal/model"
)

const chatSchema = `
CREATE TABLE IF NOT EXISTS chats (
	scope      TEXT    NOT NULL,
	id         TEXT    NOT NULL,
	title      TEXT    NOT NULL DEFAULT '',
	archived   INTEGER NOT NULL DEFAULT 0,
	created_at TEXT    NOT NULL DEFAULT '',
	updated_at TEXT    NOT NULL DEFAULT '',
	position   INTEGER NOT NULL,
	PRIMARY KEY (scope, id)
);
CREATE INDEX IF NOT EXISTS idx_chats_scope_position ON chats(scope, position);
`

// ChatCache mirrors the server chat list into SQLite. The scope separates
// accounts and backends sharing one cache file.
type ChatCache struct {
	db *sql.DB
}

// OpenChatCache opens (or creates) the cache database at path.
func OpenChatCache(path string) (*ChatCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(chatSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &ChatCache{db: db}, nil
}

// Replace stores sessions as the complete list for scope, in order.
// Sessions without an id are skipped.
func (c *ChatCache) Replace(ctx context.Context, scope string, sessions []model.ChatSession) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chats WHERE scope = ?", scope); err != nil {
		return fmt.Errorf("failed to clear cached chats: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chats (scope, id, title, archived, created_at, updated_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range sessions {
		if !s.Saved() {
			continue
		}
		archived := 0
		if s.Archived {
			archived = 1
		}
		if _, err := stmt.ExecContext(ctx, scope, s.ID.String(), s.Title, archived,
			formatTime(s.CreatedAt), formatTime(s.UpdatedAt), i); err != nil {
			return fmt.Errorf("failed to cache chat %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cached chats: %w", err)
	}
	return nil
}

// List returns the cached sessions for scope in their stored order.
func (c *ChatCache) List(ctx context.Context, scope string) ([]model.ChatSession, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, title, archived, created_at, updated_at
		FROM chats WHERE scope = ? ORDER BY position`, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached chats: %w", err)
	}
	defer rows.Close()

	sessions := []model.ChatSession{}
	for rows.Next() {
		var (
			s                model.ChatSession
			id               string
			archived         int
			created, updated string
		)
		if err := rows.Scan(&id, &s.Title, &archived, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan cached chat: %w", err)
		}
		s.ID = model.ID(id)
		s.Archived = archived != 0
		s.CreatedAt = parseTime(created)
		s.UpdatedAt = parseTime(updated)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Close closes the database.
func (c *ChatCache) Close() error {
	return c.db.Close()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
