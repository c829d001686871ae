package database

import (
	"context"
	"fmt"
)

// schema is applied idempotently at startup
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'user',
		is_approved   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		video_id      TEXT NOT NULL,
		video_url     TEXT NOT NULL,
		video_title   TEXT NOT NULL,
		thumbnail_url TEXT NOT NULL DEFAULT '',
		summary       TEXT NOT NULL,
		transcript    TEXT NOT NULL DEFAULT '',
		strategy      TEXT NOT NULL DEFAULT '',
		export_key    TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_user_created ON notes (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_users_pending ON users (is_approved) WHERE NOT is_approved`,
}

// Migrate creates the tables and indexes if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	return nil
}
