package db

import (
	"context"
	"fmt"
)

// schemaStatements create the tables this package reads and writes.
// Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		phone         TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		password_set  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS birth_profiles (
		user_id    UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		birth_at   TIMESTAMPTZ NOT NULL,
		timezone   TEXT NOT NULL,
		hour_known BOOLEAN NOT NULL DEFAULT TRUE,
		type_code  TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role       TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
		content    TEXT NOT NULL,
		mood       TEXT NOT NULL DEFAULT '',
		topics     TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS chat_messages_user_created_idx
		ON chat_messages (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS memories (
		id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id           UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content           TEXT NOT NULL,
		source_message_id UUID REFERENCES chat_messages(id) ON DELETE SET NULL,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, content)
	)`,
}

// EnsureSchema creates any missing tables and indexes
func (db *DB) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
