package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveMemory stores a memory sentence for the user. Duplicate sentences are
// ignored; the returned bool reports whether a row was inserted.
func (db *DB) SaveMemory(ctx context.Context, userID uuid.UUID, content string, source *uuid.UUID) (bool, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return false, fmt.Errorf("memory content cannot be empty")
	}
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO memories (user_id, content, source_message_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, content) DO NOTHING
		 RETURNING id`,
		userID, content, source,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to save memory: %w", err)
	}
	return true, nil
}

// ListMemories returns the user's memories, newest first
func (db *DB) ListMemories(ctx context.Context, userID uuid.UUID, limit int) ([]Memory, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, content, source_message_id, created_at
		 FROM memories WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}

	memories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Memory, error) {
		var m Memory
		err := row.Scan(&m.ID, &m.UserID, &m.Content, &m.SourceMessageID, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan memories: %w", err)
	}
	return memories, nil
}
