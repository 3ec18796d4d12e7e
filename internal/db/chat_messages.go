package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveMessage inserts a chat message and fills in its ID and CreatedAt
func (db *DB) SaveMessage(ctx context.Context, msg *ChatMessage) error {
	if msg == nil {
		return fmt.Errorf("message is required")
	}
	if msg.Role != RoleUser && msg.Role != RoleAssistant {
		return fmt.Errorf("invalid message role: %q", msg.Role)
	}
	topics := msg.Topics
	if topics == nil {
		topics = []string{}
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO chat_messages (user_id, role, content, mood, topics)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		msg.UserID, msg.Role, msg.Content, msg.Mood, topics,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save %s message: %w", msg.Role, err)
	}
	return nil
}

// UpdateMessageMetadata sets the extracted mood and topics on a message
func (db *DB) UpdateMessageMetadata(ctx context.Context, id uuid.UUID, mood string, topics []string) error {
	if topics == nil {
		topics = []string{}
	}
	_, err := db.pool.Exec(ctx,
		`UPDATE chat_messages SET mood = $1, topics = $2 WHERE id = $3`,
		mood, topics, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update message metadata: %w", err)
	}
	return nil
}

// ListRecentMessages returns the user's latest messages, oldest first
func (db *DB) ListRecentMessages(ctx context.Context, userID uuid.UUID, limit int) ([]ChatMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, role, content, mood, topics, created_at FROM (
			SELECT id, user_id, role, content, mood, topics, created_at
			FROM chat_messages WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		 ) recent ORDER BY created_at ASC, id ASC`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ChatMessage, error) {
		var m ChatMessage
		err := row.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.Mood, &m.Topics, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan messages: %w", err)
	}
	return messages, nil
}
