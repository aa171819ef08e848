package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ChatRepository stores tutor conversations.
type ChatRepository struct {
	db DBTX
}

// NewChatRepository builds a chat repository.
func NewChatRepository(db DBTX) *ChatRepository {
	return &ChatRepository{db: db}
}

// Append stores a batch of messages atomically.
func (r *ChatRepository) Append(ctx context.Context, msgs ...ChatMessage) error {
	return withTx(ctx, r.db, func(tx DBTX) error {
		for _, m := range msgs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO chat_messages (user_id, role, personality, content, created_at)
				 VALUES ($1, $2, $3, $4, $5)`,
				m.UserID, m.Role, m.Personality, m.Content, m.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert chat message: %w", err)
			}
		}
		return nil
	})
}

// History returns the user's latest messages in chronological order.
func (r *ChatRepository) History(ctx context.Context, userID uuid.UUID, limit int) ([]ChatMessage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, role, personality, content, created_at FROM (
		     SELECT * FROM chat_messages WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
		 ) recent ORDER BY created_at`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Personality, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
