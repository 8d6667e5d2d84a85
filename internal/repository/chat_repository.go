package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-dashboard/internal/models"
)

// ChatRepository persists chatbot exchanges.
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository constructs the repository.
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create stores one exchange.
func (r *ChatRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	const query = `INSERT INTO chat_messages (user_id, query, response) VALUES ($1, $2, $3) RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, msg.UserID, msg.Query, msg.Response).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("create chat message: %w", err)
	}
	return nil
}

// ListRecent returns the latest exchanges of a user, newest first.
func (r *ChatRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items := []models.ChatMessage{}
	const query = `SELECT id, user_id, query, response, created_at FROM chat_messages WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	if err := r.db.SelectContext(ctx, &items, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return items, nil
}
