package models

import "time"

// ChatMessage stores one chatbot exchange.
type ChatMessage struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	Query     string    `db:"query" json:"query"`
	Response  string    `db:"response" json:"response"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
