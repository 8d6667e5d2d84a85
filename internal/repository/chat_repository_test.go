package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatListRecentClampsLimit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	mock.ExpectQuery("FROM chat_messages WHERE user_id = \\$1 ORDER BY created_at DESC, id DESC LIMIT \\$2").
		WithArgs(int64(9), 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "query", "response", "created_at"}).AddRow(1, 9, "when is hw1 due?", "HW1 is due ...", time.Now()))

	items, err := repo.ListRecent(context.Background(), 9, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
