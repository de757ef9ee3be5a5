package chats

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

var chatCols = []string{"id", "user_id", "session_id", "model_provider", "created_at"}

func TestRepositoryCreateChat(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("inserts", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := uuid.New()
		mock.ExpectQuery(`INSERT INTO chats \(user_id,session_id,model_provider\) VALUES \(\$1,\$2,\$3\) RETURNING id, created_at`).
			WithArgs(userID, "s-1", "gemini").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), time.Now()))

		chat, err := NewRepositoryImpl(mock, testLogger()).CreateChat(ctx, userID, "s-1", "gemini")
		require.NoError(t, err)
		assert.Equal(t, id, chat.ID)
		assert.Equal(t, userID, chat.UserID)
		assert.Equal(t, "s-1", chat.SessionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("session id taken", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`INSERT INTO chats`).
			WithArgs(userID, "s-1", "gemini").
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

		_, err = NewRepositoryImpl(mock, testLogger()).CreateChat(ctx, userID, "s-1", "gemini")
		assert.ErrorIs(t, err, types.ErrConflict)
	})
}

func TestRepositoryGetChat(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id, userID, missing := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT id, user_id, session_id, model_provider, created_at FROM chats WHERE id = \$1 LIMIT 1`).
		WithArgs(id.String()).
		WillReturnRows(pgxmock.NewRows(chatCols).AddRow(id.String(), userID.String(), "s-1", "openai", time.Now()))
	mock.ExpectQuery(`FROM chats WHERE session_id = \$1 LIMIT 1`).
		WithArgs("s-1").
		WillReturnRows(pgxmock.NewRows(chatCols).AddRow(id.String(), userID.String(), "s-1", "openai", time.Now()))
	mock.ExpectQuery(`FROM chats WHERE id = \$1`).
		WithArgs(missing.String()).
		WillReturnError(pgx.ErrNoRows)

	repo := NewRepositoryImpl(mock, testLogger())
	chat, err := repo.GetChat(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, userID, chat.UserID)
	assert.Equal(t, "openai", chat.ModelProvider)

	chat, err = repo.GetChatBySessionID(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, id, chat.ID)

	_, err = repo.GetChat(context.Background(), missing)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListChatsByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, session_id, model_provider, created_at FROM chats WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs(userID.String()).
		WillReturnRows(pgxmock.NewRows(chatCols).
			AddRow(uuid.NewString(), userID.String(), "newer", "gemini", now).
			AddRow(uuid.NewString(), userID.String(), "older", "gemini", now.Add(-time.Hour)))

	chats, err := NewRepositoryImpl(mock, testLogger()).ListChatsByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "newer", chats[0].SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListChatsByUserEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	mock.ExpectQuery(`FROM chats WHERE user_id = \$1`).
		WithArgs(userID.String()).
		WillReturnRows(pgxmock.NewRows(chatCols))

	chats, err := NewRepositoryImpl(mock, testLogger()).ListChatsByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, chats)
	assert.Empty(t, chats)
}

func TestRepositoryMessages(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	chatID, msgID := uuid.New(), uuid.New()
	content := json.RawMessage(`{"text":"Which forts are near Colaba?"}`)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO chat_messages \(chat_id,role,content\) VALUES \(\$1,\$2,\$3\) RETURNING id, created_at`).
		WithArgs(chatID, "user", content).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(msgID.String(), now))
	mock.ExpectQuery(`SELECT id, chat_id, role, content, created_at FROM chat_messages WHERE chat_id = \$1 ORDER BY created_at ASC, id ASC`).
		WithArgs(chatID.String()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "chat_id", "role", "content", "created_at"}).
			AddRow(msgID.String(), chatID.String(), "user", content, now).
			AddRow(uuid.NewString(), chatID.String(), "assistant", json.RawMessage(`"Try Sion Fort."`), now.Add(time.Second)))

	repo := NewRepositoryImpl(mock, testLogger())
	msg, err := repo.CreateMessage(context.Background(), chatID, "user", content)
	require.NoError(t, err)
	assert.Equal(t, msgID, msg.ID)
	assert.Equal(t, chatID, msg.ChatID)

	messages, err := repo.ListMessages(context.Background(), chatID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.JSONEq(t, `"Try Sion Fort."`, string(messages[1].Content))
	assert.NoError(t, mock.ExpectationsWereMet())
}
