package chats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const uniqueViolation = "23505"

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	CreateChat(ctx context.Context, userID uuid.UUID, sessionID, provider string) (*types.Chat, error)
	GetChat(ctx context.Context, id uuid.UUID) (*types.Chat, error)
	GetChatBySessionID(ctx context.Context, sessionID string) (*types.Chat, error)
	ListChatsByUser(ctx context.Context, userID uuid.UUID) ([]types.Chat, error)

	CreateMessage(ctx context.Context, chatID uuid.UUID, role string, content json.RawMessage) (*types.ChatMessage, error)
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]types.ChatMessage, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     database.Querier
}

func NewRepositoryImpl(db database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

var chatColumns = []string{"id", "user_id", "session_id", "model_provider", "created_at"}

// CreateChat opens a thread. A session id already in use yields types.ErrConflict.
func (r *RepositoryImpl) CreateChat(ctx context.Context, userID uuid.UUID, sessionID, provider string) (*types.Chat, error) {
	query, args, err := database.Psql.Insert("chats").
		Columns("user_id", "session_id", "model_provider").
		Values(userID, sessionID, provider).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert chat query: %w", err)
	}

	chat := &types.Chat{UserID: userID, SessionID: sessionID, ModelProvider: provider}
	if err = r.db.QueryRow(ctx, query, args...).Scan(&chat.ID, &chat.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("chat session %q: %w", sessionID, types.ErrConflict)
		}
		metrics.RecordDBError(ctx, "chats.create_chat")
		r.logger.ErrorContext(ctx, "Failed to insert chat", slog.Any("error", err))
		return nil, fmt.Errorf("failed to insert chat: %w", err)
	}
	return chat, nil
}

func (r *RepositoryImpl) GetChat(ctx context.Context, id uuid.UUID) (*types.Chat, error) {
	return r.getChat(ctx, sq.Eq{"id": id})
}

func (r *RepositoryImpl) GetChatBySessionID(ctx context.Context, sessionID string) (*types.Chat, error) {
	return r.getChat(ctx, sq.Eq{"session_id": sessionID})
}

func (r *RepositoryImpl) getChat(ctx context.Context, where sq.Eq) (*types.Chat, error) {
	query, args, err := database.Psql.Select(chatColumns...).From("chats").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build chat query: %w", err)
	}

	var c types.Chat
	err = r.db.QueryRow(ctx, query, args...).Scan(&c.ID, &c.UserID, &c.SessionID, &c.ModelProvider, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("chat: %w", types.ErrNotFound)
		}
		metrics.RecordDBError(ctx, "chats.get_chat")
		return nil, fmt.Errorf("failed to fetch chat: %w", err)
	}
	return &c, nil
}

// ListChatsByUser returns the user's chats newest first.
func (r *RepositoryImpl) ListChatsByUser(ctx context.Context, userID uuid.UUID) ([]types.Chat, error) {
	query, args, err := database.Psql.Select(chatColumns...).
		From("chats").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build chat list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError(ctx, "chats.list_chats")
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	chats := []types.Chat{}
	for rows.Next() {
		var c types.Chat
		if err := rows.Scan(&c.ID, &c.UserID, &c.SessionID, &c.ModelProvider, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat row: %w", err)
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat rows: %w", err)
	}
	return chats, nil
}

func (r *RepositoryImpl) CreateMessage(ctx context.Context, chatID uuid.UUID, role string, content json.RawMessage) (*types.ChatMessage, error) {
	query, args, err := database.Psql.Insert("chat_messages").
		Columns("chat_id", "role", "content").
		Values(chatID, role, content).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert chat message query: %w", err)
	}

	msg := &types.ChatMessage{ChatID: chatID, Role: role, Content: content}
	if err = r.db.QueryRow(ctx, query, args...).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		metrics.RecordDBError(ctx, "chats.create_message")
		r.logger.ErrorContext(ctx, "Failed to insert chat message", slog.Any("error", err))
		return nil, fmt.Errorf("failed to insert chat message: %w", err)
	}
	return msg, nil
}

// ListMessages returns a chat's messages oldest first.
func (r *RepositoryImpl) ListMessages(ctx context.Context, chatID uuid.UUID) ([]types.ChatMessage, error) {
	query, args, err := database.Psql.Select("id", "chat_id", "role", "content", "created_at").
		From("chat_messages").
		Where(sq.Eq{"chat_id": chatID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build chat message query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError(ctx, "chats.list_messages")
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	messages := []types.ChatMessage{}
	for rows.Next() {
		var m types.ChatMessage
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat message rows: %w", err)
	}
	return messages, nil
}
