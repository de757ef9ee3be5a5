package chats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/api/analytics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const maxSessionIDLength = 128

var (
	ErrInvalidSessionID = fmt.Errorf("%w: session id must be at most %d characters", types.ErrValidation, maxSessionIDLength)
	ErrInvalidProvider  = fmt.Errorf("%w: model provider must be %q or %q", types.ErrValidation, config.ProviderOpenAI, config.ProviderGemini)
	ErrInvalidRole      = fmt.Errorf("%w: role must be user, assistant or system", types.ErrValidation)
	ErrEmptyContent     = fmt.Errorf("%w: message content is required", types.ErrValidation)
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ListChats(ctx context.Context, userID uuid.UUID) ([]types.Chat, error)
	CreateChat(ctx context.Context, userID uuid.UUID, req types.CreateChatRequest) (*types.Chat, error)
	GetChat(ctx context.Context, userID, chatID uuid.UUID) (*types.Chat, error)
	GetChatBySession(ctx context.Context, userID uuid.UUID, sessionID string) (*types.Chat, error)
	Messages(ctx context.Context, userID, chatID uuid.UUID) ([]types.ChatMessage, error)
	AddMessage(ctx context.Context, userID, chatID uuid.UUID, req types.ChatMessageRequest) (*types.ChatMessage, error)
}

type ServiceImpl struct {
	logger          *slog.Logger
	repo            Repository
	tracker         analytics.Tracker
	defaultProvider string
}

// NewServiceImpl builds the chat service. Chats opened without a provider
// are tagged with defaultProvider.
func NewServiceImpl(repo Repository, tracker analytics.Tracker, defaultProvider string, logger *slog.Logger) *ServiceImpl {
	if defaultProvider == "" {
		defaultProvider = config.ProviderGemini
	}
	return &ServiceImpl{logger: logger, repo: repo, tracker: tracker, defaultProvider: defaultProvider}
}

func (s *ServiceImpl) ListChats(ctx context.Context, userID uuid.UUID) ([]types.Chat, error) {
	chats, err := s.repo.ListChatsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	return chats, nil
}

// CreateChat opens a thread for userID. An empty session id is replaced by a
// generated one.
func (s *ServiceImpl) CreateChat(ctx context.Context, userID uuid.UUID, req types.CreateChatRequest) (*types.Chat, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "CreateChat", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if len(sessionID) > maxSessionIDLength {
		return nil, ErrInvalidSessionID
	}

	provider := strings.ToLower(strings.TrimSpace(req.ModelProvider))
	switch provider {
	case "":
		provider = s.defaultProvider
	case config.ProviderOpenAI, config.ProviderGemini:
	default:
		return nil, ErrInvalidProvider
	}

	chat, err := s.repo.CreateChat(ctx, userID, sessionID, provider)
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}

	s.tracker.Track(ctx, &userID, types.EventChatStarted, map[string]string{
		"chatId":   chat.ID.String(),
		"provider": chat.ModelProvider,
	})
	return chat, nil
}

// GetChat enforces ownership: a chat owned by someone else is ErrOwnership.
func (s *ServiceImpl) GetChat(ctx context.Context, userID, chatID uuid.UUID) (*types.Chat, error) {
	chat, err := s.repo.GetChat(ctx, chatID)
	return s.owned(userID, chat, err)
}

func (s *ServiceImpl) GetChatBySession(ctx context.Context, userID uuid.UUID, sessionID string) (*types.Chat, error) {
	chat, err := s.repo.GetChatBySessionID(ctx, sessionID)
	return s.owned(userID, chat, err)
}

func (s *ServiceImpl) owned(userID uuid.UUID, chat *types.Chat, err error) (*types.Chat, error) {
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	if chat.UserID != userID {
		return nil, fmt.Errorf("chat %s: %w", chat.ID, types.ErrOwnership)
	}
	return chat, nil
}

func (s *ServiceImpl) Messages(ctx context.Context, userID, chatID uuid.UUID) ([]types.ChatMessage, error) {
	if _, err := s.GetChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	messages, err := s.repo.ListMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	return messages, nil
}

// AddMessage appends to a chat the caller owns. Content is any JSON value
// except null.
func (s *ServiceImpl) AddMessage(ctx context.Context, userID, chatID uuid.UUID, req types.ChatMessageRequest) (*types.ChatMessage, error) {
	role := strings.ToLower(strings.TrimSpace(req.Role))
	switch role {
	case types.ChatRoleUser, types.ChatRoleAssistant, types.ChatRoleSystem:
	default:
		return nil, ErrInvalidRole
	}
	content := bytes.TrimSpace(req.Content)
	if len(content) == 0 || bytes.Equal(content, []byte("null")) || bytes.Equal(content, []byte(`""`)) {
		return nil, ErrEmptyContent
	}

	if _, err := s.GetChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	msg, err := s.repo.CreateMessage(ctx, chatID, role, json.RawMessage(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	return msg, nil
}
