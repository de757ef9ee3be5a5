package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Chat message roles accepted by the chat endpoints.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

// Chat is a conversation thread owned by one user. SessionID is the
// client-facing handle and is unique across all chats.
type Chat struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	SessionID     string    `json:"sessionId" example:"trip-planning-7f3a"`
	ModelProvider string    `json:"modelProvider" example:"gemini"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ChatMessage struct {
	ID        uuid.UUID       `json:"id"`
	ChatID    uuid.UUID       `json:"chatId"`
	Role      string          `json:"role" example:"user"`
	Content   json.RawMessage `json:"content" swaggertype:"object"`
	CreatedAt time.Time       `json:"createdAt"`
}

type CreateChatRequest struct {
	SessionID     string `json:"sessionId,omitempty"`
	ModelProvider string `json:"modelProvider,omitempty"`
}

type ChatMessageRequest struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content" swaggertype:"object"`
}
