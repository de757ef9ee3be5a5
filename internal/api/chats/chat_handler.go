package chats

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const msgChatNotFound = "Chat not found"

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := auth.UserUUIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusForbidden, "Invalid or expired token")
	}
	return userID, ok
}

// chatID parses the {id} path segment; a malformed id reads as not found.
func chatID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, msgChatNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// ListChats godoc
// @Summary      Chats of the current user, newest first
// @Tags         chats
// @Produce      json
// @Success      200  {array}  types.Chat
// @Security     BearerAuth
// @Router       /api/profile/chats [get]
func (h *HandlerImpl) ListChats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListChats"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	chats, err := h.service.ListChats(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list chats", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch chats")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, chats)
}

// CreateChat godoc
// @Summary      Open a chat session
// @Description  A missing sessionId is generated; a missing modelProvider uses the configured provider.
// @Tags         chats
// @Accept       json
// @Produce      json
// @Param        body  body  types.CreateChatRequest  false  "Session"
// @Success      201  {object}  types.Chat
// @Failure      400  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/profile/chats [post]
func (h *HandlerImpl) CreateChat(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "CreateChat", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/profile/chats"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "CreateChat"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req types.CreateChatRequest
	if r.ContentLength != 0 {
		if err := api.DecodeJSONBodyLenient(w, r, &req); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	chat, err := h.service.CreateChat(ctx, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, "Chat session already exists")
		default:
			l.ErrorContext(ctx, "Failed to create chat", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create chat")
		}
		return
	}
	l.InfoContext(ctx, "Chat created", slog.String("chat.id", chat.ID.String()))
	api.WriteJSONResponse(w, r, http.StatusCreated, chat)
}

// GetChat godoc
// @Summary      Read a chat
// @Tags         chats
// @Produce      json
// @Param        id   path  string  true  "Chat id"
// @Success      200  {object}  types.Chat
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/profile/chats/{id} [get]
func (h *HandlerImpl) GetChat(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "GetChat"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := chatID(w, r)
	if !ok {
		return
	}
	chat, err := h.service.GetChat(r.Context(), userID, id)
	if err != nil {
		h.writeChatError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, chat)
}

// GetChatBySession godoc
// @Summary      Read a chat by its session id
// @Tags         chats
// @Produce      json
// @Param        sessionId  path  string  true  "Session id"
// @Success      200  {object}  types.Chat
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/profile/chats/session/{sessionId} [get]
func (h *HandlerImpl) GetChatBySession(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "GetChatBySession"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	chat, err := h.service.GetChatBySession(r.Context(), userID, chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeChatError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, chat)
}

// ListMessages godoc
// @Summary      Messages of a chat, oldest first
// @Tags         chats
// @Produce      json
// @Param        id   path  string  true  "Chat id"
// @Success      200  {array}  types.ChatMessage
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/profile/chats/{id}/messages [get]
func (h *HandlerImpl) ListMessages(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "ListMessages"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := chatID(w, r)
	if !ok {
		return
	}
	messages, err := h.service.Messages(r.Context(), userID, id)
	if err != nil {
		h.writeChatError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, messages)
}

// AddMessage godoc
// @Summary      Append a message to a chat
// @Tags         chats
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "Chat id"
// @Param        body  body  types.ChatMessageRequest  true  "Message"
// @Success      201  {object}  types.ChatMessage
// @Failure      400  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/profile/chats/{id}/messages [post]
func (h *HandlerImpl) AddMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "AddMessage", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/profile/chats/{id}/messages"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "AddMessage"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := chatID(w, r)
	if !ok {
		return
	}
	var req types.ChatMessageRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.service.AddMessage(ctx, userID, id, req)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.writeChatError(w, r.WithContext(ctx), l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, msg)
}

func (h *HandlerImpl) writeChatError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, msgChatNotFound)
	case errors.Is(err, types.ErrOwnership):
		l.WarnContext(r.Context(), "Chat access by non-owner", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusForbidden, "Unauthorized")
	default:
		l.ErrorContext(r.Context(), "Chat operation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to process chat")
	}
}
