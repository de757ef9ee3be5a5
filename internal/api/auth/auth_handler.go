package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// Register godoc
// @Summary      Register a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  types.RegisterRequest  true  "Credentials"
// @Success      200  {object}  types.AuthResponse
// @Failure      400  {object}  map[string]interface{}
// @Router       /api/auth/register [post]
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Register", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/auth/register"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "Register"))

	var req types.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Username already exists")
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Username and password are required")
		default:
			l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Registration failed")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Login godoc
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  types.LoginRequest  true  "Credentials"
// @Success      200  {object}  types.AuthResponse
// @Failure      401  {object}  map[string]interface{}
// @Router       /api/auth/login [post]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/auth/login"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrUnauthenticated):
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Username and password are required")
		default:
			l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Login failed")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Validate godoc
// @Summary      Validate the current token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  types.ValidateResponse
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/auth/validate [get]
func (h *HandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Validate"))

	userID, ok := UserUUIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusForbidden, "Invalid or expired token")
		return
	}

	user, err := h.service.Validate(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Token validation lookup failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to validate token")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.ValidateResponse{User: *user})
}
