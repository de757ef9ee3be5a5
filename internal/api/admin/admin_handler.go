package admin

import (
	"errors"
	"log/slog"
	"net/http"

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

// Login godoc
// @Summary      Admin login
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  types.AdminLoginRequest  true  "Credentials"
// @Success      200  {object}  types.AdminLoginResponse
// @Failure      401  {object}  map[string]interface{}
// @Router       /api/admin/login [post]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "AdminLogin"))

	var req types.AdminLoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, types.ErrUnauthenticated):
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid credentials")
		default:
			l.ErrorContext(ctx, "Admin login failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Login failed")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
