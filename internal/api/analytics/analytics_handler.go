package analytics

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const defaultWindow = 30 * 24 * time.Hour

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// Summary godoc
// @Summary      Analytics summary
// @Description  Event counts by kind, unique users and latest events in a date range (default: last 30 days)
// @Tags         admin
// @Produce      json
// @Param        from  query  string  false  "Range start (RFC3339 or YYYY-MM-DD)"
// @Param        to    query  string  false  "Range end, exclusive (RFC3339 or YYYY-MM-DD)"
// @Success      200  {object}  types.AnalyticsSummary
// @Failure      400  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/admin/analytics [get]
func (h *HandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AnalyticsHandler").Start(r.Context(), "Summary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/admin/analytics"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "Summary"))

	now := time.Now().UTC()
	to, err := parseTime(r.URL.Query().Get("to"), now)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid 'to' parameter")
		return
	}
	from, err := parseTime(r.URL.Query().Get("from"), to.Add(-defaultWindow))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid 'from' parameter")
		return
	}

	summary, err := h.service.Summary(ctx, from, to)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "'from' must be before 'to'")
			return
		}
		l.ErrorContext(ctx, "Failed to build analytics summary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch analytics")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summary)
}

// Events godoc
// @Summary      List analytics events
// @Tags         admin
// @Produce      json
// @Param        kind    query  string  false  "Event kind"
// @Param        userId  query  string  false  "User id"
// @Param        limit   query  int     false  "Maximum events (default 100)"
// @Success      200  {array}  types.AnalyticsEvent
// @Security     BearerAuth
// @Router       /api/admin/analytics/events [get]
func (h *HandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Events"))

	limit, err := api.QueryUint(r, "limit", 100)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var events []types.AnalyticsEvent
	switch q := r.URL.Query(); {
	case q.Get("userId") != "":
		userID, parseErr := uuid.Parse(q.Get("userId"))
		if parseErr != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
			return
		}
		events, err = h.service.EventsByUser(ctx, userID, limit)
	case q.Get("kind") != "":
		events, err = h.service.EventsByKind(ctx, q.Get("kind"), limit)
	default:
		api.ErrorResponse(w, r, http.StatusBadRequest, "Either 'kind' or 'userId' is required")
		return
	}
	if err != nil {
		l.ErrorContext(ctx, "Failed to list analytics events", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch analytics events")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, events)
}

func parseTime(raw string, def time.Time) (time.Time, error) {
	if raw == "" {
		return def, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}
