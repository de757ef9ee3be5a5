package itinerary

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	msgMissingFields = "Missing required fields: duration and interests are required"
	msgNoMatches     = "No attractions found matching your interests. Try different categories."
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// GenerateItinerary godoc
// @Summary      Generate an itinerary
// @Description  Builds day plans from the POI catalog. Uses a hosted model when one is configured, otherwise a rule-based planner. The result is not saved.
// @Tags         itinerary
// @Accept       json
// @Produce      json
// @Param        body  body  types.GenerateItineraryRequest  true  "Trip parameters"
// @Success      200  {array}   types.DayPlan
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/itinerary/generate [post]
func (h *HandlerImpl) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GenerateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/itinerary/generate"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "GenerateItinerary"))

	userID, ok := auth.UserUUIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusForbidden, "Invalid or expired token")
		return
	}

	var req types.GenerateItineraryRequest
	if err := api.DecodeJSONBodyLenient(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid generation request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, msgMissingFields)
		return
	}

	plans, err := h.service.Generate(ctx, userID, req)
	if err != nil {
		var genErr *types.GenerationError
		switch {
		case errors.Is(err, ErrMissingFields):
			api.ErrorResponse(w, r, http.StatusBadRequest, msgMissingFields)
		case errors.Is(err, ErrTripTooLong):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Duration must be between 1 and 30 days")
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Travelers must be at least 1")
		case errors.Is(err, types.ErrEmptyResult):
			api.ErrorResponse(w, r, http.StatusBadRequest, msgNoMatches)
		case errors.As(err, &genErr):
			api.ErrorResponse(w, r, http.StatusInternalServerError, genErr.UserMessage())
		default:
			l.ErrorContext(ctx, "Itinerary generation failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, types.NewGenerationError(types.GenerationReasonGeneric, err).UserMessage())
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, plans)
}
