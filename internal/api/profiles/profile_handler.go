package profiles

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

const (
	msgItineraryNotFound = "Itinerary not found"
	msgNotOwner          = "Unauthorized"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// callerID reads the user id placed on the context by auth.Authenticate.
func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := auth.UserUUIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusForbidden, "Invalid or expired token")
	}
	return userID, ok
}

// GetProfile godoc
// @Summary      Current user's profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  types.ProfileResponse
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/profile [get]
func (h *HandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ProfileHandler").Start(r.Context(), "GetProfile", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/profile"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetProfile"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	profile, err := h.service.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch profile", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary      Edit the current user's email and name
// @Description  Absent fields are unchanged; an empty string clears the field.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body  types.UpdateProfileRequest  true  "Contact details"
// @Success      200  {object}  types.User
// @Failure      400  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/profile [put]
func (h *HandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ProfileHandler").Start(r.Context(), "UpdateProfile", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/profile"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "UpdateProfile"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req types.UpdateProfileRequest
	if err := api.DecodeJSONBodyLenient(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.UpdateProfile(ctx, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoChanges):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Email or name is required")
		case errors.Is(err, ErrInvalidEmail):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid email address")
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Name is too long")
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, "Email already in use")
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
		default:
			l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}
	l.InfoContext(ctx, "Profile updated", slog.String("user.id", userID.String()))
	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

// ListItineraries godoc
// @Summary      Saved itineraries, newest first
// @Tags         profile
// @Produce      json
// @Success      200  {array}  types.ItinerarySummary
// @Security     BearerAuth
// @Router       /api/profile/itineraries [get]
func (h *HandlerImpl) ListItineraries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ListItineraries"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	summaries, err := h.service.ListItineraries(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch itineraries")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summaries)
}

// SaveItinerary godoc
// @Summary      Save an itinerary to the profile
// @Description  The owner is always the authenticated user; a userId in the body is ignored.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body  types.SaveItineraryRequest  true  "Itinerary"
// @Success      200  {object}  types.SavedItinerary
// @Failure      400  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/profile/itineraries [post]
func (h *HandlerImpl) SaveItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ProfileHandler").Start(r.Context(), "SaveItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/profile/itineraries"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "SaveItinerary"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req types.SaveItineraryRequest
	if err := api.DecodeJSONBodyLenient(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing required fields")
		return
	}

	saved, err := h.service.SaveItinerary(ctx, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Missing required fields")
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Itinerary data must contain between 1 and days day plans")
		default:
			l.ErrorContext(ctx, "Failed to save itinerary", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save itinerary")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, saved)
}

// GetItinerary godoc
// @Summary      Read a saved itinerary
// @Tags         profile
// @Produce      json
// @Param        id   path  string  true  "Itinerary id"
// @Success      200  {object}  types.SavedItinerary
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/profile/itineraries/{id} [get]
func (h *HandlerImpl) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetItinerary"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, msgItineraryNotFound)
		return
	}

	it, err := h.service.GetItinerary(ctx, userID, id)
	if err != nil {
		h.writeItineraryError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, it)
}

// DeleteItinerary godoc
// @Summary      Delete a saved itinerary
// @Tags         profile
// @Produce      json
// @Param        id   path  string  true  "Itinerary id"
// @Success      200  {object}  types.MessageResponse
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/profile/itineraries/{id} [delete]
func (h *HandlerImpl) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteItinerary"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, msgItineraryNotFound)
		return
	}

	if err := h.service.DeleteItinerary(ctx, userID, id); err != nil {
		h.writeItineraryError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.MessageResponse{Message: "Itinerary deleted successfully"})
}

func (h *HandlerImpl) writeItineraryError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, msgItineraryNotFound)
	case errors.Is(err, types.ErrOwnership):
		l.WarnContext(r.Context(), "Itinerary access by non-owner", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusForbidden, msgNotOwner)
	default:
		l.ErrorContext(r.Context(), "Itinerary operation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to process itinerary")
	}
}

// GetHistory godoc
// @Summary      Visit history, newest first
// @Tags         profile
// @Produce      json
// @Success      200  {array}  types.HistoryEntry
// @Security     BearerAuth
// @Router       /api/profile/history [get]
func (h *HandlerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetHistory"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	history, err := h.service.History(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch history", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch history")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, history)
}

// RecordVisit godoc
// @Summary      Record a POI visit
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body  types.RecordVisitRequest  true  "Visited POI"
// @Success      201  {object}  types.VisitHistory
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/profile/history [post]
func (h *HandlerImpl) RecordVisit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "RecordVisit"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req types.RecordVisitRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	poiID, err := uuid.Parse(req.POIID)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid POI ID format")
		return
	}

	visit, err := h.service.RecordVisit(ctx, userID, poiID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "POI not found")
			return
		}
		l.ErrorContext(ctx, "Failed to record visit", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to record visit")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, visit)
}

// SubmitSurvey godoc
// @Summary      Submit a travel preferences survey
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body  types.SurveyRequest  true  "Answers"
// @Success      201  {object}  types.Survey
// @Failure      400  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/profile/survey [post]
func (h *HandlerImpl) SubmitSurvey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "SubmitSurvey"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req types.SurveyRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	survey, err := h.service.SubmitSurvey(ctx, userID, req.Answers)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Survey answers are required")
			return
		}
		l.ErrorContext(ctx, "Failed to save survey", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save survey")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, survey)
}
