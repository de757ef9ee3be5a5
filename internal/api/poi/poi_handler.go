package poi

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
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// ListPOIs godoc
// @Summary      List points of interest
// @Tags         pois
// @Produce      json
// @Param        category  query  string  false  "Exact category, case-insensitive"
// @Param        q         query  string  false  "Search in title, description and category"
// @Param        limit     query  int     false  "Page size (default 50, max 100)"
// @Param        offset    query  int     false  "Rows to skip"
// @Success      200  {array}  types.POI
// @Router       /api/pois [get]
func (h *HandlerImpl) ListPOIs(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "ListPOIs", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/pois"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "ListPOIs"))

	limit, err := api.QueryUint(r, "limit", 0)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := api.QueryUint(r, "offset", 0)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pois, err := h.service.List(ctx, types.POIFilter{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to list POIs", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch POIs")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, pois)
}

// GetPOI godoc
// @Summary      Get a point of interest
// @Tags         pois
// @Produce      json
// @Param        id   path  string  true  "POI id"
// @Success      200  {object}  types.POI
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/pois/{id} [get]
func (h *HandlerImpl) GetPOI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetPOI"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "POI not found")
		return
	}

	p, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "POI not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch POI", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch POI")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// CreatePOI godoc
// @Summary      Create a point of interest
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  types.POIInput  true  "POI"
// @Success      201  {object}  types.POI
// @Failure      400  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/admin/pois [post]
func (h *HandlerImpl) CreatePOI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreatePOI"))

	var in types.POIInput
	if err := api.DecodeJSONBody(w, r, &in); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.Create(ctx, in)
	if err != nil {
		h.writeMutationError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, p)
}

// UpdatePOI godoc
// @Summary      Replace a point of interest
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "POI id"
// @Param        body  body  types.POIInput  true  "POI"
// @Success      200  {object}  types.POI
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/admin/pois/{id} [put]
func (h *HandlerImpl) UpdatePOI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdatePOI"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "POI not found")
		return
	}
	var in types.POIInput
	if err := api.DecodeJSONBody(w, r, &in); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.service.Update(ctx, id, in)
	if err != nil {
		h.writeMutationError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// DeletePOI godoc
// @Summary      Delete a point of interest
// @Tags         admin
// @Produce      json
// @Param        id   path  string  true  "POI id"
// @Success      200  {object}  types.MessageResponse
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/admin/pois/{id} [delete]
func (h *HandlerImpl) DeletePOI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeletePOI"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "POI not found")
		return
	}
	if err := h.service.Delete(ctx, id); err != nil {
		h.writeMutationError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.MessageResponse{Message: "POI deleted successfully"})
}

func (h *HandlerImpl) writeMutationError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrValidation):
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "POI not found")
	default:
		l.ErrorContext(r.Context(), "POI mutation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save POI")
	}
}
