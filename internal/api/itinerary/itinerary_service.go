package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/api/analytics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var (
	ErrMissingFields = fmt.Errorf("%w: duration and interests are required", types.ErrValidation)
	ErrTripTooLong   = fmt.Errorf("%w: duration must be at most %d days", types.ErrValidation, types.MaxTripDays)
	ErrBadTravelers  = fmt.Errorf("%w: travelers must be at least 1", types.ErrValidation)
)

// CatalogSource supplies every POI in catalog order.
type CatalogSource interface {
	Catalog(ctx context.Context) ([]types.POI, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Generate(ctx context.Context, userID uuid.UUID, req types.GenerateItineraryRequest) ([]types.DayPlan, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	catalog   CatalogSource
	generator Generator
	tracker   analytics.Tracker
}

// NewServiceImpl fixes the generation mode for the lifetime of the service.
func NewServiceImpl(catalog CatalogSource, generator Generator, tracker analytics.Tracker, logger *slog.Logger) *ServiceImpl {
	logger.Info("Itinerary generation mode selected", slog.String("mode", generator.Mode()))
	return &ServiceImpl{logger: logger, catalog: catalog, generator: generator, tracker: tracker}
}

// ParseTripParams validates a generation request.
func ParseTripParams(req types.GenerateItineraryRequest) (types.TripParams, error) {
	interests := make([]string, 0, len(req.Interests))
	for _, tag := range req.Interests {
		if tag = strings.TrimSpace(tag); tag != "" {
			interests = append(interests, tag)
		}
	}
	days := int(req.Duration)
	if days < 1 || len(interests) == 0 {
		return types.TripParams{}, ErrMissingFields
	}
	if days > types.MaxTripDays {
		return types.TripParams{}, ErrTripTooLong
	}
	travelers := int(req.Travelers)
	switch {
	case travelers == 0:
		travelers = 1
	case travelers < 0:
		return types.TripParams{}, ErrBadTravelers
	}
	return types.TripParams{
		DurationDays:        days,
		TravelerCount:       travelers,
		InterestTags:        interests,
		SpecialRequirements: strings.TrimSpace(req.Requirements),
	}, nil
}

// Generate returns day plans for the caller. Nothing is persisted apart from
// the interaction log and an analytics event.
func (s *ServiceImpl) Generate(ctx context.Context, userID uuid.UUID, req types.GenerateItineraryRequest) ([]types.DayPlan, error) {
	mode := s.generator.Mode()
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "Generate"), slog.String("mode", mode))

	params, err := ParseTripParams(req)
	if err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	span.SetAttributes(attribute.Int("trip.days", params.DurationDays), attribute.StringSlice("trip.interests", params.InterestTags))

	m := metrics.Get()
	modeAttr := metric.WithAttributes(attribute.String("mode", mode))
	m.GenerationRequestsTotal.Add(ctx, 1, modeAttr)

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog unavailable")
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	start := time.Now()
	plans, err := s.generator.Generate(ctx, userID, params, catalog)
	m.GenerationDuration.Record(ctx, time.Since(start).Seconds(), modeAttr)
	if err != nil {
		reason := "empty_result"
		var genErr *types.GenerationError
		if errors.As(err, &genErr) {
			reason = string(genErr.Reason)
		}
		m.GenerationFailuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode), attribute.String("reason", reason)))
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		if errors.Is(err, types.ErrEmptyResult) {
			l.WarnContext(ctx, "No POIs matched interests", slog.Any("interests", params.InterestTags))
		}
		return nil, err
	}

	s.tracker.Track(ctx, &userID, types.EventItineraryGenerated, map[string]any{
		"mode":      mode,
		"duration":  params.DurationDays,
		"travelers": params.TravelerCount,
		"interests": params.InterestTags,
		"days":      len(plans),
	})
	l.InfoContext(ctx, "Itinerary generated", slog.Int("days", len(plans)), slog.Int("catalog_size", len(catalog)))
	return plans, nil
}
