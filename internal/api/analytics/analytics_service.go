package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const summaryEventLimit = 200

// Tracker records product events. Failures never reach the caller.
type Tracker interface {
	Track(ctx context.Context, userID *uuid.UUID, kind string, payload any)
}

var (
	_ Service = (*ServiceImpl)(nil)
	_ Tracker = (*ServiceImpl)(nil)
)

type Service interface {
	Tracker
	Summary(ctx context.Context, from, to time.Time) (*types.AnalyticsSummary, error)
	EventsByUser(ctx context.Context, userID uuid.UUID, limit uint64) ([]types.AnalyticsEvent, error)
	EventsByKind(ctx context.Context, kind string, limit uint64) ([]types.AnalyticsEvent, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func (s *ServiceImpl) Track(ctx context.Context, userID *uuid.UUID, kind string, payload any) {
	l := s.logger.With(slog.String("method", "Track"), slog.String("kind", kind))

	raw, err := json.Marshal(payload)
	if err != nil {
		l.WarnContext(ctx, "Dropping analytics event with unencodable payload", slog.Any("error", err))
		return
	}
	if payload == nil {
		raw = json.RawMessage(`{}`)
	}
	if err := s.repo.CreateEvent(ctx, userID, kind, raw); err != nil {
		l.WarnContext(ctx, "Failed to record analytics event", slog.Any("error", err))
	}
}

// Summary gathers counts by kind, unique users and the latest events in [from, to).
func (s *ServiceImpl) Summary(ctx context.Context, from, to time.Time) (*types.AnalyticsSummary, error) {
	ctx, span := otel.Tracer("AnalyticsService").Start(ctx, "Summary", trace.WithAttributes(
		attribute.String("from", from.Format(time.RFC3339)),
		attribute.String("to", to.Format(time.RFC3339)),
	))
	defer span.End()

	if !from.Before(to) {
		err := fmt.Errorf("%w: from must be before to", types.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid range")
		return nil, err
	}

	summary := &types.AnalyticsSummary{From: from, To: to}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.repo.CountByKind(gctx, from, to)
		summary.CountsByKind = counts
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountUniqueUsers(gctx, from, to)
		summary.UniqueUsers = n
		return err
	})
	g.Go(func() error {
		events, err := s.repo.GetEventsInRange(gctx, from, to, summaryEventLimit)
		summary.Events = events
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summary failed")
		return nil, fmt.Errorf("failed to build analytics summary: %w", err)
	}

	span.SetStatus(codes.Ok, "summary built")
	return summary, nil
}

func (s *ServiceImpl) EventsByUser(ctx context.Context, userID uuid.UUID, limit uint64) ([]types.AnalyticsEvent, error) {
	events, err := s.repo.GetEventsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for user: %w", err)
	}
	return events, nil
}

func (s *ServiceImpl) EventsByKind(ctx context.Context, kind string, limit uint64) ([]types.AnalyticsEvent, error) {
	events, err := s.repo.GetEventsByKind(ctx, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events of kind %s: %w", kind, err)
	}
	return events, nil
}
