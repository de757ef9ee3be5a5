package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	CreateEvent(ctx context.Context, userID *uuid.UUID, kind string, payload json.RawMessage) error
	GetEventsByUser(ctx context.Context, userID uuid.UUID, limit uint64) ([]types.AnalyticsEvent, error)
	GetEventsByKind(ctx context.Context, kind string, limit uint64) ([]types.AnalyticsEvent, error)
	GetEventsInRange(ctx context.Context, from, to time.Time, limit uint64) ([]types.AnalyticsEvent, error)
	CountByKind(ctx context.Context, from, to time.Time) (map[string]int64, error)
	CountUniqueUsers(ctx context.Context, from, to time.Time) (int64, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     database.Querier
}

func NewRepositoryImpl(db database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

var eventColumns = []string{"id", "user_id", "kind", "payload", "created_at"}

func (r *RepositoryImpl) CreateEvent(ctx context.Context, userID *uuid.UUID, kind string, payload json.RawMessage) error {
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	query, args, err := database.Psql.Insert("analytics_events").
		Columns("user_id", "kind", "payload").
		Values(userID, kind, payload).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert event query: %w", err)
	}
	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		metrics.RecordDBError(ctx, "analytics.create_event")
		return fmt.Errorf("failed to insert analytics event: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetEventsByUser(ctx context.Context, userID uuid.UUID, limit uint64) ([]types.AnalyticsEvent, error) {
	return r.listEvents(ctx, sq.Eq{"user_id": userID}, limit)
}

func (r *RepositoryImpl) GetEventsByKind(ctx context.Context, kind string, limit uint64) ([]types.AnalyticsEvent, error) {
	return r.listEvents(ctx, sq.Eq{"kind": kind}, limit)
}

func (r *RepositoryImpl) GetEventsInRange(ctx context.Context, from, to time.Time, limit uint64) ([]types.AnalyticsEvent, error) {
	return r.listEvents(ctx, inRange(from, to), limit)
}

func (r *RepositoryImpl) CountByKind(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	query, args, err := database.Psql.Select("kind", "COUNT(*)").
		From("analytics_events").
		Where(inRange(from, to)).
		GroupBy("kind").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError(ctx, "analytics.count_by_kind")
		return nil, fmt.Errorf("failed to count events by kind: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

func (r *RepositoryImpl) CountUniqueUsers(ctx context.Context, from, to time.Time) (int64, error) {
	query, args, err := database.Psql.Select("COUNT(DISTINCT user_id)").
		From("analytics_events").
		Where(inRange(from, to)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build unique users query: %w", err)
	}
	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		metrics.RecordDBError(ctx, "analytics.count_unique_users")
		return 0, fmt.Errorf("failed to count unique users: %w", err)
	}
	return n, nil
}

func inRange(from, to time.Time) sq.And {
	return sq.And{sq.GtOrEq{"created_at": from}, sq.Lt{"created_at": to}}
}

func (r *RepositoryImpl) listEvents(ctx context.Context, where sq.Sqlizer, limit uint64) ([]types.AnalyticsEvent, error) {
	builder := database.Psql.Select(eventColumns...).
		From("analytics_events").
		Where(where).
		OrderBy("created_at DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build events query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError(ctx, "analytics.list_events")
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]types.AnalyticsEvent, 0)
	for rows.Next() {
		var e types.AnalyticsEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating events: %w", err)
	}
	return events, nil
}
