package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const unknownLabel = "Unknown"

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	CreateItinerary(ctx context.Context, userID uuid.UUID, title string, days int, data json.RawMessage) (*types.SavedItinerary, error)
	ListItinerarySummaries(ctx context.Context, userID uuid.UUID) ([]types.ItinerarySummary, error)
	GetItinerary(ctx context.Context, id uuid.UUID) (*types.SavedItinerary, error)
	DeleteItinerary(ctx context.Context, id uuid.UUID) error
	CountItineraries(ctx context.Context, userID uuid.UUID) (int, error)

	CreateVisit(ctx context.Context, userID, poiID uuid.UUID) (*types.VisitHistory, error)
	ListHistory(ctx context.Context, userID uuid.UUID) ([]types.HistoryRow, error)
	CountVisits(ctx context.Context, userID uuid.UUID) (int, error)

	CreateSurvey(ctx context.Context, userID uuid.UUID, answers json.RawMessage) (*types.Survey, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     database.Querier
}

func NewRepositoryImpl(db database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

func (r *RepositoryImpl) CreateItinerary(ctx context.Context, userID uuid.UUID, title string, days int, data json.RawMessage) (*types.SavedItinerary, error) {
	query, args, err := database.Psql.Insert("itineraries").
		Columns("user_id", "title", "days", "data").
		Values(userID, title, days, data).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert itinerary query: %w", err)
	}

	saved := &types.SavedItinerary{UserID: userID, Title: title, Days: days, Data: data}
	if err = r.db.QueryRow(ctx, query, args...).Scan(&saved.ID, &saved.CreatedAt); err != nil {
		metrics.RecordDBError(ctx, "profiles.create_itinerary")
		r.logger.ErrorContext(ctx, "Failed to insert itinerary", slog.Any("error", err))
		return nil, fmt.Errorf("failed to insert itinerary: %w", err)
	}
	return saved, nil
}

// ListItinerarySummaries reads the caller's itineraries newest first and
// derives the location counts inside one read-only snapshot. A payload that
// does not decode fails the whole listing.
func (r *RepositoryImpl) ListItinerarySummaries(ctx context.Context, userID uuid.UUID) (_ []types.ItinerarySummary, err error) {
	query, args, err := database.Psql.Select("id", "title", "days", "data", "created_at").
		From("itineraries").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build itinerary list query: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		metrics.RecordDBError(ctx, "profiles.list_itineraries")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.WarnContext(ctx, "Failed to roll back itinerary listing", slog.Any("error", rbErr))
			}
		}
	}()

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError(ctx, "profiles.list_itineraries")
		return nil, fmt.Errorf("failed to query itineraries: %w", err)
	}

	summaries := []types.ItinerarySummary{}
	for rows.Next() {
		var it types.SavedItinerary
		if err = rows.Scan(&it.ID, &it.Title, &it.Days, &it.Data, &it.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan itinerary row: %w", err)
		}
		plans, decodeErr := it.DayPlans()
		if decodeErr != nil {
			rows.Close()
			err = fmt.Errorf("%w: %v", types.ErrStorage, decodeErr)
			return nil, err
		}
		summaries = append(summaries, types.ItinerarySummary{
			ID:        it.ID,
			Title:     it.Title,
			Date:      types.DisplayDate(it.CreatedAt),
			Days:      it.Days,
			Locations: types.CountLocations(plans),
		})
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating itinerary rows: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit itinerary listing: %w", err)
	}
	return summaries, nil
}

func (r *RepositoryImpl) GetItinerary(ctx context.Context, id uuid.UUID) (*types.SavedItinerary, error) {
	query, args, err := database.Psql.Select("id", "user_id", "title", "days", "data", "created_at").
		From("itineraries").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build itinerary query: %w", err)
	}

	var it types.SavedItinerary
	err = r.db.QueryRow(ctx, query, args...).Scan(&it.ID, &it.UserID, &it.Title, &it.Days, &it.Data, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("itinerary %s: %w", id, types.ErrNotFound)
		}
		metrics.RecordDBError(ctx, "profiles.get_itinerary")
		return nil, fmt.Errorf("failed to fetch itinerary: %w", err)
	}
	return &it, nil
}

func (r *RepositoryImpl) DeleteItinerary(ctx context.Context, id uuid.UUID) error {
	query, args, err := database.Psql.Delete("itineraries").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete itinerary query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError(ctx, "profiles.delete_itinerary")
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("itinerary %s: %w", id, types.ErrNotFound)
	}
	return nil
}

func (r *RepositoryImpl) CountItineraries(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.count(ctx, "itineraries", userID)
}

func (r *RepositoryImpl) CountVisits(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.count(ctx, "visit_history", userID)
}

func (r *RepositoryImpl) count(ctx context.Context, table string, userID uuid.UUID) (int, error) {
	query, args, err := database.Psql.Select("COUNT(*)").From(table).Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var n int
	if err = r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		metrics.RecordDBError(ctx, "profiles.count_"+table)
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func (r *RepositoryImpl) CreateVisit(ctx context.Context, userID, poiID uuid.UUID) (*types.VisitHistory, error) {
	query, args, err := database.Psql.Insert("visit_history").
		Columns("user_id", "poi_id").
		Values(userID, poiID).
		Suffix("RETURNING id, visited_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert visit query: %w", err)
	}
	visit := &types.VisitHistory{UserID: userID, POIID: poiID}
	if err = r.db.QueryRow(ctx, query, args...).Scan(&visit.ID, &visit.VisitedAt); err != nil {
		metrics.RecordDBError(ctx, "profiles.create_visit")
		return nil, fmt.Errorf("failed to insert visit: %w", err)
	}
	return visit, nil
}

// ListHistory joins each visit with its POI. Visits whose POI is gone keep
// "Unknown" as title and category.
func (r *RepositoryImpl) ListHistory(ctx context.Context, userID uuid.UUID) ([]types.HistoryRow, error) {
	query, args, err := database.Psql.Select(
		"v.id", "v.visited_at",
		fmt.Sprintf("COALESCE(p.title, '%s')", unknownLabel),
		fmt.Sprintf("COALESCE(p.category, '%s')", unknownLabel),
	).
		From("visit_history v").
		LeftJoin("pois p ON p.id = v.poi_id").
		Where(sq.Eq{"v.user_id": userID}).
		OrderBy("v.visited_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError(ctx, "profiles.list_history")
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	history := []types.HistoryRow{}
	for rows.Next() {
		var h types.HistoryRow
		if err := rows.Scan(&h.ID, &h.VisitedAt, &h.POITitle, &h.Category); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return history, nil
}

func (r *RepositoryImpl) CreateSurvey(ctx context.Context, userID uuid.UUID, answers json.RawMessage) (*types.Survey, error) {
	query, args, err := database.Psql.Insert("surveys").
		Columns("user_id", "answers").
		Values(userID, answers).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert survey query: %w", err)
	}
	survey := &types.Survey{UserID: userID, Answers: answers}
	if err = r.db.QueryRow(ctx, query, args...).Scan(&survey.ID, &survey.CreatedAt); err != nil {
		metrics.RecordDBError(ctx, "profiles.create_survey")
		return nil, fmt.Errorf("failed to insert survey: %w", err)
	}
	return survey, nil
}
