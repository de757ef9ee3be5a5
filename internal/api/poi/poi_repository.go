package poi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	List(ctx context.Context, filter types.POIFilter) ([]types.POI, error)
	ListAll(ctx context.Context) ([]types.POI, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.POI, error)
	Create(ctx context.Context, in types.POIInput) (*types.POI, error)
	Update(ctx context.Context, id uuid.UUID, in types.POIInput) (*types.POI, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     database.Querier
}

func NewRepositoryImpl(db database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

// likeEscaper makes user input match literally under ILIKE's default backslash escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

var poiColumns = []string{"id", "title", "description", "image_url", "duration", "difficulty", "category", "created_at", "updated_at"}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPOI(row rowScanner) (types.POI, error) {
	var p types.POI
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.Duration, &p.Difficulty, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns POIs in catalog order, optionally narrowed by category and a
// free-text query over title, description and category.
func (r *RepositoryImpl) List(ctx context.Context, filter types.POIFilter) ([]types.POI, error) {
	builder := database.Psql.Select(poiColumns...).From("pois").OrderBy("seq")

	if c := strings.TrimSpace(filter.Category); c != "" {
		builder = builder.Where(sq.Expr("LOWER(category) = LOWER(?)", c))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + likeEscaper.Replace(q) + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
			sq.ILike{"category": pattern},
		})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		builder = builder.Offset(filter.Offset)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build poi list query: %w", err)
	}
	return r.query(ctx, "poi.list", query, args...)
}

// ListAll returns the whole catalog in catalog order.
func (r *RepositoryImpl) ListAll(ctx context.Context) ([]types.POI, error) {
	return r.List(ctx, types.POIFilter{})
}

func (r *RepositoryImpl) query(ctx context.Context, op, query string, args ...any) ([]types.POI, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError(ctx, op)
		r.logger.ErrorContext(ctx, "Failed to query pois", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("failed to query pois: %w", err)
	}
	defer rows.Close()

	pois := []types.POI{}
	for rows.Next() {
		p, err := scanPOI(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poi row: %w", err)
		}
		pois = append(pois, p)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordDBError(ctx, op)
		return nil, fmt.Errorf("error iterating poi rows: %w", err)
	}
	return pois, nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*types.POI, error) {
	query, args, err := database.Psql.Select(poiColumns...).From("pois").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build poi query: %w", err)
	}
	p, err := scanPOI(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("poi %s: %w", id, types.ErrNotFound)
		}
		metrics.RecordDBError(ctx, "poi.get")
		return nil, fmt.Errorf("failed to fetch poi: %w", err)
	}
	return &p, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, in types.POIInput) (*types.POI, error) {
	query, args, err := database.Psql.Insert("pois").
		Columns("title", "description", "image_url", "duration", "difficulty", "category").
		Values(in.Title, in.Description, in.ImageURL, in.Duration, in.Difficulty, in.Category).
		Suffix("RETURNING " + strings.Join(poiColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert poi query: %w", err)
	}
	p, err := scanPOI(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		metrics.RecordDBError(ctx, "poi.create")
		return nil, fmt.Errorf("failed to insert poi: %w", err)
	}
	return &p, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, id uuid.UUID, in types.POIInput) (*types.POI, error) {
	query, args, err := database.Psql.Update("pois").
		SetMap(map[string]any{
			"title":       in.Title,
			"description": in.Description,
			"image_url":   in.ImageURL,
			"duration":    in.Duration,
			"difficulty":  in.Difficulty,
			"category":    in.Category,
			"updated_at":  sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(poiColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update poi query: %w", err)
	}
	p, err := scanPOI(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("poi %s: %w", id, types.ErrNotFound)
		}
		metrics.RecordDBError(ctx, "poi.update")
		return nil, fmt.Errorf("failed to update poi: %w", err)
	}
	return &p, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := database.Psql.Delete("pois").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete poi query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		metrics.RecordDBError(ctx, "poi.delete")
		return fmt.Errorf("failed to delete poi: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("poi %s: %w", id, types.ErrNotFound)
	}
	return nil
}
