package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*types.Admin, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     database.Querier
}

func NewRepositoryImpl(db database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

// GetByEmail matches emails case-insensitively.
func (r *RepositoryImpl) GetByEmail(ctx context.Context, email string) (*types.Admin, error) {
	query, args, err := database.Psql.Select("id", "email", "name", "password_hash", "role", "created_at").
		From("admins").
		Where(sq.Expr("LOWER(email) = ?", strings.ToLower(email))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build admin query: %w", err)
	}

	var a types.Admin
	err = r.db.QueryRow(ctx, query, args...).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("admin: %w", types.ErrNotFound)
		}
		metrics.RecordDBError(ctx, "admin.get_by_email")
		return nil, fmt.Errorf("failed to fetch admin: %w", err)
	}
	return &a, nil
}
