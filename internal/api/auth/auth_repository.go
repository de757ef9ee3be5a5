package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const uniqueViolation = "23505"

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	CreateUser(ctx context.Context, username, email, name, passwordHash string) (*types.User, error)
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	UpdateUserProfile(ctx context.Context, userID uuid.UUID, email, name *string) (*types.User, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     database.Querier
}

func NewRepositoryImpl(db database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

var userColumns = []string{"id", "username", "COALESCE(email, '')", "COALESCE(name, '')", "password_hash", "created_at"}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateUser inserts a user. A taken username yields types.ErrConflict.
func (r *RepositoryImpl) CreateUser(ctx context.Context, username, email, name, passwordHash string) (*types.User, error) {
	query, args, err := database.Psql.Insert("users").
		Columns("username", "email", "name", "password_hash").
		Values(username, nullable(email), nullable(name), passwordHash).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert user query: %w", err)
	}

	user := &types.User{Username: username, Email: email, Name: name, PasswordHash: passwordHash}
	err = r.db.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("username %q: %w", username, types.ErrConflict)
		}
		metrics.RecordDBError(ctx, "auth.create_user")
		r.logger.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (r *RepositoryImpl) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	return r.getUser(ctx, sq.Eq{"username": username})
}

func (r *RepositoryImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	return r.getUser(ctx, sq.Eq{"id": userID})
}

// GetUserByEmail matches case-insensitively. Email is not unique at the
// storage level, so the oldest account wins.
func (r *RepositoryImpl) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	query, args, err := database.Psql.Select(userColumns...).
		From("users").
		Where(sq.Expr("LOWER(email) = LOWER(?)", email)).
		OrderBy("created_at").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}
	return r.scanUser(ctx, query, args)
}

// UpdateUserProfile sets the fields that are non-nil. An empty string
// clears the column.
func (r *RepositoryImpl) UpdateUserProfile(ctx context.Context, userID uuid.UUID, email, name *string) (*types.User, error) {
	set := map[string]any{}
	if email != nil {
		set["email"] = nullable(*email)
	}
	if name != nil {
		set["name"] = nullable(*name)
	}
	if len(set) == 0 {
		return r.GetUserByID(ctx, userID)
	}

	query, args, err := database.Psql.Update("users").
		SetMap(set).
		Where(sq.Eq{"id": userID}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update user query: %w", err)
	}

	user, err := r.scanUser(ctx, query, args)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		r.logger.ErrorContext(ctx, "Failed to update user profile", slog.Any("error", err))
	}
	return user, err
}

func (r *RepositoryImpl) getUser(ctx context.Context, where sq.Eq) (*types.User, error) {
	query, args, err := database.Psql.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}
	return r.scanUser(ctx, query, args)
}

func (r *RepositoryImpl) scanUser(ctx context.Context, query string, args []any) (*types.User, error) {
	var u types.User
	err := r.db.QueryRow(ctx, query, args...).Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", types.ErrNotFound)
		}
		metrics.RecordDBError(ctx, "auth.get_user")
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &u, nil
}
