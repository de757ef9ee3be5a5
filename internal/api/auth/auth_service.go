package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/api/analytics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const bcryptCost = 10

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error)
	Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error)
	Validate(ctx context.Context, userID uuid.UUID) (*types.UserSummary, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	repo    Repository
	tokens  *TokenManager
	tracker analytics.Tracker
}

func NewServiceImpl(repo Repository, tokens *TokenManager, tracker analytics.Tracker, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo, tokens: tokens, tracker: tracker}
}

// Register creates the account and signs the caller in.
func (s *ServiceImpl) Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("username", req.Username),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "Register"))

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", types.ErrValidation)
	}

	existing, err := s.repo.GetUserByUsername(ctx, req.Username)
	switch {
	case err == nil && existing != nil:
		return nil, fmt.Errorf("username %q: %w", req.Username, types.ErrConflict)
	case err != nil && !errors.Is(err, types.ErrNotFound):
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, req.Username, req.Email, req.Name, string(hash))
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}

	token, err := s.tokens.Issue(user.ID.String(), types.RoleUser)
	if err != nil {
		return nil, err
	}

	metrics.Get().RegistrationsTotal.Add(ctx, 1)
	s.tracker.Track(ctx, &user.ID, types.EventUserRegistered, map[string]string{"username": user.Username})
	l.InfoContext(ctx, "User registered", slog.String("user_id", user.ID.String()))

	return &types.AuthResponse{Token: token, User: user.Summary()}, nil
}

// Login checks credentials. Unknown users and wrong passwords are indistinguishable.
func (s *ServiceImpl) Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", types.ErrValidation)
	}

	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrUnauthenticated
		}
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, types.ErrUnauthenticated
	}

	token, err := s.tokens.Issue(user.ID.String(), types.RoleUser)
	if err != nil {
		return nil, err
	}
	return &types.AuthResponse{Token: token, User: user.Summary()}, nil
}

func (s *ServiceImpl) Validate(ctx context.Context, userID uuid.UUID) (*types.UserSummary, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	summary := user.Summary()
	return &summary, nil
}
