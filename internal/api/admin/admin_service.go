package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Login(ctx context.Context, req types.AdminLoginRequest) (*types.AdminLoginResponse, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	tokens *auth.TokenManager
}

func NewServiceImpl(repo Repository, tokens *auth.TokenManager, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo, tokens: tokens}
}

// Login issues a token whose role claim is the admin's role.
func (s *ServiceImpl) Login(ctx context.Context, req types.AdminLoginRequest) (*types.AdminLoginResponse, error) {
	ctx, span := otel.Tracer("AdminService").Start(ctx, "Login")
	defer span.End()

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", types.ErrValidation)
	}

	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrUnauthenticated
		}
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.WarnContext(ctx, "Admin login with wrong password", slog.String("email", email))
		return nil, types.ErrUnauthenticated
	}

	token, err := s.tokens.Issue(a.ID.String(), a.Role)
	if err != nil {
		return nil, err
	}
	return &types.AdminLoginResponse{Token: token, Admin: *a}, nil
}
