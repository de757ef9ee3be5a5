package poi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	List(ctx context.Context, filter types.POIFilter) ([]types.POI, error)
	Catalog(ctx context.Context) ([]types.POI, error)
	Get(ctx context.Context, id uuid.UUID) (*types.POI, error)
	Create(ctx context.Context, in types.POIInput) (*types.POI, error)
	Update(ctx context.Context, id uuid.UUID, in types.POIInput) (*types.POI, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

// List clamps the page size to [1, 100], defaulting to 50.
func (s *ServiceImpl) List(ctx context.Context, filter types.POIFilter) ([]types.POI, error) {
	ctx, span := otel.Tracer("POIService").Start(ctx, "List", trace.WithAttributes(
		attribute.String("category", filter.Category),
		attribute.String("q", filter.Query),
	))
	defer span.End()

	switch {
	case filter.Limit == 0:
		filter.Limit = defaultPageSize
	case filter.Limit > maxPageSize:
		filter.Limit = maxPageSize
	}
	pois, err := s.repo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	return pois, nil
}

// Catalog is the full, unpaginated POI list in catalog order.
func (s *ServiceImpl) Catalog(ctx context.Context) ([]types.POI, error) {
	pois, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	return pois, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id uuid.UUID) (*types.POI, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapStorage(err)
	}
	return p, nil
}

func (s *ServiceImpl) Create(ctx context.Context, in types.POIInput) (*types.POI, error) {
	in = trimInput(in)
	if in.Missing() {
		return nil, fmt.Errorf("%w: all POI fields are required", types.ErrValidation)
	}
	p, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, wrapStorage(err)
	}
	s.logger.InfoContext(ctx, "POI created", slog.String("poi_id", p.ID.String()), slog.String("title", p.Title))
	return p, nil
}

func (s *ServiceImpl) Update(ctx context.Context, id uuid.UUID, in types.POIInput) (*types.POI, error) {
	in = trimInput(in)
	if in.Missing() {
		return nil, fmt.Errorf("%w: all POI fields are required", types.ErrValidation)
	}
	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, wrapStorage(err)
	}
	return p, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapStorage(err)
	}
	s.logger.InfoContext(ctx, "POI deleted", slog.String("poi_id", id.String()))
	return nil
}

func trimInput(in types.POIInput) types.POIInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Duration = strings.TrimSpace(in.Duration)
	in.Difficulty = strings.TrimSpace(in.Difficulty)
	in.Category = strings.TrimSpace(in.Category)
	return in
}

func wrapStorage(err error) error {
	if errors.Is(err, types.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrStorage, err)
}
