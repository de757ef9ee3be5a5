package profiles

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/api/analytics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var (
	ErrMissingFields  = fmt.Errorf("%w: title, days and data are required", types.ErrValidation)
	ErrInvalidPayload = fmt.Errorf("%w: data must be a list of day plans no longer than days", types.ErrValidation)
	ErrInvalidAnswers = fmt.Errorf("%w: answers must be a non-empty JSON object", types.ErrValidation)
	ErrNoChanges      = fmt.Errorf("%w: email or name is required", types.ErrValidation)
	ErrInvalidEmail   = fmt.Errorf("%w: email address is not valid", types.ErrValidation)
	ErrNameTooLong    = fmt.Errorf("%w: name must be at most %d characters", types.ErrValidation, maxNameLength)
)

const maxNameLength = 100

// UserLookup resolves and edits the account behind a token.
type UserLookup interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	UpdateUserProfile(ctx context.Context, userID uuid.UUID, email, name *string) (*types.User, error)
}

// POILookup confirms a visited POI exists.
type POILookup interface {
	Get(ctx context.Context, id uuid.UUID) (*types.POI, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*types.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req types.UpdateProfileRequest) (*types.User, error)
	SaveItinerary(ctx context.Context, userID uuid.UUID, req types.SaveItineraryRequest) (*types.SavedItinerary, error)
	ListItineraries(ctx context.Context, userID uuid.UUID) ([]types.ItinerarySummary, error)
	GetItinerary(ctx context.Context, userID, id uuid.UUID) (*types.SavedItinerary, error)
	DeleteItinerary(ctx context.Context, userID, id uuid.UUID) error
	History(ctx context.Context, userID uuid.UUID) ([]types.HistoryEntry, error)
	RecordVisit(ctx context.Context, userID, poiID uuid.UUID) (*types.VisitHistory, error)
	SubmitSurvey(ctx context.Context, userID uuid.UUID, answers json.RawMessage) (*types.Survey, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	repo    Repository
	users   UserLookup
	pois    POILookup
	tracker analytics.Tracker
}

func NewServiceImpl(repo Repository, users UserLookup, pois POILookup, tracker analytics.Tracker, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo, users: users, pois: pois, tracker: tracker}
}

// Profile returns the account summary with trip and visit counts.
func (s *ServiceImpl) Profile(ctx context.Context, userID uuid.UUID) (*types.ProfileResponse, error) {
	ctx, span := otel.Tracer("ProfileService").Start(ctx, "Profile", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}

	var trips, visits int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trips, err = s.repo.CountItineraries(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		visits, err = s.repo.CountVisits(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}

	return &types.ProfileResponse{
		User: user.Summary(),
		Stats: types.ProfileStats{
			TripsCount:    trips,
			PlacesVisited: visits,
			SavedCount:    trips,
		},
	}, nil
}

// UpdateProfile edits email and name only. An email held by another
// account is ErrConflict.
func (s *ServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, req types.UpdateProfileRequest) (*types.User, error) {
	ctx, span := otel.Tracer("ProfileService").Start(ctx, "UpdateProfile", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	if req.Email == nil && req.Name == nil {
		return nil, ErrNoChanges
	}

	var email, name *string
	changed := []string{}
	if req.Email != nil {
		e := strings.TrimSpace(*req.Email)
		if e != "" {
			addr, err := mail.ParseAddress(e)
			if err != nil || addr.Address != e {
				return nil, ErrInvalidEmail
			}
			owner, err := s.users.GetUserByEmail(ctx, e)
			switch {
			case err == nil && owner.ID != userID:
				return nil, fmt.Errorf("email %q: %w", e, types.ErrConflict)
			case err != nil && !errors.Is(err, types.ErrNotFound):
				span.RecordError(err)
				return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
			}
		}
		email = &e
		changed = append(changed, "email")
	}
	if req.Name != nil {
		n := strings.TrimSpace(*req.Name)
		if utf8.RuneCountInString(n) > maxNameLength {
			return nil, ErrNameTooLong
		}
		name = &n
		changed = append(changed, "name")
	}

	user, err := s.users.UpdateUserProfile(ctx, userID, email, name)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}

	s.tracker.Track(ctx, &userID, types.EventProfileUpdated, map[string][]string{"fields": changed})
	return user, nil
}

// SaveItinerary stores the payload as submitted. The owner is always userID.
func (s *ServiceImpl) SaveItinerary(ctx context.Context, userID uuid.UUID, req types.SaveItineraryRequest) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("ProfileService").Start(ctx, "SaveItinerary", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "SaveItinerary"))

	if req.OwnerID != nil && *req.OwnerID != userID.String() {
		l.WarnContext(ctx, "Ignoring client-supplied owner id")
	}

	title := strings.TrimSpace(req.Title)
	data := bytes.TrimSpace(req.Data)
	if title == "" || req.Days == 0 || len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrMissingFields
	}
	if req.Days < 0 {
		return nil, ErrInvalidPayload
	}

	var plans []types.DayPlan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(plans) == 0 || len(plans) > req.Days {
		return nil, ErrInvalidPayload
	}

	saved, err := s.repo.CreateItinerary(ctx, userID, title, req.Days, json.RawMessage(data))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}

	metrics.Get().ItinerariesSavedTotal.Add(ctx, 1)
	s.tracker.Track(ctx, &userID, types.EventItinerarySaved, map[string]any{
		"itineraryId": saved.ID.String(),
		"days":        saved.Days,
		"locations":   types.CountLocations(plans),
	})
	return saved, nil
}

func (s *ServiceImpl) ListItineraries(ctx context.Context, userID uuid.UUID) ([]types.ItinerarySummary, error) {
	summaries, err := s.repo.ListItinerarySummaries(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrStorage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	return summaries, nil
}

// GetItinerary enforces ownership: a record owned by someone else is ErrOwnership.
func (s *ServiceImpl) GetItinerary(ctx context.Context, userID, id uuid.UUID) (*types.SavedItinerary, error) {
	it, err := s.repo.GetItinerary(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	if it.UserID != userID {
		return nil, fmt.Errorf("itinerary %s: %w", id, types.ErrOwnership)
	}
	return it, nil
}

func (s *ServiceImpl) DeleteItinerary(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetItinerary(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteItinerary(ctx, id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	s.tracker.Track(ctx, &userID, types.EventItineraryDeleted, map[string]string{"itineraryId": id.String()})
	return nil
}

func (s *ServiceImpl) History(ctx context.Context, userID uuid.UUID) ([]types.HistoryEntry, error) {
	rows, err := s.repo.ListHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	entries := make([]types.HistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = types.HistoryEntry{
			ID:       row.ID,
			Name:     row.POITitle,
			Date:     types.DisplayDate(row.VisitedAt),
			Category: row.Category,
		}
	}
	return entries, nil
}

func (s *ServiceImpl) RecordVisit(ctx context.Context, userID, poiID uuid.UUID) (*types.VisitHistory, error) {
	p, err := s.pois.Get(ctx, poiID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	visit, err := s.repo.CreateVisit(ctx, userID, poiID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	s.tracker.Track(ctx, &userID, types.EventPOIVisited, map[string]string{"poiId": poiID.String(), "category": p.Category})
	return visit, nil
}

func (s *ServiceImpl) SubmitSurvey(ctx context.Context, userID uuid.UUID, answers json.RawMessage) (*types.Survey, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(answers, &fields); err != nil || len(fields) == 0 {
		return nil, ErrInvalidAnswers
	}
	survey, err := s.repo.CreateSurvey(ctx, userID, answers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	s.tracker.Track(ctx, &userID, types.EventSurveySubmitted, map[string]int{"questions": len(fields)})
	return survey, nil
}
