package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// memoryRepo keeps itineraries in a map and counts visits; enough for the
// ownership and round-trip paths.
type memoryRepo struct {
	mu          sync.Mutex
	itineraries map[uuid.UUID]types.SavedItinerary
	visits      map[uuid.UUID]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{itineraries: map[uuid.UUID]types.SavedItinerary{}, visits: map[uuid.UUID]int{}}
}

func (m *memoryRepo) CreateItinerary(_ context.Context, userID uuid.UUID, title string, days int, data json.RawMessage) (*types.SavedItinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := types.SavedItinerary{ID: uuid.New(), UserID: userID, Title: title, Days: days, Data: data, CreatedAt: time.Now()}
	m.itineraries[it.ID] = it
	return &it, nil
}

func (m *memoryRepo) ListItinerarySummaries(_ context.Context, userID uuid.UUID) ([]types.ItinerarySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.ItinerarySummary{}
	for _, it := range m.itineraries {
		if it.UserID != userID {
			continue
		}
		plans, err := it.DayPlans()
		if err != nil {
			return nil, err
		}
		out = append(out, types.ItinerarySummary{ID: it.ID, Title: it.Title, Days: it.Days, Locations: types.CountLocations(plans)})
	}
	return out, nil
}

func (m *memoryRepo) GetItinerary(_ context.Context, id uuid.UUID) (*types.SavedItinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.itineraries[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &it, nil
}

func (m *memoryRepo) DeleteItinerary(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.itineraries[id]; !ok {
		return types.ErrNotFound
	}
	delete(m.itineraries, id)
	return nil
}

func (m *memoryRepo) CountItineraries(_ context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, it := range m.itineraries {
		if it.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) CreateVisit(_ context.Context, userID, poiID uuid.UUID) (*types.VisitHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits[userID]++
	return &types.VisitHistory{ID: uuid.New(), UserID: userID, POIID: poiID, VisitedAt: time.Now()}, nil
}

func (m *memoryRepo) ListHistory(context.Context, uuid.UUID) ([]types.HistoryRow, error) {
	return []types.HistoryRow{}, nil
}

func (m *memoryRepo) CountVisits(_ context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visits[userID], nil
}

func (m *memoryRepo) CreateSurvey(_ context.Context, userID uuid.UUID, answers json.RawMessage) (*types.Survey, error) {
	return &types.Survey{ID: uuid.New(), UserID: userID, Answers: answers, CreatedAt: time.Now()}, nil
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUsers) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUsers) UpdateUserProfile(ctx context.Context, userID uuid.UUID, email, name *string) (*types.User, error) {
	args := m.Called(ctx, userID, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

type MockPOIs struct {
	mock.Mock
}

func (m *MockPOIs) Get(ctx context.Context, id uuid.UUID) (*types.POI, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.POI), args.Error(1)
}

type noopTracker struct{}

func (noopTracker) Track(context.Context, *uuid.UUID, string, any) {}

const samplePlans = `[{"day":1,"title":"Day 1: Heritage","pois":[{"name":"Gateway of India","description":"Arch","duration":"1 hour","imageUrl":"/a.jpg"}]},{"day":2,"title":"Day 2: Heritage","pois":[{"name":"Elephanta Caves","description":"Caves","duration":"5 hours"}]}]`

func newTestService() (*ServiceImpl, *memoryRepo, *MockUsers, *MockPOIs) {
	repo := newMemoryRepo()
	users := new(MockUsers)
	pois := new(MockPOIs)
	return NewServiceImpl(repo, users, pois, noopTracker{}, testLogger()), repo, users, pois
}

func TestSaveThenReadRoundTrip(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	owner := uuid.New()
	spoofed := uuid.NewString()

	saved, err := svc.SaveItinerary(ctx, owner, types.SaveItineraryRequest{
		Title: "Heritage weekend", Days: 3, Data: json.RawMessage(samplePlans), OwnerID: &spoofed,
	})
	require.NoError(t, err)
	assert.Equal(t, owner, saved.UserID, "owner comes from the token")

	read, err := svc.GetItinerary(ctx, owner, saved.ID)
	require.NoError(t, err)

	var want, got []types.DayPlan
	require.NoError(t, json.Unmarshal([]byte(samplePlans), &want))
	require.NoError(t, json.Unmarshal(read.Data, &got))
	assert.Equal(t, want, got)

	list, err := svc.ListItineraries(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Locations)
}

func TestSaveItineraryValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	owner := uuid.New()

	tests := []struct {
		name string
		req  types.SaveItineraryRequest
		want error
	}{
		{name: "no title", req: types.SaveItineraryRequest{Days: 2, Data: json.RawMessage(samplePlans)}, want: ErrMissingFields},
		{name: "no days", req: types.SaveItineraryRequest{Title: "t", Data: json.RawMessage(samplePlans)}, want: ErrMissingFields},
		{name: "no data", req: types.SaveItineraryRequest{Title: "t", Days: 2}, want: ErrMissingFields},
		{name: "null data", req: types.SaveItineraryRequest{Title: "t", Days: 2, Data: json.RawMessage("null")}, want: ErrMissingFields},
		{name: "more plans than days", req: types.SaveItineraryRequest{Title: "t", Days: 1, Data: json.RawMessage(samplePlans)}, want: ErrInvalidPayload},
		{name: "empty plans", req: types.SaveItineraryRequest{Title: "t", Days: 1, Data: json.RawMessage("[]")}, want: ErrInvalidPayload},
		{name: "not a list", req: types.SaveItineraryRequest{Title: "t", Days: 1, Data: json.RawMessage(`{"day":1}`)}, want: ErrInvalidPayload},
		{name: "negative days", req: types.SaveItineraryRequest{Title: "t", Days: -1, Data: json.RawMessage(samplePlans)}, want: ErrInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveItinerary(context.Background(), owner, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func TestItineraryOwnership(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	saved, err := svc.SaveItinerary(ctx, owner, types.SaveItineraryRequest{Title: "Mine", Days: 2, Data: json.RawMessage(samplePlans)})
	require.NoError(t, err)

	_, err = svc.GetItinerary(ctx, stranger, saved.ID)
	assert.ErrorIs(t, err, types.ErrOwnership)

	err = svc.DeleteItinerary(ctx, stranger, saved.ID)
	assert.ErrorIs(t, err, types.ErrOwnership)
	assert.Len(t, repo.itineraries, 1, "non-owner delete leaves the record")

	_, err = svc.GetItinerary(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, svc.DeleteItinerary(ctx, owner, saved.ID))
	_, err = svc.GetItinerary(ctx, owner, saved.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestProfileStats(t *testing.T) {
	svc, _, users, pois := newTestService()
	ctx := context.Background()
	userID, poiID := uuid.New(), uuid.New()

	users.On("GetUserByID", mock.Anything, userID).Return(&types.User{ID: userID, Username: "asha"}, nil).Once()
	pois.On("Get", mock.Anything, poiID).Return(&types.POI{ID: poiID, Category: "Food"}, nil).Twice()

	_, err := svc.SaveItinerary(ctx, userID, types.SaveItineraryRequest{Title: "A", Days: 2, Data: json.RawMessage(samplePlans)})
	require.NoError(t, err)
	for range 2 {
		_, err = svc.RecordVisit(ctx, userID, poiID)
		require.NoError(t, err)
	}

	profile, err := svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, types.UserSummary{ID: userID, Username: "asha"}, profile.User)
	assert.Equal(t, types.ProfileStats{TripsCount: 1, PlacesVisited: 2, SavedCount: 1}, profile.Stats)

	users.AssertExpectations(t)
	pois.AssertExpectations(t)
}

func TestRecordVisitUnknownPOI(t *testing.T) {
	svc, repo, _, pois := newTestService()
	userID, poiID := uuid.New(), uuid.New()
	pois.On("Get", mock.Anything, poiID).Return(nil, types.ErrNotFound).Once()

	_, err := svc.RecordVisit(context.Background(), userID, poiID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Zero(t, repo.visits[userID])
}

func TestProfileUnknownUser(t *testing.T) {
	svc, _, users, _ := newTestService()
	userID := uuid.New()
	users.On("GetUserByID", mock.Anything, userID).Return(nil, types.ErrNotFound).Once()

	_, err := svc.Profile(context.Background(), userID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSubmitSurvey(t *testing.T) {
	svc, _, _, _ := newTestService()
	userID := uuid.New()

	survey, err := svc.SubmitSurvey(context.Background(), userID, json.RawMessage(`{"pace":"relaxed","budget":"mid"}`))
	require.NoError(t, err)
	assert.Equal(t, userID, survey.UserID)

	for _, bad := range []string{``, `{}`, `[1,2]`, `"text"`} {
		_, err = svc.SubmitSurvey(context.Background(), userID, json.RawMessage(bad))
		assert.True(t, errors.Is(err, ErrInvalidAnswers), bad)
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	strPtr := func(s string) *string { return &s }
	userID := uuid.New()

	t.Run("trims and stores both fields", func(t *testing.T) {
		svc, _, users, _ := newTestService()
		users.On("GetUserByEmail", mock.Anything, "asha@example.com").Return(nil, types.ErrNotFound).Once()
		users.On("UpdateUserProfile", mock.Anything, userID, strPtr("asha@example.com"), strPtr("Asha Rao")).
			Return(&types.User{ID: userID, Username: "asha", Email: "asha@example.com", Name: "Asha Rao"}, nil).Once()

		user, err := svc.UpdateProfile(ctx, userID, types.UpdateProfileRequest{
			Email: strPtr("  asha@example.com "),
			Name:  strPtr(" Asha Rao"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", user.Name)
		users.AssertExpectations(t)
	})

	t.Run("keeping your own email is not a conflict", func(t *testing.T) {
		svc, _, users, _ := newTestService()
		users.On("GetUserByEmail", mock.Anything, "asha@example.com").Return(&types.User{ID: userID}, nil).Once()
		users.On("UpdateUserProfile", mock.Anything, userID, strPtr("asha@example.com"), (*string)(nil)).
			Return(&types.User{ID: userID, Email: "asha@example.com"}, nil).Once()

		_, err := svc.UpdateProfile(ctx, userID, types.UpdateProfileRequest{Email: strPtr("asha@example.com")})
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("email held by another account", func(t *testing.T) {
		svc, _, users, _ := newTestService()
		users.On("GetUserByEmail", mock.Anything, "taken@example.com").Return(&types.User{ID: uuid.New()}, nil).Once()

		_, err := svc.UpdateProfile(ctx, userID, types.UpdateProfileRequest{Email: strPtr("taken@example.com")})
		assert.ErrorIs(t, err, types.ErrConflict)
		users.AssertNotCalled(t, "UpdateUserProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("clearing email skips the lookup", func(t *testing.T) {
		svc, _, users, _ := newTestService()
		users.On("UpdateUserProfile", mock.Anything, userID, strPtr(""), (*string)(nil)).
			Return(&types.User{ID: userID}, nil).Once()

		_, err := svc.UpdateProfile(ctx, userID, types.UpdateProfileRequest{Email: strPtr("")})
		require.NoError(t, err)
		users.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
	})

	t.Run("validation", func(t *testing.T) {
		svc, _, users, _ := newTestService()
		tests := []struct {
			name string
			req  types.UpdateProfileRequest
			want error
		}{
			{"nothing to change", types.UpdateProfileRequest{}, ErrNoChanges},
			{"not an address", types.UpdateProfileRequest{Email: strPtr("asha")}, ErrInvalidEmail},
			{"display name form", types.UpdateProfileRequest{Email: strPtr("Asha <asha@example.com>")}, ErrInvalidEmail},
			{"long name", types.UpdateProfileRequest{Name: strPtr(strings.Repeat("a", maxNameLength+1))}, ErrNameTooLong},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.UpdateProfile(ctx, userID, tt.req)
				assert.ErrorIs(t, err, tt.want)
				assert.ErrorIs(t, err, types.ErrValidation)
			})
		}
		users.AssertNotCalled(t, "UpdateUserProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
