package itinerary

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Catalog(ctx context.Context) ([]types.POI, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.POI), args.Error(1)
}

type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Track(ctx context.Context, userID *uuid.UUID, kind string, payload any) {
	m.Called(ctx, userID, kind, payload)
}

func TestParseTripParams(t *testing.T) {
	tests := []struct {
		name    string
		req     types.GenerateItineraryRequest
		want    types.TripParams
		wantErr error
	}{
		{
			name: "defaults travelers",
			req:  types.GenerateItineraryRequest{Duration: 3, Interests: []string{" Heritage Sites ", ""}},
			want: types.TripParams{DurationDays: 3, TravelerCount: 1, InterestTags: []string{"Heritage Sites"}},
		},
		{name: "no duration", req: types.GenerateItineraryRequest{Interests: []string{"Food"}}, wantErr: ErrMissingFields},
		{name: "no interests", req: types.GenerateItineraryRequest{Duration: 2}, wantErr: ErrMissingFields},
		{name: "blank interests", req: types.GenerateItineraryRequest{Duration: 2, Interests: []string{" "}}, wantErr: ErrMissingFields},
		{name: "too long", req: types.GenerateItineraryRequest{Duration: 31, Interests: []string{"Food"}}, wantErr: ErrTripTooLong},
		{name: "negative travelers", req: types.GenerateItineraryRequest{Duration: 1, Travelers: -2, Interests: []string{"Food"}}, wantErr: ErrBadTravelers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTripParams(tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, types.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServiceGenerate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("fallback example", func(t *testing.T) {
		catalog := new(MockCatalog)
		tracker := new(MockTracker)
		catalog.On("Catalog", mock.Anything).Return(exampleCatalog(), nil).Once()
		tracker.On("Track", mock.Anything, &userID, types.EventItineraryGenerated, mock.Anything).Once()

		svc := NewServiceImpl(catalog, FallbackGenerator{}, tracker, testLogger())
		plans, err := svc.Generate(ctx, userID, types.GenerateItineraryRequest{Duration: 3, Travelers: 2, Interests: []string{"Heritage Sites"}})
		require.NoError(t, err)
		require.Len(t, plans, 3)
		assert.Equal(t, []int{2, 2, 1}, []int{len(plans[0].POIs), len(plans[1].POIs), len(plans[2].POIs)})

		catalog.AssertExpectations(t)
		tracker.AssertExpectations(t)
	})

	t.Run("shopping matches nothing", func(t *testing.T) {
		catalog := new(MockCatalog)
		tracker := new(MockTracker)
		catalog.On("Catalog", mock.Anything).Return(exampleCatalog(), nil).Once()

		svc := NewServiceImpl(catalog, FallbackGenerator{}, tracker, testLogger())
		_, err := svc.Generate(ctx, userID, types.GenerateItineraryRequest{Duration: 2, Interests: []string{"Shopping"}})
		assert.ErrorIs(t, err, types.ErrEmptyResult)
		tracker.AssertNotCalled(t, "Track", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid request skips the catalog", func(t *testing.T) {
		catalog := new(MockCatalog)
		svc := NewServiceImpl(catalog, FallbackGenerator{}, new(MockTracker), testLogger())
		_, err := svc.Generate(ctx, userID, types.GenerateItineraryRequest{Interests: []string{"Food"}})
		assert.ErrorIs(t, err, ErrMissingFields)
		catalog.AssertNotCalled(t, "Catalog", mock.Anything)
	})

	t.Run("catalog failure", func(t *testing.T) {
		catalog := new(MockCatalog)
		catalog.On("Catalog", mock.Anything).Return(nil, types.ErrStorage).Once()
		svc := NewServiceImpl(catalog, FallbackGenerator{}, new(MockTracker), testLogger())
		_, err := svc.Generate(ctx, userID, types.GenerateItineraryRequest{Duration: 1, Interests: []string{"Food"}})
		assert.True(t, errors.Is(err, types.ErrStorage))
	})
}
