package itinerary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Generate(ctx context.Context, userID uuid.UUID, req types.GenerateItineraryRequest) ([]types.DayPlan, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.DayPlan), args.Error(1)
}

func TestGenerateItineraryHandler(t *testing.T) {
	userID := uuid.New()
	plans := []types.DayPlan{{Day: 1, Title: "Day 1: Food", POIs: []types.POISummary{{Name: "Khau Galli"}}}}

	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantMsg    string
	}{
		{name: "ok", body: `{"duration":"1","travelers":2,"interests":["Food"]}`, wantStatus: http.StatusOK},
		{name: "extra form fields", body: `{"duration":"1","travelers":2,"interests":["Food"],"budget":"low","userId":"x"}`, wantStatus: http.StatusOK},
		{name: "missing", body: `{"interests":[]}`, serviceErr: ErrMissingFields, wantStatus: http.StatusBadRequest,
			wantMsg: "Missing required fields: duration and interests are required"},
		{name: "no matches", body: `{"duration":2,"interests":["Shopping"]}`, serviceErr: types.ErrEmptyResult, wantStatus: http.StatusBadRequest,
			wantMsg: "No attractions found matching your interests. Try different categories."},
		{name: "quota", body: `{"duration":2,"interests":["Food"]}`,
			serviceErr: types.NewGenerationError(types.GenerationReasonQuota, errors.New("429")), wantStatus: http.StatusInternalServerError,
			wantMsg: "AI service quota exceeded. Please try again later or contact support."},
		{name: "credential", body: `{"duration":2,"interests":["Food"]}`,
			serviceErr: types.NewGenerationError(types.GenerationReasonCredential, errors.New("401")), wantStatus: http.StatusInternalServerError,
			wantMsg: "AI service configuration error. Please contact support."},
		{name: "generic", body: `{"duration":2,"interests":["Food"]}`,
			serviceErr: types.NewGenerationError(types.GenerationReasonGeneric, errors.New("bad shape")), wantStatus: http.StatusInternalServerError,
			wantMsg: "Failed to generate itinerary. Please try again or contact support if the issue persists."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.serviceErr != nil {
				svc.On("Generate", mock.Anything, userID, mock.Anything).Return(nil, tt.serviceErr).Once()
			} else {
				svc.On("Generate", mock.Anything, userID, types.GenerateItineraryRequest{Duration: 1, Travelers: 2, Interests: []string{"Food"}}).
					Return(plans, nil).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/api/itinerary/generate", bytes.NewBufferString(tt.body))
			req = req.WithContext(auth.WithUserID(req.Context(), userID))
			rec := httptest.NewRecorder()
			NewHandlerImpl(svc, testLogger()).GenerateItinerary(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantMsg, body["message"])
			} else {
				var got []types.DayPlan
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, plans, got)
			}
			svc.AssertExpectations(t)
		})
	}
}
