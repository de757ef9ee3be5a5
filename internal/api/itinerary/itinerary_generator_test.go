package itinerary

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	generativeAI "github.com/FACorreiaa/go-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

type fakeCompleter struct {
	reply string
	err   error
	delay time.Duration
	calls atomic.Int32
	last  generativeAI.Prompt
}

func (f *fakeCompleter) Provider() string { return "openai" }
func (f *fakeCompleter) Model() string    { return "gpt-4o-mini" }

func (f *fakeCompleter) Complete(ctx context.Context, p generativeAI.Prompt) (string, error) {
	f.calls.Add(1)
	f.last = p
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) SaveInteraction(ctx context.Context, interaction types.LlmInteraction) error {
	return m.Called(ctx, interaction).Error(0)
}

var tripParams = types.TripParams{DurationDays: 2, TravelerCount: 2, InterestTags: []string{"Heritage"}}

func TestDelegatedGeneratorSuccess(t *testing.T) {
	completer := &fakeCompleter{reply: `{"itinerary":` + twoDays + `}`}
	repo := new(MockInteractionRepository)
	userID := uuid.New()

	repo.On("SaveInteraction", mock.Anything, mock.MatchedBy(func(i types.LlmInteraction) bool {
		return i.Provider == "openai" && i.Model == "gpt-4o-mini" && i.UserID != nil && *i.UserID == userID &&
			i.Error == "" && i.Response != ""
	})).Return(nil).Once()

	g := NewDelegatedGenerator(completer, repo, time.Second, 0, testLogger())
	plans, err := g.Generate(context.Background(), userID, tripParams, exampleCatalog())
	require.NoError(t, err)
	assert.Len(t, plans, 2)
	assert.Equal(t, SystemPrompt, completer.last.System)
	assert.Contains(t, completer.last.User, "Create a 2-day Mumbai itinerary")
	assert.Equal(t, ModeDelegated, g.Mode())
	repo.AssertExpectations(t)
}

func TestDelegatedGeneratorFailures(t *testing.T) {
	tests := []struct {
		name       string
		completer  *fakeCompleter
		wantReason types.GenerationReason
	}{
		{
			name:       "quota",
			completer:  &fakeCompleter{err: genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}},
			wantReason: types.GenerationReasonQuota,
		},
		{
			name:       "bad credential",
			completer:  &fakeCompleter{err: genai.APIError{Code: 400, Message: "API key not valid"}},
			wantReason: types.GenerationReasonCredential,
		},
		{
			name:       "unusable reply",
			completer:  &fakeCompleter{reply: `{"plan":"see you there"}`},
			wantReason: types.GenerationReasonGeneric,
		},
		{
			name:       "timeout",
			completer:  &fakeCompleter{delay: time.Second},
			wantReason: types.GenerationReasonGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockInteractionRepository)
			repo.On("SaveInteraction", mock.Anything, mock.Anything).Return(errors.New("log table missing")).Once()

			g := NewDelegatedGenerator(tt.completer, repo, 20*time.Millisecond, 0, testLogger())
			_, err := g.Generate(context.Background(), uuid.New(), tripParams, exampleCatalog())
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrGenerationFailed)

			var genErr *types.GenerationError
			require.True(t, errors.As(err, &genErr))
			assert.Equal(t, tt.wantReason, genErr.Reason)
			assert.EqualValues(t, 1, tt.completer.calls.Load(), "no retries")
			repo.AssertExpectations(t)
		})
	}
}

func TestDelegatedGeneratorClientDisconnect(t *testing.T) {
	completer := &fakeCompleter{delay: time.Minute}
	repo := new(MockInteractionRepository)
	repo.On("SaveInteraction", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.MatchedBy(func(i types.LlmInteraction) bool {
		return i.Error == context.Canceled.Error()
	})).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	g := NewDelegatedGenerator(completer, repo, time.Minute, 0, testLogger())
	start := time.Now()
	_, err := g.Generate(ctx, uuid.New(), tripParams, exampleCatalog())
	assert.ErrorIs(t, err, types.ErrGenerationFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Second)
	repo.AssertExpectations(t)
}

func TestDelegatedGeneratorMemoizes(t *testing.T) {
	completer := &fakeCompleter{reply: twoDays}
	repo := new(MockInteractionRepository)
	repo.On("SaveInteraction", mock.Anything, mock.Anything).Return(nil).Once()

	g := NewDelegatedGenerator(completer, repo, time.Second, time.Minute, testLogger())
	first, err := g.Generate(context.Background(), uuid.New(), tripParams, exampleCatalog())
	require.NoError(t, err)

	first[0].Title = "mutated by caller"
	second, err := g.Generate(context.Background(), uuid.New(), tripParams, exampleCatalog())
	require.NoError(t, err)

	assert.EqualValues(t, 1, completer.calls.Load())
	assert.Equal(t, "Forts", second[0].Title)
	repo.AssertExpectations(t)
}

func TestFallbackGenerator(t *testing.T) {
	g := FallbackGenerator{}
	assert.Equal(t, ModeFallback, g.Mode())
	plans, err := g.Generate(context.Background(), uuid.New(), tripParams, exampleCatalog())
	require.NoError(t, err)
	assert.Len(t, plans, 2)
}
