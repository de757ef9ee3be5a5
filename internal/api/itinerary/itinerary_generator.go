package itinerary

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	generativeAI "github.com/FACorreiaa/go-travel-planner/internal/api/generative_ai"
	llmInteraction "github.com/FACorreiaa/go-travel-planner/internal/api/llm_interaction"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	ModeFallback  = "fallback"
	ModeDelegated = "delegated"

	defaultTimeout = 60 * time.Second
)

// Generator produces day plans for validated trip parameters.
type Generator interface {
	Generate(ctx context.Context, userID uuid.UUID, params types.TripParams, catalog []types.POI) ([]types.DayPlan, error)
	Mode() string
}

var (
	_ Generator = FallbackGenerator{}
	_ Generator = (*DelegatedGenerator)(nil)
)

type FallbackGenerator struct{}

func (FallbackGenerator) Mode() string { return ModeFallback }

func (FallbackGenerator) Generate(_ context.Context, _ uuid.UUID, params types.TripParams, catalog []types.POI) ([]types.DayPlan, error) {
	return PlanFallback(params, catalog)
}

// DelegatedGenerator asks a hosted model for the itinerary. Each call is a
// single attempt bounded by timeout; identical prompts are served from the
// cache while it is enabled.
type DelegatedGenerator struct {
	completer    generativeAI.Completer
	interactions llmInteraction.Repository
	timeout      time.Duration
	memo         *cache.Cache
	logger       *slog.Logger
}

// NewDelegatedGenerator disables memoization when cacheTTL is zero.
func NewDelegatedGenerator(completer generativeAI.Completer, interactions llmInteraction.Repository,
	timeout, cacheTTL time.Duration, logger *slog.Logger) *DelegatedGenerator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	g := &DelegatedGenerator{
		completer:    completer,
		interactions: interactions,
		timeout:      timeout,
		logger:       logger,
	}
	if cacheTTL > 0 {
		g.memo = cache.New(cacheTTL, 2*cacheTTL)
	}
	return g
}

func (g *DelegatedGenerator) Mode() string { return ModeDelegated }

func (g *DelegatedGenerator) Generate(ctx context.Context, userID uuid.UUID, params types.TripParams, catalog []types.POI) ([]types.DayPlan, error) {
	l := g.logger.With(slog.String("method", "Generate"), slog.String("provider", g.completer.Provider()))

	prompt := BuildPrompt(params, catalog)
	key := g.completer.Provider() + "|" + g.completer.Model() + "|" + prompt
	if g.memo != nil {
		if cached, ok := g.memo.Get(key); ok {
			l.DebugContext(ctx, "Serving itinerary from cache")
			return clonePlans(cached.([]types.DayPlan)), nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	raw, err := g.completer.Complete(callCtx, generativeAI.Prompt{System: SystemPrompt, User: prompt})
	latency := time.Since(start)

	g.record(ctx, userID, prompt, raw, err, latency)

	if err != nil {
		reason := generativeAI.Classify(err)
		if errors.Is(err, context.DeadlineExceeded) {
			l.WarnContext(ctx, "Model call timed out", slog.Duration("timeout", g.timeout))
		}
		l.ErrorContext(ctx, "Model call failed", slog.String("reason", string(reason)), slog.Any("error", err))
		return nil, types.NewGenerationError(reason, err)
	}

	plans, err := Normalize(raw)
	if err != nil {
		l.ErrorContext(ctx, "Model returned an unusable itinerary", slog.Any("error", err))
		return nil, err
	}
	if g.memo != nil {
		g.memo.SetDefault(key, clonePlans(plans))
	}
	return plans, nil
}

// record keeps the interaction even when the request context is already done.
func (g *DelegatedGenerator) record(ctx context.Context, userID uuid.UUID, prompt, response string, callErr error, latency time.Duration) {
	if g.interactions == nil {
		return
	}
	interaction := types.LlmInteraction{
		Provider:  g.completer.Provider(),
		Model:     g.completer.Model(),
		Prompt:    prompt,
		Response:  response,
		LatencyMs: latency.Milliseconds(),
	}
	if userID != uuid.Nil {
		interaction.UserID = &userID
	}
	if callErr != nil {
		interaction.Error = callErr.Error()
	}
	if err := g.interactions.SaveInteraction(context.WithoutCancel(ctx), interaction); err != nil {
		g.logger.WarnContext(ctx, "Failed to record llm interaction", slog.Any("error", err))
	}
}

func clonePlans(in []types.DayPlan) []types.DayPlan {
	out := make([]types.DayPlan, len(in))
	for i, p := range in {
		out[i] = p
		out[i].POIs = make([]types.POISummary, len(p.POIs))
		copy(out[i].POIs, p.POIs)
	}
	return out
}
