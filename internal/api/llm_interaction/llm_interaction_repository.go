package llmInteraction

import (
	"context"
	"fmt"
	"log/slog"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists one row per delegated generation call.
type Repository interface {
	SaveInteraction(ctx context.Context, interaction types.LlmInteraction) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     database.Querier
}

func NewRepositoryImpl(db database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

func (r *RepositoryImpl) SaveInteraction(ctx context.Context, interaction types.LlmInteraction) error {
	query, args, err := database.Psql.Insert("llm_interactions").
		Columns("user_id", "provider", "model", "prompt", "response", "error", "latency_ms").
		Values(interaction.UserID, interaction.Provider, interaction.Model, interaction.Prompt,
			interaction.Response, interaction.Error, interaction.LatencyMs).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert interaction query: %w", err)
	}
	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		metrics.RecordDBError(ctx, "llm_interaction.save")
		return fmt.Errorf("failed to save llm interaction: %w", err)
	}
	return nil
}
