package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/api/admin"
	"github.com/FACorreiaa/go-travel-planner/internal/api/analytics"
	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/api/chats"
	generativeAI "github.com/FACorreiaa/go-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-planner/internal/api/itinerary"
	llmInteraction "github.com/FACorreiaa/go-travel-planner/internal/api/llm_interaction"
	"github.com/FACorreiaa/go-travel-planner/internal/api/poi"
	"github.com/FACorreiaa/go-travel-planner/internal/api/profiles"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool
	Tokens *auth.TokenManager

	AuthHandler      *auth.HandlerImpl
	POIHandler       *poi.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl
	ProfileHandler   *profiles.HandlerImpl
	AdminHandler     *admin.HandlerImpl
	AnalyticsHandler *analytics.HandlerImpl
	ChatHandler      *chats.HandlerImpl
}

// NewContainer opens the connection pool and wires every service on top of it.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(ctx, dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	c, err := NewWithQuerier(ctx, cfg, pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	c.Pool = pool
	return c, nil
}

// NewWithQuerier wires repositories, services and handlers over db.
func NewWithQuerier(ctx context.Context, cfg *config.Config, db database.Querier, logger *slog.Logger) (*Container, error) {
	tokens, err := auth.NewTokenManager(cfg.JWT)
	if err != nil {
		return nil, err
	}

	analyticsService := analytics.NewServiceImpl(analytics.NewRepositoryImpl(db, logger), logger)

	authRepo := auth.NewRepositoryImpl(db, logger)
	authService := auth.NewServiceImpl(authRepo, tokens, analyticsService, logger)

	poiService := poi.NewServiceImpl(poi.NewRepositoryImpl(db, logger), logger)

	generator, err := newGenerator(ctx, cfg.LLM, db, logger)
	if err != nil {
		return nil, err
	}
	itineraryService := itinerary.NewServiceImpl(poiService, generator, analyticsService, logger)

	profileService := profiles.NewServiceImpl(profiles.NewRepositoryImpl(db, logger), authRepo, poiService, analyticsService, logger)

	chatService := chats.NewServiceImpl(chats.NewRepositoryImpl(db, logger), analyticsService, cfg.LLM.Provider, logger)

	adminService := admin.NewServiceImpl(admin.NewRepositoryImpl(db, logger), tokens, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Tokens:           tokens,
		AuthHandler:      auth.NewHandlerImpl(authService, logger),
		POIHandler:       poi.NewHandlerImpl(poiService, logger),
		ItineraryHandler: itinerary.NewHandlerImpl(itineraryService, logger),
		ProfileHandler:   profiles.NewHandlerImpl(profileService, logger),
		AdminHandler:     admin.NewHandlerImpl(adminService, logger),
		AnalyticsHandler: analytics.NewHandlerImpl(analyticsService, logger),
		ChatHandler:      chats.NewHandlerImpl(chatService, logger),
	}, nil
}

// newGenerator picks the generation mode once, at startup.
func newGenerator(ctx context.Context, cfg config.LLMConfig, db database.Querier, logger *slog.Logger) (itinerary.Generator, error) {
	completer, err := generativeAI.NewCompleter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if completer == nil {
		return itinerary.FallbackGenerator{}, nil
	}
	interactions := llmInteraction.NewRepositoryImpl(db, logger)
	return itinerary.NewDelegatedGenerator(completer, interactions, cfg.Timeout, cfg.CacheTTL, logger), nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
