package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/go-travel-planner/docs"
	"github.com/FACorreiaa/go-travel-planner/internal/api/admin"
	"github.com/FACorreiaa/go-travel-planner/internal/api/analytics"
	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/api/chats"
	"github.com/FACorreiaa/go-travel-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-travel-planner/internal/api/poi"
	"github.com/FACorreiaa/go-travel-planner/internal/api/profiles"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler      *auth.HandlerImpl
	POIHandler       *poi.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl
	ProfileHandler   *profiles.HandlerImpl
	AdminHandler     *admin.HandlerImpl
	AnalyticsHandler *analytics.HandlerImpl
	ChatHandler      *chats.HandlerImpl

	Tokens         *auth.TokenManager
	Logger         *slog.Logger
	AllowedOrigins []string
	SwaggerEnabled bool
}

// SetupRouter initializes and configures the API router.
// Server-wide middleware (logger, requestID, recoverer) is applied in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	if cfg.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	authenticate := auth.Authenticate(cfg.Logger, cfg.Tokens)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Get("/pois", cfg.POIHandler.ListPOIs)
			r.Get("/pois/{id}", cfg.POIHandler.GetPOI)
			r.Post("/admin/login", cfg.AdminHandler.Login)
		})

		// User token required
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(auth.RequireRole(cfg.Logger, types.RoleUser))

			r.Get("/auth/validate", cfg.AuthHandler.Validate)
			r.Post("/itinerary/generate", cfg.ItineraryHandler.GenerateItinerary)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", cfg.ProfileHandler.GetProfile)
				r.Put("/", cfg.ProfileHandler.UpdateProfile)
				r.Get("/itineraries", cfg.ProfileHandler.ListItineraries)
				r.Post("/itineraries", cfg.ProfileHandler.SaveItinerary)
				r.Get("/itineraries/{id}", cfg.ProfileHandler.GetItinerary)
				r.Delete("/itineraries/{id}", cfg.ProfileHandler.DeleteItinerary)
				r.Get("/history", cfg.ProfileHandler.GetHistory)
				r.Post("/history", cfg.ProfileHandler.RecordVisit)
				r.Post("/survey", cfg.ProfileHandler.SubmitSurvey)

				r.Route("/chats", func(r chi.Router) {
					r.Get("/", cfg.ChatHandler.ListChats)
					r.Post("/", cfg.ChatHandler.CreateChat)
					r.Get("/session/{sessionId}", cfg.ChatHandler.GetChatBySession)
					r.Get("/{id}", cfg.ChatHandler.GetChat)
					r.Get("/{id}/messages", cfg.ChatHandler.ListMessages)
					r.Post("/{id}/messages", cfg.ChatHandler.AddMessage)
				})
			})
		})

		// Admin token required
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(auth.RequireRole(cfg.Logger, types.RoleSuperAdmin))

			r.Post("/admin/pois", cfg.POIHandler.CreatePOI)
			r.Put("/admin/pois/{id}", cfg.POIHandler.UpdatePOI)
			r.Delete("/admin/pois/{id}", cfg.POIHandler.DeletePOI)
			r.Get("/admin/analytics", cfg.AnalyticsHandler.Summary)
			r.Get("/admin/analytics/events", cfg.AnalyticsHandler.Events)
		})
	})

	return r
}
