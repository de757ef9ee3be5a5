package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const RoleSuperAdmin = "superadmin"

type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" example:"admin@mumbaitravel.com"`
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}

// Analytics event kinds emitted by the services.
const (
	EventUserRegistered     = "user_registered"
	EventItineraryGenerated = "itinerary_generated"
	EventItinerarySaved     = "itinerary_saved"
	EventItineraryDeleted   = "itinerary_deleted"
	EventPOIVisited         = "poi_visited"
	EventSurveySubmitted    = "survey_submitted"
	EventProfileUpdated     = "profile_updated"
	EventChatStarted        = "chat_started"
)

type AnalyticsEvent struct {
	ID        uuid.UUID       `json:"id"`
	UserID    *uuid.UUID      `json:"userId,omitempty"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload" swaggertype:"object"`
	CreatedAt time.Time       `json:"createdAt"`
}

type AnalyticsSummary struct {
	From         time.Time        `json:"from"`
	To           time.Time        `json:"to"`
	CountsByKind map[string]int64 `json:"countsByKind"`
	UniqueUsers  int64            `json:"uniqueUsers"`
	Events       []AnalyticsEvent `json:"events"`
}

// LlmInteraction records one delegated generation call.
type LlmInteraction struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	Provider  string     `json:"provider"`
	Model     string     `json:"model"`
	Prompt    string     `json:"prompt"`
	Response  string     `json:"response"`
	Error     string     `json:"error,omitempty"`
	LatencyMs int64      `json:"latencyMs"`
	CreatedAt time.Time  `json:"createdAt"`
}
