package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type VisitHistory struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	POIID     uuid.UUID `json:"poiId"`
	VisitedAt time.Time `json:"visitedAt"`
}

// HistoryEntry is a visit enriched with the POI it refers to. Name and
// Category fall back to "Unknown" when the POI no longer exists.
type HistoryEntry struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Date     string    `json:"date"`
	Category string    `json:"category"`
}

// HistoryRow is the repository projection behind HistoryEntry.
type HistoryRow struct {
	ID        uuid.UUID
	VisitedAt time.Time
	POITitle  string
	Category  string
}

type RecordVisitRequest struct {
	POIID string `json:"poiId"`
}

type ProfileStats struct {
	TripsCount    int `json:"tripsCount"`
	PlacesVisited int `json:"placesVisited"`
	SavedCount    int `json:"savedCount"`
}

type ProfileResponse struct {
	User  UserSummary  `json:"user"`
	Stats ProfileStats `json:"stats"`
}

type Survey struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Answers   json.RawMessage `json:"answers" swaggertype:"object"`
	CreatedAt time.Time       `json:"createdAt"`
}

type SurveyRequest struct {
	Answers json.RawMessage `json:"answers" swaggertype:"object"`
}

// UpdateProfileRequest edits contact details. Absent fields are left
// unchanged and an empty string clears the field.
type UpdateProfileRequest struct {
	Email *string `json:"email,omitempty" example:"john.doe@example.com"`
	Name  *string `json:"name,omitempty" example:"John Doe"`
}
