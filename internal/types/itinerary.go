package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxTripDays = 30

// POISummary is one stop inside a day plan.
type POISummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// DayPlan is one day of an itinerary. Day is 1-based.
type DayPlan struct {
	Day   int          `json:"day"`
	Title string       `json:"title"`
	POIs  []POISummary `json:"pois"`
}

// TripParams is the validated input of the generation engine.
type TripParams struct {
	DurationDays        int
	TravelerCount       int
	InterestTags        []string
	SpecialRequirements string
}

// FlexInt accepts a JSON number or a numeric string, since form clients post "3".
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		*f = FlexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

// GenerateItineraryRequest is the body of POST /api/itinerary/generate.
type GenerateItineraryRequest struct {
	Duration     FlexInt  `json:"duration" swaggertype:"integer" example:"3"`
	Travelers    FlexInt  `json:"travelers" swaggertype:"integer" example:"2"`
	Interests    []string `json:"interests" example:"Heritage Sites,Food"`
	Requirements string   `json:"requirements,omitempty"`
}

// SavedItinerary is a persisted itinerary. Data holds the day plans exactly as submitted.
type SavedItinerary struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Title     string          `json:"title"`
	Days      int             `json:"days"`
	Data      json.RawMessage `json:"data" swaggertype:"array,object"`
	CreatedAt time.Time       `json:"createdAt"`
}

// DayPlans decodes the stored payload.
func (s *SavedItinerary) DayPlans() ([]DayPlan, error) {
	var plans []DayPlan
	if err := json.Unmarshal(s.Data, &plans); err != nil {
		return nil, fmt.Errorf("decode itinerary %s payload: %w", s.ID, err)
	}
	return plans, nil
}

// SaveItineraryRequest is the body of POST /api/profile/itineraries. OwnerID
// is accepted for compatibility and ignored; the owner comes from the token.
type SaveItineraryRequest struct {
	Title   string          `json:"title"`
	Days    int             `json:"days"`
	Data    json.RawMessage `json:"data" swaggertype:"array,object"`
	OwnerID *string         `json:"userId,omitempty" swaggerignore:"true"`
}

// ItinerarySummary is one row of the profile itinerary list.
type ItinerarySummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date" example:"Mar 4, 2025"`
	Days      int       `json:"days"`
	Locations int       `json:"locations"`
}

// CountLocations sums the stops across all day plans.
func CountLocations(plans []DayPlan) int {
	total := 0
	for _, p := range plans {
		total += len(p.POIs)
	}
	return total
}

// DisplayDate renders timestamps the way the profile pages show them.
func DisplayDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

type MessageResponse struct {
	Message string `json:"message"`
}
