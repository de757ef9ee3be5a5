package types

import (
	"time"

	"github.com/google/uuid"
)

// POI is a visitable attraction. Category is an open tag vocabulary.
type POI struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title" example:"Marine Drive Promenade"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl" example:"/assets/marine-drive.jpg"`
	Duration    string    `json:"duration" example:"2-3 hours"`
	Difficulty  string    `json:"difficulty" example:"Easy"`
	Category    string    `json:"category" example:"Heritage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// POIInput is the admin payload for creating or replacing a POI.
type POIInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Duration    string `json:"duration"`
	Difficulty  string `json:"difficulty"`
	Category    string `json:"category"`
}

func (in POIInput) Missing() bool {
	return in.Title == "" || in.Description == "" || in.ImageURL == "" ||
		in.Duration == "" || in.Difficulty == "" || in.Category == ""
}

// POIFilter narrows GET /api/pois. Zero values mean no filtering.
type POIFilter struct {
	Category string
	Query    string
	Limit    uint64
	Offset   uint64
}
