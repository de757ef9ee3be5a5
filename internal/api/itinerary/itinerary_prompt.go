package itinerary

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const SystemPrompt = "You are a Mumbai travel expert. Create personalized, well-paced itineraries."

// BuildPrompt lists the whole catalog so the model only proposes real attractions.
func BuildPrompt(params types.TripParams, catalog []types.POI) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a %d-day Mumbai itinerary for %d travelers interested in: %s.\n",
		params.DurationDays, params.TravelerCount, strings.Join(params.InterestTags, ", "))
	if req := strings.TrimSpace(params.SpecialRequirements); req != "" {
		fmt.Fprintf(&b, "Special requirements: %s\n", req)
	}

	b.WriteString("\nAvailable attractions:\n")
	for _, p := range catalog {
		fmt.Fprintf(&b, "- %s (%s, %s): %s\n", p.Title, p.Category, p.Duration, p.Description)
	}

	b.WriteString(`
Return a JSON object with an "itinerary" array using this structure:
{
  "itinerary": [
    {
      "day": 1,
      "title": "Day theme",
      "pois": [
        {
          "name": "attraction name",
          "description": "why visit and what to expect",
          "duration": "time needed"
        }
      ]
    }
  ]
}

Create a balanced itinerary with 3-4 attractions per day, considering travel time and interests.`)

	return b.String()
}
