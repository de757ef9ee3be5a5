package itinerary

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// PlanFallback builds an itinerary without a model. POIs whose category
// contains the first word of any interest are kept in catalog order and split
// into ceil(n/days)-sized chunks, one per day. Days that would be empty are
// omitted, so the result can be shorter than the requested duration.
func PlanFallback(params types.TripParams, catalog []types.POI) ([]types.DayPlan, error) {
	if params.DurationDays < 1 {
		return nil, fmt.Errorf("%w: duration must be at least one day", types.ErrValidation)
	}

	keys := interestKeys(params.InterestTags)
	var matched []types.POI
	for _, p := range catalog {
		category := strings.ToLower(p.Category)
		for _, k := range keys {
			if strings.Contains(category, k) {
				matched = append(matched, p)
				break
			}
		}
	}
	if len(matched) == 0 {
		return nil, types.ErrEmptyResult
	}

	theme := "Exploration"
	if len(params.InterestTags) > 0 && strings.TrimSpace(params.InterestTags[0]) != "" {
		theme = strings.TrimSpace(params.InterestTags[0])
	}

	perDay := (len(matched) + params.DurationDays - 1) / params.DurationDays
	plans := make([]types.DayPlan, 0, params.DurationDays)
	for day := 1; day <= params.DurationDays; day++ {
		start := (day - 1) * perDay
		if start >= len(matched) {
			break
		}
		end := min(start+perDay, len(matched))

		stops := make([]types.POISummary, 0, end-start)
		for _, p := range matched[start:end] {
			stops = append(stops, types.POISummary{
				Name:        p.Title,
				Description: p.Description,
				Duration:    p.Duration,
				ImageURL:    p.ImageURL,
			})
		}
		plans = append(plans, types.DayPlan{
			Day:   day,
			Title: fmt.Sprintf("Day %d: %s", day, theme),
			POIs:  stops,
		})
	}
	return plans, nil
}

// interestKeys lower-cases the first word of every interest. "Heritage Sites"
// matches the "Heritage" category through "heritage".
func interestKeys(interests []string) []string {
	keys := make([]string, 0, len(interests))
	for _, tag := range interests {
		fields := strings.Fields(strings.ToLower(tag))
		if len(fields) == 0 {
			continue
		}
		keys = append(keys, fields[0])
	}
	return keys
}
