package itinerary

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// largeCatalog repeats the example catalog n times with distinct titles.
func largeCatalog(n int) []types.POI {
	base := exampleCatalog()
	out := make([]types.POI, 0, n*len(base))
	for i := 0; i < n; i++ {
		for _, p := range base {
			p.Title = fmt.Sprintf("%s #%d", p.Title, i)
			out = append(out, p)
		}
	}
	return out
}

func BenchmarkPlanFallback(b *testing.B) {
	for _, size := range []int{1, 50, 500} {
		catalog := largeCatalog(size)
		params := types.TripParams{DurationDays: 7, TravelerCount: 2, InterestTags: []string{"Heritage Sites", "Food"}}

		b.Run(fmt.Sprintf("catalog=%d", len(catalog)), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := PlanFallback(params, catalog); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkNormalize(b *testing.B) {
	inputs := map[string]string{
		"array":   twoDays,
		"wrapped": `{"itinerary":` + twoDays + `}`,
		"fenced":  "```json\n" + twoDays + "\n```",
	}
	for name, raw := range inputs {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Normalize(raw); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDayPlanSerialization(b *testing.B) {
	plans, err := PlanFallback(types.TripParams{DurationDays: 5, InterestTags: []string{"Heritage"}}, largeCatalog(20))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		data, _ := json.Marshal(plans)
		var result []types.DayPlan
		_ = json.Unmarshal(data, &result)
	}
}
