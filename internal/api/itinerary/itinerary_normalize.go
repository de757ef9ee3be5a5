package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var errUnknownShape = errors.New("model response is not an itinerary")

// Normalize turns a model reply into day plans. Accepted shapes are a bare
// array, {"itinerary": [...]} and {"days": [...]}, optionally inside a
// markdown code fence. Anything else, including an empty array, is a generic
// generation failure. Days without a number are numbered by position.
func Normalize(raw string) ([]types.DayPlan, error) {
	body := bytes.TrimSpace([]byte(stripCodeFence(raw)))
	if len(body) == 0 {
		return nil, types.NewGenerationError(types.GenerationReasonGeneric, fmt.Errorf("%w: empty response", errUnknownShape))
	}

	var list json.RawMessage
	switch body[0] {
	case '[':
		list = body
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, types.NewGenerationError(types.GenerationReasonGeneric, fmt.Errorf("decode response: %w", err))
		}
		for _, key := range []string{"itinerary", "days"} {
			if v, ok := envelope[key]; ok && isArray(v) {
				list = v
				break
			}
		}
	}
	if list == nil {
		return nil, types.NewGenerationError(types.GenerationReasonGeneric, errUnknownShape)
	}

	var plans []types.DayPlan
	if err := json.Unmarshal(list, &plans); err != nil {
		return nil, types.NewGenerationError(types.GenerationReasonGeneric, fmt.Errorf("decode day plans: %w", err))
	}
	if len(plans) == 0 {
		return nil, types.NewGenerationError(types.GenerationReasonGeneric, fmt.Errorf("%w: no days", errUnknownShape))
	}

	for i := range plans {
		if plans[i].Day <= 0 {
			plans[i].Day = i + 1
		}
		if plans[i].POIs == nil {
			plans[i].POIs = []types.POISummary{}
		}
	}
	return plans, nil
}

func isArray(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '['
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}
