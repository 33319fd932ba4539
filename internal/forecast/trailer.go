package forecast

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// BaselineTrailer is the HTTP trailer on a completed insight stream that
// carries the baseline computed from the same snapshot as the brief.
const BaselineTrailer = "X-Mise-Baseline"

// EncodeBaseline packs suggestions into a header-safe trailer value.
func EncodeBaseline(suggestions []Suggestion) (string, error) {
	if suggestions == nil {
		suggestions = []Suggestion{}
	}
	raw, err := json.Marshal(suggestions)
	if err != nil {
		return "", fmt.Errorf("encode baseline: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeBaseline(value string) ([]Suggestion, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode baseline trailer: %w", err)
	}
	out := []Suggestion{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode baseline trailer: %w", err)
	}
	return out, nil
}
