package forecast

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/mise-backend/pkg/enums"
)

// Suggestion is one reorder recommendation. It is rebuilt from the current
// snapshot on every request and never persisted.
type Suggestion struct {
	ID                uuid.UUID      `json:"id"`
	Name              string         `json:"name"`
	CurrentStock      float64        `json:"currentStock"`
	ReorderAmount     float64        `json:"reorderAmount"`
	Unit              string         `json:"unit"`
	Priority          enums.Priority `json:"priority"`
	DaysUntilStockout int            `json:"daysUntilStockout"`
	Reasoning         string         `json:"reasoning"`
	AIEnhanced        bool           `json:"aiEnhanced"`
}

// Override holds the fields extracted from completion text for one suggestion.
// Nil fields were not found.
type Override struct {
	DaysUntilStockout *int
	Priority          *enums.Priority
	Reasoning         *string
}

// Empty reports whether nothing was extracted.
func (o *Override) Empty() bool {
	return o == nil || (o.DaysUntilStockout == nil && o.Priority == nil && o.Reasoning == nil)
}

// Reconciled is a baseline suggestion with an optional override on top.
type Reconciled struct {
	Baseline Suggestion
	Override *Override
}

// Merged applies the override to the baseline. aiEnhanced is set only when at
// least one field came from the override.
func (r Reconciled) Merged() Suggestion {
	out := r.Baseline
	if r.Override.Empty() {
		return out
	}
	if r.Override.DaysUntilStockout != nil {
		out.DaysUntilStockout = *r.Override.DaysUntilStockout
	}
	if r.Override.Priority != nil {
		out.Priority = *r.Override.Priority
	}
	if r.Override.Reasoning != nil {
		out.Reasoning = *r.Override.Reasoning
	}
	out.AIEnhanced = true
	return out
}
