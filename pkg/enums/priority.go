package enums

import (
	"fmt"
	"strings"
)

// Priority ranks how urgently an ingredient needs reordering.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var validPriorities = []Priority{
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Priority.
func (p Priority) IsValid() bool {
	for _, candidate := range validPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// Rank orders priorities for sorting: high=0, medium=1, low=2.
// Unknown values sort last.
func (p Priority) Rank() int {
	for i, candidate := range validPriorities {
		if candidate == p {
			return i
		}
	}
	return len(validPriorities)
}

// ParsePriority converts raw input into a Priority, ignoring case and surrounding space.
func ParsePriority(value string) (Priority, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPriorities {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q", value)
}
