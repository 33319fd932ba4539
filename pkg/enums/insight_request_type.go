package enums

import "fmt"

// InsightRequestType selects the task template appended to an inventory brief.
type InsightRequestType string

const (
	InsightReorderForecast  InsightRequestType = "reorder-forecast"
	InsightCostOptimizer    InsightRequestType = "cost-optimizer"
	InsightWasteReduction   InsightRequestType = "waste-reduction"
	InsightInventoryReports InsightRequestType = "inventory-reports"
)

var validInsightRequestTypes = []InsightRequestType{
	InsightReorderForecast,
	InsightCostOptimizer,
	InsightWasteReduction,
	InsightInventoryReports,
}

// String implements fmt.Stringer.
func (t InsightRequestType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known InsightRequestType.
func (t InsightRequestType) IsValid() bool {
	for _, candidate := range validInsightRequestTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseInsightRequestType converts raw input into an InsightRequestType.
func ParseInsightRequestType(value string) (InsightRequestType, error) {
	for _, candidate := range validInsightRequestTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid insight request type %q", value)
}
