package forecast

import (
	"math"
	"sort"

	"github.com/angelmondragon/mise-backend/internal/inventory"
	"github.com/angelmondragon/mise-backend/pkg/enums"
)

const (
	daysPerWeek = 7
	// noUsageDays stands in when there is stock but no usage estimate.
	noUsageDays = 14

	highPriorityMaxDays   = 2
	mediumPriorityMaxDays = 5
)

// Fixed reasoning strings, one per priority tier.
const (
	ReasonHigh   = "Critically low stock"
	ReasonMedium = "Approaching stockout based on usage patterns"
	ReasonLow    = "Below reorder threshold"
)

// Forecast builds the baseline suggestion list: every item at or below its
// reorder point, sorted by priority rank then days until stockout. Items that
// tie on both keep their input order.
func Forecast(items []inventory.Item) []Suggestion {
	out := make([]Suggestion, 0, len(items))
	for _, item := range items {
		if item.Quantity > item.ReorderPoint {
			continue
		}
		days := DaysUntilStockout(item.Quantity, item.UsageRate)
		priority := PriorityFor(days)
		out = append(out, Suggestion{
			ID:                item.ID,
			Name:              item.Name,
			CurrentStock:      item.Quantity,
			ReorderAmount:     math.Max(0, item.ParLevel-item.Quantity),
			Unit:              item.Unit,
			Priority:          priority,
			DaysUntilStockout: days,
			Reasoning:         ReasoningFor(priority),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].DaysUntilStockout < out[j].DaysUntilStockout
	})
	return out
}

// DaysUntilStockout converts stock and a weekly usage rate into whole days,
// rounding up. Weeks of cover are computed first and then scaled to days;
// the other order rounds differently at the ceiling. Without a positive usage rate it returns 14 while stock
// remains and 0 otherwise.
func DaysUntilStockout(stock float64, weeklyUsage *float64) int {
	if weeklyUsage != nil && *weeklyUsage > 0 {
		days := math.Ceil((stock / *weeklyUsage) * daysPerWeek)
		if days < 0 {
			return 0
		}
		return int(days)
	}
	if stock > 0 {
		return noUsageDays
	}
	return 0
}

// PriorityFor is a step function of the day count.
func PriorityFor(days int) enums.Priority {
	switch {
	case days <= highPriorityMaxDays:
		return enums.PriorityHigh
	case days <= mediumPriorityMaxDays:
		return enums.PriorityMedium
	default:
		return enums.PriorityLow
	}
}

func ReasoningFor(p enums.Priority) string {
	switch p {
	case enums.PriorityHigh:
		return ReasonHigh
	case enums.PriorityMedium:
		return ReasonMedium
	default:
		return ReasonLow
	}
}
