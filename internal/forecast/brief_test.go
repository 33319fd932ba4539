package forecast

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/mise-backend/internal/inventory"
	"github.com/angelmondragon/mise-backend/pkg/enums"
)

func sampleSnapshot() *inventory.Snapshot {
	return &inventory.Snapshot{
		TenantID: uuid.New(),
		Items: []inventory.Item{
			{ID: uuid.New(), Name: "Basil", Quantity: 0, Unit: "bunch", CostPerUnit: decimal.RequireFromString("1.1"), ParLevel: 10, ReorderPoint: 5},
			{ID: uuid.New(), Name: "Tomatoes | Roma", Quantity: 5.5, Unit: "kg", CostPerUnit: decimal.RequireFromString("2.40"), ParLevel: 20, ReorderPoint: 10},
		},
		RecentStockEvents:  make([]inventory.StockEvent, 3),
		RecentWasteEntries: []inventory.WasteEntry{{Quantity: 1.5}, {Quantity: 2}},
	}
}

func TestBuildBriefContainsTableAndTask(t *testing.T) {
	brief := BuildBrief(sampleSnapshot(), enums.InsightReorderForecast)

	assert.True(t, strings.HasPrefix(brief, "You are an inventory assistant"))
	assert.Contains(t, brief, "| Ingredient | On hand | Unit cost | Par | Reorder point |")
	assert.Contains(t, brief, "| Basil | 0 bunch | 1.10 | 10 | 5 |")
	assert.Contains(t, brief, "| Tomatoes / Roma | 5.5 kg | 2.40 | 20 | 10 |")
	assert.Contains(t, brief, "3 stock adjustments, 0 purchase orders, 2 waste entries (3.5 units wasted in total)")
	assert.Contains(t, brief, "Task: produce a reorder forecast")
}

func TestBuildBriefSelectsTemplatePerRequestType(t *testing.T) {
	snap := sampleSnapshot()
	tests := map[enums.InsightRequestType]string{
		enums.InsightReorderForecast:  "Task: produce a reorder forecast",
		enums.InsightCostOptimizer:    "Task: find ways to lower ingredient spend",
		enums.InsightWasteReduction:   "Task: reduce waste",
		enums.InsightInventoryReports: "Task: write a concise inventory status report",
		"menu-engineering":            "Task: give general advice",
		"":                            "Task: give general advice",
	}
	for rt, want := range tests {
		assert.Contains(t, BuildBrief(snap, rt), want, "request type %q", rt)
	}
}

func TestBuildBriefIsDeterministic(t *testing.T) {
	snap := sampleSnapshot()
	assert.Equal(t, BuildBrief(snap, enums.InsightWasteReduction), BuildBrief(snap, enums.InsightWasteReduction))
}

func TestBuildBriefEmptySnapshot(t *testing.T) {
	brief := BuildBrief(&inventory.Snapshot{}, enums.InsightReorderForecast)
	assert.Contains(t, brief, "|---|---|---|---|---|\n\nRecent activity: 0 stock adjustments")

	nilBrief := BuildBrief(nil, enums.InsightReorderForecast)
	assert.Contains(t, nilBrief, "Recent activity: none recorded.")
}

func TestUserInstructionIsFixed(t *testing.T) {
	assert.NotEmpty(t, UserInstruction())
	assert.Equal(t, UserInstruction(), UserInstruction())
}

func TestMustLoadPromptsPanicsOnMissingTask(t *testing.T) {
	assert.Panics(t, func() {
		mustLoadPrompts([]byte("preamble: a\ngeneral: b\nuser_instruction: c\ntasks:\n  reorder-forecast: x\n"))
	})
	assert.Panics(t, func() { mustLoadPrompts([]byte("preamble: [")) })
}
