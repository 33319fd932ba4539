package forecast

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/angelmondragon/mise-backend/internal/inventory"
	"github.com/angelmondragon/mise-backend/pkg/enums"
)

//go:embed prompts.yaml
var promptsYAML []byte

type promptSet struct {
	Preamble        string                              `yaml:"preamble"`
	Tasks           map[enums.InsightRequestType]string `yaml:"tasks"`
	General         string                              `yaml:"general"`
	UserInstruction string                              `yaml:"user_instruction"`
}

var prompts = mustLoadPrompts(promptsYAML)

func mustLoadPrompts(raw []byte) promptSet {
	var p promptSet
	if err := yaml.Unmarshal(raw, &p); err != nil {
		panic(fmt.Sprintf("forecast: parse prompts.yaml: %v", err))
	}
	if p.Preamble == "" || p.General == "" || p.UserInstruction == "" {
		panic("forecast: prompts.yaml is missing preamble, general or user_instruction")
	}
	for _, rt := range []enums.InsightRequestType{
		enums.InsightReorderForecast,
		enums.InsightCostOptimizer,
		enums.InsightWasteReduction,
		enums.InsightInventoryReports,
	} {
		if strings.TrimSpace(p.Tasks[rt]) == "" {
			panic(fmt.Sprintf("forecast: prompts.yaml has no task for %s", rt))
		}
	}
	return p
}

// UserInstruction is the fixed user turn sent alongside every brief.
func UserInstruction() string {
	return strings.TrimSpace(prompts.UserInstruction)
}

// BuildBrief renders the system prompt for a completion: preamble, ingredient
// table, recent activity and the task for requestType. Unknown request types
// get the general advice task. Output is deterministic for a given input.
func BuildBrief(snap *inventory.Snapshot, requestType enums.InsightRequestType) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(prompts.Preamble))
	b.WriteString("\n\n")

	b.WriteString("Current inventory:\n")
	b.WriteString("| Ingredient | On hand | Unit cost | Par | Reorder point |\n")
	b.WriteString("|---|---|---|---|---|\n")
	var items []inventory.Item
	if snap != nil {
		items = snap.Items
	}
	for _, item := range items {
		fmt.Fprintf(&b, "| %s | %s %s | %s | %s | %s |\n",
			cell(item.Name),
			formatQty(item.Quantity),
			cell(item.Unit),
			item.CostPerUnit.StringFixed(2),
			formatQty(item.ParLevel),
			formatQty(item.ReorderPoint),
		)
	}
	b.WriteString("\n")
	b.WriteString(activityLine(snap))
	b.WriteString("\n\n")

	b.WriteString(strings.TrimSpace(taskFor(requestType)))
	b.WriteString("\n")
	return b.String()
}

func taskFor(requestType enums.InsightRequestType) string {
	if task, ok := prompts.Tasks[requestType]; ok && requestType.IsValid() {
		return task
	}
	return prompts.General
}

func activityLine(snap *inventory.Snapshot) string {
	if snap == nil {
		return "Recent activity: none recorded."
	}
	var wasted float64
	for _, w := range snap.RecentWasteEntries {
		wasted += w.Quantity
	}
	return fmt.Sprintf(
		"Recent activity: %d stock adjustments, %d purchase orders, %d waste entries (%s units wasted in total).",
		len(snap.RecentStockEvents),
		len(snap.RecentPurchaseOrders),
		len(snap.RecentWasteEntries),
		formatQty(wasted),
	)
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// cell keeps free text from breaking the table.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	return strings.Join(strings.Fields(s), " ")
}
