package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mise-backend/pkg/db/models"
)

// Snapshot is the tenant-scoped slice of inventory data one forecast reads.
type Snapshot struct {
	TenantID             uuid.UUID
	Items                []Item
	RecentStockEvents    []StockEvent
	RecentPurchaseOrders []PurchaseOrder
	RecentWasteEntries   []WasteEntry
}

// Item is the domain view of one ingredient. The validate tags describe a
// well-formed row; the aggregator logs rows that break them.
type Item struct {
	ID           uuid.UUID       `json:"id" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Quantity     float64         `json:"quantity"`
	Unit         string          `json:"unit"`
	CostPerUnit  decimal.Decimal `json:"costPerUnit"`
	ParLevel     float64         `json:"parLevel" validate:"gte=0"`
	ReorderPoint float64         `json:"reorderPoint" validate:"gte=0"`
	Category     string          `json:"category"`
	UsageRate    *float64        `json:"usageRate,omitempty" validate:"omitempty,gte=0"`
	Supplier     *string         `json:"supplier,omitempty"`
}

type StockEvent struct {
	ID           uuid.UUID `json:"id"`
	IngredientID uuid.UUID `json:"ingredientId"`
	Delta        float64   `json:"delta"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"createdAt"`
}

type PurchaseOrder struct {
	ID        uuid.UUID       `json:"id"`
	Supplier  string          `json:"supplier"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

type WasteEntry struct {
	ID           uuid.UUID `json:"id"`
	IngredientID uuid.UUID `json:"ingredientId"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"createdAt"`
}

func itemFromModel(m models.Ingredient) Item {
	return Item{
		ID:           m.ID,
		Name:         m.Name,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		CostPerUnit:  m.CostPerUnit,
		ParLevel:     m.ParLevel,
		ReorderPoint: m.ReorderPoint,
		Category:     m.Category,
		UsageRate:    m.UsageRate,
		Supplier:     m.Supplier,
	}
}

func stockEventsFromModels(rows []models.StockEvent) []StockEvent {
	out := make([]StockEvent, 0, len(rows))
	for _, r := range rows {
		out = append(out, StockEvent{ID: r.ID, IngredientID: r.IngredientID, Delta: r.Delta, Reason: r.Reason, CreatedAt: r.CreatedAt})
	}
	return out
}

func purchaseOrdersFromModels(rows []models.PurchaseOrder) []PurchaseOrder {
	out := make([]PurchaseOrder, 0, len(rows))
	for _, r := range rows {
		out = append(out, PurchaseOrder{ID: r.ID, Supplier: r.Supplier, Status: r.Status, Total: r.Total, CreatedAt: r.CreatedAt})
	}
	return out
}

func wasteEntriesFromModels(rows []models.WasteEntry) []WasteEntry {
	out := make([]WasteEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, WasteEntry{ID: r.ID, IngredientID: r.IngredientID, Quantity: r.Quantity, Unit: r.Unit, Reason: r.Reason, CreatedAt: r.CreatedAt})
	}
	return out
}
