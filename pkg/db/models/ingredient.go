package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ingredient is one stocked item. Quantities share the ingredient's unit;
// UsageRate is a weekly consumption estimate.
type Ingredient struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TenantID     uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index"`
	Name         string          `gorm:"column:name;not null"`
	Quantity     float64         `gorm:"column:quantity;not null;default:0"`
	Unit         string          `gorm:"column:unit;not null"`
	CostPerUnit  decimal.Decimal `gorm:"column:cost_per_unit;type:numeric(12,2);not null;default:0"`
	ParLevel     float64         `gorm:"column:par_level;not null;default:0"`
	ReorderPoint float64         `gorm:"column:reorder_point;not null;default:0"`
	Category     string          `gorm:"column:category;not null;default:''"`
	UsageRate    *float64        `gorm:"column:usage_rate"`
	Supplier     *string         `gorm:"column:supplier"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
