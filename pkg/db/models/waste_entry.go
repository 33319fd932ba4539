package models

import (
	"time"

	"github.com/google/uuid"
)

// WasteEntry logs discarded stock.
type WasteEntry struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID     uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	IngredientID uuid.UUID `gorm:"column:ingredient_id;type:uuid;not null"`
	Quantity     float64   `gorm:"column:quantity;not null"`
	Unit         string    `gorm:"column:unit;not null"`
	Reason       string    `gorm:"column:reason;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
