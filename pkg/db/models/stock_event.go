package models

import (
	"time"

	"github.com/google/uuid"
)

// StockEvent records a manual or automatic stock adjustment.
type StockEvent struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID     uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	IngredientID uuid.UUID `gorm:"column:ingredient_id;type:uuid;not null"`
	Delta        float64   `gorm:"column:delta;not null"`
	Reason       string    `gorm:"column:reason;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
