package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity row referenced by the caller id carried in access tokens.
// TenantID is the tenant the account was created under, if any.
type User struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Email     string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	TenantID  *uuid.UUID `gorm:"column:tenant_id;type:uuid"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
