package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/mise-backend/pkg/enums"
)

// TenantMembership grants a user a role inside a tenant other than (or in
// addition to) their home tenant.
type TenantMembership struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	TenantID  uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null"`
	Role      enums.MemberRole `gorm:"column:role;type:text;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
