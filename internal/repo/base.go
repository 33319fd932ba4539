package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Tenant returns a session whose queries are restricted to tenantID.
// Every read of tenant-owned rows goes through here.
func (b Base) Tenant(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return b.DB(ctx).Scopes(TenantScope(tenantID))
}

// TenantScope filters on the tenant_id column.
func TenantScope(tenantID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("tenant_id = ?", tenantID)
	}
}

// RecentScope orders newest first, breaking ties by id, and caps the result.
func RecentScope(limit int) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		tx = tx.Order("created_at DESC").Order("id DESC")
		if limit > 0 {
			tx = tx.Limit(limit)
		}
		return tx
	}
}
