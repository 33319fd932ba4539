package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mise-backend/internal/repo"
	"github.com/angelmondragon/mise-backend/pkg/db/models"
	"github.com/angelmondragon/mise-backend/pkg/enums"
)

// RecordStore loads access records. A nil record with a nil error means the
// caller is unknown.
type RecordStore interface {
	FindRecord(ctx context.Context, callerID uuid.UUID) (*TenantAccessRecord, error)
}

// Repository reads access records from the users and tenant_memberships tables.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) FindRecord(ctx context.Context, callerID uuid.UUID) (*TenantAccessRecord, error) {
	var user models.User
	err := r.DB(ctx).
		Select("id", "tenant_id", "is_active").
		Where("id = ?", callerID).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", callerID, err)
	}
	if !user.IsActive {
		return nil, nil
	}

	var memberships []models.TenantMembership
	if err := r.DB(ctx).
		Where("user_id = ?", callerID).
		Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("load memberships for %s: %w", callerID, err)
	}

	record := &TenantAccessRecord{
		CallerID:       user.ID,
		DirectTenantID: user.TenantID,
		Roles:          make(map[uuid.UUID]enums.MemberRole, len(memberships)),
	}
	for _, m := range memberships {
		record.Roles[m.TenantID] = m.Role
	}
	return record, nil
}
