package access

import (
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/mise-backend/pkg/enums"
)

// TenantAccessRecord is the caller's home tenant plus any tenant roles granted
// through memberships.
type TenantAccessRecord struct {
	CallerID       uuid.UUID
	DirectTenantID *uuid.UUID
	Roles          map[uuid.UUID]enums.MemberRole
}

// Allows reports whether the record grants access to tenantID: either it is the
// caller's direct tenant, or a non-empty role is held there.
func (r *TenantAccessRecord) Allows(tenantID uuid.UUID) bool {
	if r == nil || tenantID == uuid.Nil {
		return false
	}
	if r.DirectTenantID != nil && *r.DirectTenantID == tenantID {
		return true
	}
	role, ok := r.Roles[tenantID]
	return ok && strings.TrimSpace(string(role)) != ""
}
