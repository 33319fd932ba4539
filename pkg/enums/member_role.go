package enums

// MemberRole is the role a user holds inside a tenant (restaurant).
// Any non-empty role grants read access to that tenant's inventory.
type MemberRole string

const (
	MemberRoleOwner   MemberRole = "owner"
	MemberRoleManager MemberRole = "manager"
	MemberRoleChef    MemberRole = "chef"
	MemberRoleStaff   MemberRole = "staff"
	MemberRoleViewer  MemberRole = "viewer"
)

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}
