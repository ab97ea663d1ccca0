package domain

// TenantOwned is implemented by every record that belongs to at most one tenant.
// A nil owner marks platform-global data, reachable only by admins.
type TenantOwned interface {
	EntityID() string
	SetEntityID(id string)
	OwnerTenantID() *string
	SetOwnerTenantID(tenantID *string)
}
