package domain

import "sort"

// Role of a user account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RolePartner Role = "partner"
	RoleUser    Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff, RolePartner, RoleUser:
		return true
	}
	return false
}

// Permission is a capability key of the form "<area>:<verb>".
type Permission string

const (
	PermOrdersRead       Permission = "orders:read"
	PermOrdersWrite      Permission = "orders:write"
	PermOrdersTransition Permission = "orders:transition"
	PermMenuRead         Permission = "menu:read"
	PermMenuWrite        Permission = "menu:write"
	PermFinanceRead      Permission = "finance:read"
	PermFinanceWrite     Permission = "finance:write"
	PermUsersRead        Permission = "users:read"
	PermUsersWrite       Permission = "users:write"
	PermReportsExport    Permission = "reports:export"
	PermTenantsManage    Permission = "tenants:manage"
)

// AllPermissions in a stable order.
var AllPermissions = []Permission{
	PermOrdersRead, PermOrdersWrite, PermOrdersTransition,
	PermMenuRead, PermMenuWrite,
	PermFinanceRead, PermFinanceWrite,
	PermUsersRead, PermUsersWrite,
	PermReportsExport, PermTenantsManage,
}

func (p Permission) Valid() bool {
	for _, k := range AllPermissions {
		if k == p {
			return true
		}
	}
	return false
}

// PermissionSet is an unordered set of permission keys.
type PermissionSet map[Permission]struct{}

func NewPermissionSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Union returns a new set; neither operand is modified.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	out := make(PermissionSet, len(s)+len(other))
	for p := range s {
		out[p] = struct{}{}
	}
	for p := range other {
		out[p] = struct{}{}
	}
	return out
}

// Sorted returns the keys sorted lexically, for JSON output and tests.
func (s PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Principal is the resolved identity of the current request. It never outlives the request.
type Principal struct {
	ID          string
	Role        Role
	TenantID    *string
	Permissions PermissionSet
}

func (p *Principal) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

func (p *Principal) Can(perm Permission) bool {
	return p != nil && p.Permissions.Has(perm)
}

// TenantPtr returns a copy of s as *string, nil for "".
func TenantPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SameTenant compares two optional tenant ids; two nils are equal.
func SameTenant(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
