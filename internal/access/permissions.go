package access

import (
	"roomserve/internal/domain"
)

// PermissionModel maps roles to their implied permissions.
type PermissionModel struct {
	roles map[domain.Role]domain.PermissionSet
}

// DefaultPermissionModel is the built-in role table.
func DefaultPermissionModel() *PermissionModel {
	all := domain.NewPermissionSet(domain.AllPermissions...)

	partner := domain.NewPermissionSet(domain.AllPermissions...)
	delete(partner, domain.PermTenantsManage)

	manager := domain.NewPermissionSet(
		domain.PermOrdersRead, domain.PermOrdersWrite, domain.PermOrdersTransition,
		domain.PermMenuRead, domain.PermMenuWrite,
		domain.PermFinanceRead, domain.PermFinanceWrite,
		domain.PermUsersRead, domain.PermUsersWrite,
		domain.PermReportsExport,
	)

	staff := domain.NewPermissionSet(
		domain.PermOrdersRead, domain.PermOrdersWrite, domain.PermOrdersTransition,
		domain.PermMenuRead,
	)

	user := domain.NewPermissionSet(domain.PermOrdersRead, domain.PermMenuRead)

	return &PermissionModel{roles: map[domain.Role]domain.PermissionSet{
		domain.RoleAdmin:   all,
		domain.RolePartner: partner,
		domain.RoleManager: manager,
		domain.RoleStaff:   staff,
		domain.RoleUser:    user,
	}}
}

// Implied returns a copy of the permissions a role grants. Unknown roles get none.
func (m *PermissionModel) Implied(role domain.Role) domain.PermissionSet {
	return domain.PermissionSet{}.Union(m.roles[role])
}

// Materialize is role-implied ∪ overrides.
func (m *PermissionModel) Materialize(role domain.Role, overrides []domain.Permission) domain.PermissionSet {
	return m.Implied(role).Union(domain.NewPermissionSet(overrides...))
}

// Require fails with a MISSING_PERMISSION denial unless p holds perm.
func Require(p *domain.Principal, perm domain.Permission) error {
	if p == nil {
		return &Error{Code: CodeNoPrincipal, Err: domain.ErrUnauthenticated}
	}
	if !p.Permissions.Has(perm) {
		return &Error{Code: CodeMissingPermission, Err: domain.ErrForbidden}
	}
	return nil
}
