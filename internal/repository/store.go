package repository

import (
	"context"
	"time"

	"roomserve/internal/domain"
)

// Store is unscoped persistence for one entity type. Callers outside this
// package go through ScopedRepository; only the guest entry point, principal
// resolution and the lifecycle engine read stores directly.
type Store[E domain.TenantOwned] interface {
	Insert(ctx context.Context, e E) error
	// FindByID returns an error wrapping domain.ErrNotFound when absent.
	FindByID(ctx context.Context, id string) (E, error)
	Find(ctx context.Context, filter ListFilter) ([]E, error)
	// Update writes e only while the stored row still belongs to owner.
	Update(ctx context.Context, e E, owner *string) error
	// Delete removes id only while the stored row still belongs to owner.
	Delete(ctx context.Context, id string, owner *string) error
}

// ListFilter narrows Find. Equals keys are resource-specific filter names;
// unknown keys fail with domain.ErrInvalidArgument.
type ListFilter struct {
	// TenantScoped restricts rows to TenantID (nil TenantID means direct-operated rows).
	TenantScoped bool
	TenantID     *string
	Equals       map[string]string
	Limit        int
	Offset       int
}

// WithTenant returns a copy of f scoped to tenantID.
func (f ListFilter) WithTenant(tenantID *string) ListFilter {
	f.TenantScoped = true
	f.TenantID = copyTenant(tenantID)
	return f
}

// OrderStore adds the atomic status write used by the order lifecycle.
type OrderStore interface {
	Store[*domain.Order]
	// CompareAndSetStatus moves id from -> to only while the stored status is
	// still from and the row still belongs to owner. It reports whether a row changed.
	CompareAndSetStatus(ctx context.Context, id string, owner *string, from, to domain.OrderStatus, at time.Time) (bool, error)
}

// UserStore adds role counting for the single-admin rule. Insert and Update
// fail with domain.ErrSingleAdminViolation when a second admin would exist.
type UserStore interface {
	Store[*domain.User]
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}

func copyTenant(t *string) *string {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
