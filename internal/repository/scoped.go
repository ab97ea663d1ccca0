package repository

import (
	"context"
	"fmt"

	"roomserve/internal/access"
	"roomserve/internal/domain"

	"github.com/google/uuid"
)

// Patch describes an update. SetTenant moves the record to TenantID; Apply
// mutates the loaded record in place. Apply cannot change id or tenant.
type Patch[E any] struct {
	SetTenant bool
	TenantID  *string
	Apply     func(E) error
}

// ScopedRepository applies the tenant rule to every call on the wrapped Store.
type ScopedRepository[E domain.TenantOwned] struct {
	resource  string
	store     Store[E]
	guard     *access.Guard
	protected map[string]struct{}
}

type Option[E domain.TenantOwned] func(*ScopedRepository[E])

// WithProtectedIDs makes Delete reject these ids for every caller.
func WithProtectedIDs[E domain.TenantOwned](ids ...string) Option[E] {
	return func(r *ScopedRepository[E]) {
		for _, id := range ids {
			r.protected[id] = struct{}{}
		}
	}
}

func NewScopedRepository[E domain.TenantOwned](resource string, store Store[E], guard *access.Guard, opts ...Option[E]) *ScopedRepository[E] {
	r := &ScopedRepository[E]{
		resource:  resource,
		store:     store,
		guard:     guard,
		protected: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create stores e. Non-admins always write into their own tenant, whatever e carries;
// admins keep e's tenant (nil = direct-operated).
func (r *ScopedRepository[E]) Create(ctx context.Context, p *domain.Principal, e E) (E, error) {
	var zero E
	if p == nil {
		return zero, domain.ErrUnauthenticated
	}
	if !p.IsAdmin() {
		if err := r.guard.Check(p, p.TenantID, access.ActionWrite); err != nil {
			return zero, fmt.Errorf("create %s: %w", r.resource, err)
		}
		e.SetOwnerTenantID(copyTenant(p.TenantID))
	}
	if e.EntityID() == "" {
		e.SetEntityID(uuid.NewString())
	}
	if err := r.store.Insert(ctx, e); err != nil {
		return zero, fmt.Errorf("create %s: %w", r.resource, err)
	}
	return e, nil
}

// Get returns domain.ErrNotFound for a missing id and domain.ErrForbidden for
// an id owned by another tenant.
func (r *ScopedRepository[E]) Get(ctx context.Context, p *domain.Principal, id string) (E, error) {
	return r.load(ctx, p, id, access.ActionRead)
}

func (r *ScopedRepository[E]) load(ctx context.Context, p *domain.Principal, id string, action access.Action) (E, error) {
	var zero E
	if p == nil {
		return zero, domain.ErrUnauthenticated
	}
	e, err := r.store.FindByID(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", r.resource, id, err)
	}
	if err := r.guard.Check(p, e.OwnerTenantID(), action); err != nil {
		return zero, fmt.Errorf("%s %s: %w", r.resource, id, err)
	}
	return e, nil
}

// List forces the principal's tenant into the filter for non-admins. Admins
// get every tenant unless filter is already tenant scoped.
func (r *ScopedRepository[E]) List(ctx context.Context, p *domain.Principal, filter ListFilter) ([]E, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !p.IsAdmin() {
		if err := r.guard.Check(p, p.TenantID, access.ActionRead); err != nil {
			return nil, fmt.Errorf("list %s: %w", r.resource, err)
		}
		filter = filter.WithTenant(p.TenantID)
	}
	rows, err := r.store.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.resource, err)
	}
	out := rows[:0]
	for _, e := range rows {
		if access.Authorize(p, e.OwnerTenantID(), access.ActionRead) == access.Allow {
			out = append(out, e)
		}
	}
	return out, nil
}

// Update loads id under the same rules as Get, applies patch and persists it.
// A non-admin patch naming a foreign tenant fails with domain.ErrConflictingTenant.
func (r *ScopedRepository[E]) Update(ctx context.Context, p *domain.Principal, id string, patch Patch[E]) (E, error) {
	var zero E
	cur, err := r.load(ctx, p, id, access.ActionWrite)
	if err != nil {
		return zero, err
	}
	owner := copyTenant(cur.OwnerTenantID())
	target := owner
	if patch.SetTenant {
		if !p.IsAdmin() && !domain.SameTenant(patch.TenantID, p.TenantID) {
			return zero, fmt.Errorf("update %s %s: %w", r.resource, id, domain.ErrConflictingTenant)
		}
		target = copyTenant(patch.TenantID)
	}
	if patch.Apply != nil {
		if err := patch.Apply(cur); err != nil {
			return zero, fmt.Errorf("update %s %s: %w", r.resource, id, err)
		}
	}
	cur.SetEntityID(id)
	cur.SetOwnerTenantID(target)
	if err := r.store.Update(ctx, cur, owner); err != nil {
		return zero, fmt.Errorf("update %s %s: %w", r.resource, id, err)
	}
	return cur, nil
}

// Delete rejects protected ids before any lookup, then follows Update's rules.
func (r *ScopedRepository[E]) Delete(ctx context.Context, p *domain.Principal, id string) error {
	if _, ok := r.protected[id]; ok {
		return fmt.Errorf("delete %s %s: %w", r.resource, id, domain.ErrProtectedIdentity)
	}
	cur, err := r.load(ctx, p, id, access.ActionWrite)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, id, cur.OwnerTenantID()); err != nil {
		return fmt.Errorf("delete %s %s: %w", r.resource, id, err)
	}
	return nil
}
