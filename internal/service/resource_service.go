package service

import (
	"context"

	"roomserve/internal/access"
	"roomserve/internal/domain"
	"roomserve/internal/repository"
)

// Validatable entities check their own fields before they are stored.
type Validatable interface {
	domain.TenantOwned
	Validate() error
}

// ResourceService is plain CRUD over one tenant-scoped entity, gated by a
// read and a write permission.
type ResourceService[E Validatable] struct {
	repo  *repository.ScopedRepository[E]
	read  domain.Permission
	write domain.Permission
	merge func(dst, src E)
}

// NewResourceService builds the service. merge copies the editable fields of
// src onto dst for updates.
func NewResourceService[E Validatable](repo *repository.ScopedRepository[E], read, write domain.Permission, merge func(dst, src E)) *ResourceService[E] {
	return &ResourceService[E]{repo: repo, read: read, write: write, merge: merge}
}

func (s *ResourceService[E]) Create(ctx context.Context, p *domain.Principal, e E) (E, error) {
	var zero E
	if err := access.Require(p, s.write); err != nil {
		return zero, err
	}
	e.SetEntityID("")
	if err := e.Validate(); err != nil {
		return zero, err
	}
	return s.repo.Create(ctx, p, e)
}

func (s *ResourceService[E]) Get(ctx context.Context, p *domain.Principal, id string) (E, error) {
	var zero E
	if err := access.Require(p, s.read); err != nil {
		return zero, err
	}
	return s.repo.Get(ctx, p, id)
}

func (s *ResourceService[E]) List(ctx context.Context, p *domain.Principal, filter repository.ListFilter) ([]E, error) {
	if err := access.Require(p, s.read); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, p, filter)
}

// Update replaces the editable fields with those of src. A non-nil tenant on
// src moves the record, subject to the usual tenant rule.
func (s *ResourceService[E]) Update(ctx context.Context, p *domain.Principal, id string, src E) (E, error) {
	var zero E
	if err := access.Require(p, s.write); err != nil {
		return zero, err
	}
	target := src.OwnerTenantID()
	return s.repo.Update(ctx, p, id, repository.Patch[E]{
		SetTenant: target != nil,
		TenantID:  target,
		Apply: func(dst E) error {
			s.merge(dst, src)
			return dst.Validate()
		},
	})
}

func (s *ResourceService[E]) Delete(ctx context.Context, p *domain.Principal, id string) error {
	if err := access.Require(p, s.write); err != nil {
		return err
	}
	return s.repo.Delete(ctx, p, id)
}

func NewDishService(repo *repository.ScopedRepository[*domain.Dish]) *ResourceService[*domain.Dish] {
	return NewResourceService(repo, domain.PermMenuRead, domain.PermMenuWrite, func(dst, src *domain.Dish) {
		dst.CategoryID = src.CategoryID
		dst.Name = src.Name
		dst.Price = src.Price
		dst.Available = src.Available
	})
}

func NewCategoryService(repo *repository.ScopedRepository[*domain.Category]) *ResourceService[*domain.Category] {
	return NewResourceService(repo, domain.PermMenuRead, domain.PermMenuWrite, func(dst, src *domain.Category) {
		dst.Name = src.Name
		dst.SortOrder = src.SortOrder
	})
}

func NewExpenseService(repo *repository.ScopedRepository[*domain.Expense]) *ResourceService[*domain.Expense] {
	return NewResourceService(repo, domain.PermFinanceRead, domain.PermFinanceWrite, func(dst, src *domain.Expense) {
		dst.Description = src.Description
		dst.Amount = src.Amount
		dst.SpentAt = src.SpentAt
	})
}

// Rooms are managed with the menu keys; the room label is what staff print on the QR card.
func NewRoomService(repo *repository.ScopedRepository[*domain.Room]) *ResourceService[*domain.Room] {
	return NewResourceService(repo, domain.PermMenuRead, domain.PermMenuWrite, func(dst, src *domain.Room) {
		dst.Label = src.Label
	})
}
