package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roomserve/internal/domain"
)

// MemoryStore is the in-process Store used when the database is disabled and in tests.
// Rows are cloned on the way in and out so callers never share state with the store.
type MemoryStore[E domain.TenantOwned] struct {
	mu     sync.RWMutex
	rows   map[string]E
	order  []string
	clone  func(E) E
	fields func(E) map[string]string
	keys   map[string]struct{}

	// optional hooks, run under the write lock
	checkWrite func(rows map[string]E, next E) error
	merge      func(stored, next E) E
}

// NewMemoryStore builds a store; fields exposes the values of the filter keys.
func NewMemoryStore[E domain.TenantOwned](clone func(E) E, fields func(E) map[string]string, keys []string) *MemoryStore[E] {
	s := &MemoryStore[E]{
		rows:   map[string]E{},
		clone:  clone,
		fields: fields,
		keys:   map[string]struct{}{},
	}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

func (s *MemoryStore[E]) Insert(_ context.Context, e E) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := e.EntityID()
	if _, ok := s.rows[id]; ok {
		return domain.Invalid("duplicate id %s", id)
	}
	if s.checkWrite != nil {
		if err := s.checkWrite(s.rows, e); err != nil {
			return err
		}
	}
	s.rows[id] = s.clone(e)
	s.order = append(s.order, id)
	return nil
}

func (s *MemoryStore[E]) FindByID(_ context.Context, id string) (E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.rows[id]
	if !ok {
		var zero E
		return zero, domain.ErrNotFound
	}
	return s.clone(e), nil
}

func (s *MemoryStore[E]) Find(_ context.Context, f ListFilter) ([]E, error) {
	for k := range f.Equals {
		if _, ok := s.keys[k]; !ok {
			return nil, domain.Invalid("unknown filter %q", k)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []E{}
	skipped := 0
	for _, id := range s.order {
		e := s.rows[id]
		if f.TenantScoped && !domain.SameTenant(e.OwnerTenantID(), f.TenantID) {
			continue
		}
		if len(f.Equals) > 0 {
			vals := s.fields(e)
			match := true
			for k, v := range f.Equals {
				if vals[k] != v {
					match = false
					break
				}
			}
			if !match {
				continue
			}
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, s.clone(e))
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore[E]) Update(_ context.Context, e E, owner *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := e.EntityID()
	cur, ok := s.rows[id]
	if !ok || !domain.SameTenant(cur.OwnerTenantID(), owner) {
		return domain.ErrNotFound
	}
	next := s.clone(e)
	if s.merge != nil {
		next = s.merge(cur, next)
	}
	if s.checkWrite != nil {
		if err := s.checkWrite(s.rows, next); err != nil {
			return err
		}
	}
	s.rows[id] = next
	return nil
}

func (s *MemoryStore[E]) Delete(_ context.Context, id string, owner *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rows[id]
	if !ok || !domain.SameTenant(cur.OwnerTenantID(), owner) {
		return domain.ErrNotFound
	}
	delete(s.rows, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ Store[*domain.Dish] = (*MemoryStore[*domain.Dish])(nil)

// ============================================
// Orders
// ============================================

// MemoryOrderStore never lets Update touch the status; only CompareAndSetStatus does.
type MemoryOrderStore struct {
	*MemoryStore[*domain.Order]
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{MemoryStore: NewMemoryStore((*domain.Order).Clone, orderFields, orderFilterKeys)}
}

var _ OrderStore = (*MemoryOrderStore)(nil)

// Update mirrors PostgresOrderStore.Update: o.Status is the status observed
// at load and must still be stored.
func (s *MemoryOrderStore) Update(_ context.Context, o *domain.Order, owner *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rows[o.ID]
	if !ok || !domain.SameTenant(cur.TenantID, owner) {
		return domain.ErrNotFound
	}
	if cur.Status != o.Status {
		return fmt.Errorf("order %s left %s: %w", o.ID, o.Status, domain.ErrStaleState)
	}
	next := o.Clone()
	next.CreatedAt = cur.CreatedAt
	s.rows[o.ID] = next
	return nil
}

func (s *MemoryOrderStore) CompareAndSetStatus(_ context.Context, id string, owner *string, from, to domain.OrderStatus, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rows[id]
	if !ok || !domain.SameTenant(cur.TenantID, owner) || cur.Status != from {
		return false, nil
	}
	next := cur.Clone()
	next.Status = to
	next.UpdatedAt = at
	s.rows[id] = next
	return true, nil
}

// ============================================
// Users
// ============================================

type MemoryUserStore struct {
	*MemoryStore[*domain.User]
}

func NewMemoryUserStore() *MemoryUserStore {
	s := NewMemoryStore((*domain.User).Clone, userFields, userFilterKeys)
	s.merge = func(stored, next *domain.User) *domain.User {
		next.CreatedAt = stored.CreatedAt
		return next
	}
	s.checkWrite = func(rows map[string]*domain.User, next *domain.User) error {
		if next.Role != domain.RoleAdmin {
			return nil
		}
		for id, u := range rows {
			if id != next.ID && u.Role == domain.RoleAdmin {
				return fmt.Errorf("user %s: %w", next.ID, domain.ErrSingleAdminViolation)
			}
		}
		return nil
	}
	return &MemoryUserStore{MemoryStore: s}
}

var _ UserStore = (*MemoryUserStore)(nil)

func (s *MemoryUserStore) CountByRole(_ context.Context, role domain.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, u := range s.rows {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ============================================
// Catalog, finance, rooms
// ============================================

func NewMemoryDishStore() *MemoryStore[*domain.Dish] {
	return NewMemoryStore((*domain.Dish).Clone, dishFields, dishFilterKeys)
}

func NewMemoryCategoryStore() *MemoryStore[*domain.Category] {
	return NewMemoryStore((*domain.Category).Clone, func(*domain.Category) map[string]string { return nil }, nil)
}

func NewMemoryExpenseStore() *MemoryStore[*domain.Expense] {
	return NewMemoryStore((*domain.Expense).Clone, func(*domain.Expense) map[string]string { return nil }, nil)
}

func NewMemoryRoomStore() *MemoryStore[*domain.Room] {
	return NewMemoryStore((*domain.Room).Clone, func(*domain.Room) map[string]string { return nil }, nil)
}
