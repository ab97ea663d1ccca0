package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"roomserve/internal/domain"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"

	singleAdminConstraint = "users_single_admin_idx"
)

func nullableTenant(t *string) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func tenantFrom(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// mapCommonPQError turns constraint failures into domain errors.
func mapCommonPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case pqUniqueViolation:
		if pqErr.Constraint == singleAdminConstraint {
			return domain.ErrSingleAdminViolation
		}
		return domain.Invalid("duplicate value violates %s", pqErr.Constraint)
	case pqForeignKeyViolation:
		return domain.Invalid("referenced row does not exist (%s)", pqErr.Constraint)
	case pqCheckViolation:
		return domain.Invalid("value violates %s", pqErr.Constraint)
	}
	return err
}

// ============================================
// Orders
// ============================================

var orderFilterKeys = []string{"status", "room_id", "payment_method"}

func orderFields(o *domain.Order) map[string]string {
	return map[string]string{
		"status":         string(o.Status),
		"room_id":        o.RoomID,
		"payment_method": string(o.PaymentMethod),
	}
}

var orderMapper = Mapper[*domain.Order]{
	Table:     "orders",
	Columns:   []string{"id", "tenant_id", "room_id", "items", "total_amount", "status", "payment_method", "created_at", "updated_at"},
	Immutable: []string{"status", "created_at"},
	Filters:   orderFilterKeys,
	OrderBy:   "created_at DESC, id",
	Scan: func(r rowScanner) (*domain.Order, error) {
		var o domain.Order
		var tenant sql.NullString
		var items []byte
		if err := r.Scan(&o.ID, &tenant, &o.RoomID, &items, &o.TotalAmount, &o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.TenantID = tenantFrom(tenant)
		if len(items) > 0 {
			if err := json.Unmarshal(items, &o.Items); err != nil {
				return nil, fmt.Errorf("decode items of order %s: %w", o.ID, err)
			}
		}
		return &o, nil
	},
	Values: func(o *domain.Order) []any {
		items, _ := json.Marshal(o.Items)
		return []any{o.ID, nullableTenant(o.TenantID), o.RoomID, string(items), o.TotalAmount, string(o.Status), string(o.PaymentMethod), o.CreatedAt, o.UpdatedAt}
	},
	MapError: mapCommonPQError,
}

// ============================================
// Users
// ============================================

var userFilterKeys = []string{"role", "account"}

func userFields(u *domain.User) map[string]string {
	return map[string]string{"role": string(u.Role), "account": u.Account}
}

func permissionStrings(ps []domain.Permission) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

var userMapper = Mapper[*domain.User]{
	Table:     "users",
	Columns:   []string{"id", "tenant_id", "account", "email", "role", "permissions", "is_locked", "is_online", "created_at", "updated_at"},
	Immutable: []string{"created_at"},
	Filters:   userFilterKeys,
	OrderBy:   "account",
	Scan: func(r rowScanner) (*domain.User, error) {
		var u domain.User
		var tenant, email sql.NullString
		var perms []string
		if err := r.Scan(&u.ID, &tenant, &u.Account, &email, &u.Role, pq.Array(&perms), &u.IsLocked, &u.IsOnline, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.TenantID = tenantFrom(tenant)
		u.Email = email.String
		for _, p := range perms {
			u.Permissions = append(u.Permissions, domain.Permission(p))
		}
		return &u, nil
	},
	Values: func(u *domain.User) []any {
		return []any{u.ID, nullableTenant(u.TenantID), u.Account, nullString(u.Email), string(u.Role), pq.Array(permissionStrings(u.Permissions)), u.IsLocked, u.IsOnline, u.CreatedAt, u.UpdatedAt}
	},
	MapError: mapCommonPQError,
}

// ============================================
// Dishes / categories / expenses / rooms
// ============================================

var dishFilterKeys = []string{"category_id", "available"}

func dishFields(d *domain.Dish) map[string]string {
	return map[string]string{"category_id": d.CategoryID, "available": strconv.FormatBool(d.Available)}
}

var dishMapper = Mapper[*domain.Dish]{
	Table:   "dishes",
	Columns: []string{"id", "tenant_id", "category_id", "name", "price", "available"},
	Filters: dishFilterKeys,
	OrderBy: "name",
	Scan: func(r rowScanner) (*domain.Dish, error) {
		var d domain.Dish
		var tenant, category sql.NullString
		if err := r.Scan(&d.ID, &tenant, &category, &d.Name, &d.Price, &d.Available); err != nil {
			return nil, err
		}
		d.TenantID = tenantFrom(tenant)
		d.CategoryID = category.String
		return &d, nil
	},
	Values: func(d *domain.Dish) []any {
		return []any{d.ID, nullableTenant(d.TenantID), nullString(d.CategoryID), d.Name, d.Price, d.Available}
	},
	MapError: mapCommonPQError,
}

var categoryMapper = Mapper[*domain.Category]{
	Table:   "categories",
	Columns: []string{"id", "tenant_id", "name", "sort_order"},
	OrderBy: "sort_order, name",
	Scan: func(r rowScanner) (*domain.Category, error) {
		var c domain.Category
		var tenant sql.NullString
		if err := r.Scan(&c.ID, &tenant, &c.Name, &c.SortOrder); err != nil {
			return nil, err
		}
		c.TenantID = tenantFrom(tenant)
		return &c, nil
	},
	Values: func(c *domain.Category) []any {
		return []any{c.ID, nullableTenant(c.TenantID), c.Name, c.SortOrder}
	},
	MapError: mapCommonPQError,
}

var expenseMapper = Mapper[*domain.Expense]{
	Table:   "expenses",
	Columns: []string{"id", "tenant_id", "description", "amount", "spent_at"},
	OrderBy: "spent_at DESC, id",
	Scan: func(r rowScanner) (*domain.Expense, error) {
		var e domain.Expense
		var tenant sql.NullString
		if err := r.Scan(&e.ID, &tenant, &e.Description, &e.Amount, &e.SpentAt); err != nil {
			return nil, err
		}
		e.TenantID = tenantFrom(tenant)
		return &e, nil
	},
	Values: func(e *domain.Expense) []any {
		return []any{e.ID, nullableTenant(e.TenantID), e.Description, e.Amount, e.SpentAt}
	},
	MapError: mapCommonPQError,
}

var roomMapper = Mapper[*domain.Room]{
	Table:   "rooms",
	Columns: []string{"id", "tenant_id", "label"},
	OrderBy: "id",
	Scan: func(r rowScanner) (*domain.Room, error) {
		var room domain.Room
		var tenant sql.NullString
		if err := r.Scan(&room.ID, &tenant, &room.Label); err != nil {
			return nil, err
		}
		room.TenantID = tenantFrom(tenant)
		return &room, nil
	},
	Values: func(room *domain.Room) []any {
		return []any{room.ID, nullableTenant(room.TenantID), room.Label}
	},
	MapError: mapCommonPQError,
}

func NewPostgresDishStore(db *sql.DB) *PostgresStore[*domain.Dish] {
	return NewPostgresStore(db, dishMapper)
}

func NewPostgresCategoryStore(db *sql.DB) *PostgresStore[*domain.Category] {
	return NewPostgresStore(db, categoryMapper)
}

func NewPostgresExpenseStore(db *sql.DB) *PostgresStore[*domain.Expense] {
	return NewPostgresStore(db, expenseMapper)
}

func NewPostgresRoomStore(db *sql.DB) *PostgresStore[*domain.Room] {
	return NewPostgresStore(db, roomMapper)
}
