package domain

import "time"

type Category struct {
	ID        string  `json:"id"`
	TenantID  *string `json:"tenant_id"`
	Name      string  `json:"name"`
	SortOrder int     `json:"sort_order"`
}

func (c *Category) EntityID() string             { return c.ID }
func (c *Category) SetEntityID(id string)        { c.ID = id }
func (c *Category) OwnerTenantID() *string       { return c.TenantID }
func (c *Category) SetOwnerTenantID(tid *string) { c.TenantID = tid }

func (c *Category) Validate() error {
	if c.Name == "" {
		return Invalid("category name is required")
	}
	return nil
}

// Dish price is in minor currency units.
type Dish struct {
	ID         string  `json:"id"`
	TenantID   *string `json:"tenant_id"`
	CategoryID string  `json:"category_id,omitempty"`
	Name       string  `json:"name"`
	Price      int64   `json:"price"`
	Available  bool    `json:"available"`
}

func (d *Dish) EntityID() string             { return d.ID }
func (d *Dish) SetEntityID(id string)        { d.ID = id }
func (d *Dish) OwnerTenantID() *string       { return d.TenantID }
func (d *Dish) SetOwnerTenantID(tid *string) { d.TenantID = tid }

func (d *Dish) Validate() error {
	if d.Name == "" {
		return Invalid("dish name is required")
	}
	if d.Price < 0 {
		return Invalid("dish price must not be negative")
	}
	return nil
}

type Expense struct {
	ID          string    `json:"id"`
	TenantID    *string   `json:"tenant_id"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	SpentAt     time.Time `json:"spent_at"`
}

func (e *Expense) EntityID() string             { return e.ID }
func (e *Expense) SetEntityID(id string)        { e.ID = id }
func (e *Expense) OwnerTenantID() *string       { return e.TenantID }
func (e *Expense) SetOwnerTenantID(tid *string) { e.TenantID = tid }

func (e *Expense) Validate() error {
	if e.Description == "" {
		return Invalid("expense description is required")
	}
	if e.Amount <= 0 {
		return Invalid("expense amount must be positive")
	}
	return nil
}
