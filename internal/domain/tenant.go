package domain

import "time"

type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
)

func (s TenantStatus) Valid() bool {
	return s == TenantActive || s == TenantSuspended
}

// Tenant is a partner business (restaurant or hotel).
type Tenant struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	OwnerName string       `json:"owner_name"`
	Status    TenantStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Room maps a scanned QR code to its tenant.
type Room struct {
	ID       string  `json:"id"`
	TenantID *string `json:"tenant_id"`
	Label    string  `json:"label"`
}

func (r *Room) EntityID() string             { return r.ID }
func (r *Room) SetEntityID(id string)        { r.ID = id }
func (r *Room) OwnerTenantID() *string       { return r.TenantID }
func (r *Room) SetOwnerTenantID(tid *string) { r.TenantID = tid }

func (r *Room) Validate() error {
	if r.Label == "" {
		return Invalid("room label is required")
	}
	return nil
}
