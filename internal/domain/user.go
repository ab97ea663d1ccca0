package domain

import (
	"net/mail"
	"time"
)

// User is a staff/partner/admin account. Permissions holds the per-user
// overrides only; role-implied keys are added when the principal is resolved.
type User struct {
	ID          string       `json:"id"`
	Account     string       `json:"account"`
	Email       string       `json:"email,omitempty"`
	Role        Role         `json:"role"`
	TenantID    *string      `json:"tenant_id"`
	Permissions []Permission `json:"permissions"`
	IsLocked    bool         `json:"is_locked"`
	IsOnline    bool         `json:"is_online"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (u *User) EntityID() string             { return u.ID }
func (u *User) SetEntityID(id string)        { u.ID = id }
func (u *User) OwnerTenantID() *string       { return u.TenantID }
func (u *User) SetOwnerTenantID(tid *string) { u.TenantID = tid }

func (u *User) Validate() error {
	if u.Account == "" {
		return Invalid("account is required")
	}
	if !u.Role.Valid() {
		return Invalid("unknown role %q", u.Role)
	}
	for _, p := range u.Permissions {
		if !p.Valid() {
			return Invalid("unknown permission %q", p)
		}
	}
	if u.Email != "" {
		if err := ValidateEmail(u.Email); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEmail accepts a bare RFC 5322 address, no display name.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return Invalid("malformed email %q", email)
	}
	return nil
}
