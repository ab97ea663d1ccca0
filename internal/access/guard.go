// Package access decides whether a principal may touch a tenant's data.
package access

import (
	"errors"

	"roomserve/internal/domain"

	"go.uber.org/zap"
)

// Action is informational; the decision does not depend on it.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Denial codes carried by *Error.
const (
	CodeTenantMismatch    = "TENANT_MISMATCH"
	CodeNoTenant          = "NO_TENANT"
	CodeMissingPermission = "MISSING_PERMISSION"
	CodeNoPrincipal       = "NO_PRINCIPAL"
)

// Error is a denial with a machine-readable code. It unwraps to domain.ErrForbidden
// (or domain.ErrUnauthenticated for CodeNoPrincipal).
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AsError extracts the denial code, if err carries one.
func AsError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Authorize is the tenant rule: admins reach everything, everyone else only
// their own non-null tenant. Records with a null tenant are admin-only.
func Authorize(p *domain.Principal, target *string, _ Action) Decision {
	if p == nil {
		return Deny
	}
	if p.Role == domain.RoleAdmin {
		return Allow
	}
	if p.TenantID != nil && target != nil && *p.TenantID == *target {
		return Allow
	}
	return Deny
}

// AuditHook observes every decision made through a Guard.
type AuditHook func(p *domain.Principal, target *string, action Action, d Decision)

// Guard wraps Authorize with an optional audit hook and error conversion.
type Guard struct {
	audit AuditHook
}

func NewGuard(audit AuditHook) *Guard {
	return &Guard{audit: audit}
}

func (g *Guard) Authorize(p *domain.Principal, target *string, action Action) Decision {
	d := Authorize(p, target, action)
	if g != nil && g.audit != nil {
		g.audit(p, target, action, d)
	}
	return d
}

// Check returns nil on Allow and a *Error wrapping domain.ErrForbidden on Deny.
func (g *Guard) Check(p *domain.Principal, target *string, action Action) error {
	if p == nil {
		return &Error{Code: CodeNoPrincipal, Err: domain.ErrUnauthenticated}
	}
	if g.Authorize(p, target, action) == Allow {
		return nil
	}
	if p.TenantID == nil {
		return &Error{Code: CodeNoTenant, Err: domain.ErrForbidden}
	}
	return &Error{Code: CodeTenantMismatch, Err: domain.ErrForbidden}
}

// LogDenials is an AuditHook that records denied decisions.
func LogDenials(logger *zap.Logger) AuditHook {
	return func(p *domain.Principal, target *string, action Action, d Decision) {
		if d == Allow {
			return
		}
		fields := []zap.Field{zap.String("action", string(action))}
		if p != nil {
			fields = append(fields, zap.String("principal_id", p.ID), zap.String("role", string(p.Role)))
			if p.TenantID != nil {
				fields = append(fields, zap.String("principal_tenant", *p.TenantID))
			}
		}
		if target != nil {
			fields = append(fields, zap.String("target_tenant", *target))
		}
		logger.Info("tenant access denied", fields...)
	}
}
