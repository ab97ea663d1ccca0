package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every layer. Wrap with %w, test with errors.Is.
var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrStaleState           = errors.New("order status changed concurrently")
	ErrConflictingTenant    = errors.New("tenant id conflicts with caller scope")
	ErrSingleAdminViolation = errors.New("an admin user already exists")
	ErrProtectedIdentity    = errors.New("root identity cannot be deleted or demoted")
	ErrOrderLocked          = errors.New("order items can only change while pending")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidToken         = errors.New("invalid or expired registration token")
)

// InvalidTransitionError carries the rejected edge.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// Invalid wraps ErrInvalidArgument with a field-level message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
