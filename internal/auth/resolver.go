// Package auth turns an inbound credential into a domain.Principal.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"roomserve/internal/access"
	"roomserve/internal/domain"

	"go.uber.org/zap"
)

// ErrInvalidCredential is returned by providers for bad, expired or revoked credentials.
var ErrInvalidCredential = errors.New("invalid credential")

// SessionCookie carries the credential for browser clients.
const SessionCookie = "session"

// Provider is the external authentication collaborator. It verifies the
// credential and returns the user id it belongs to.
type Provider interface {
	Verify(ctx context.Context, credential string) (userID string, err error)
}

// UserLookup reads the stored user record, including permission overrides.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Resolver shapes a Provider result into a Principal with materialized permissions.
type Resolver struct {
	provider Provider
	users    UserLookup
	perms    *access.PermissionModel
	logger   *zap.Logger
}

func NewResolver(provider Provider, users UserLookup, perms *access.PermissionModel, logger *zap.Logger) *Resolver {
	return &Resolver{provider: provider, users: users, perms: perms, logger: logger}
}

// Resolve returns domain.ErrUnauthenticated for a missing or rejected credential,
// an unknown user, or a locked account. Provider or store outages are returned
// as other errors.
func (r *Resolver) Resolve(ctx context.Context, credential string) (*domain.Principal, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, domain.ErrUnauthenticated
	}

	userID, err := r.provider.Verify(ctx, credential)
	if err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("verify credential: %w", err)
	}
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Info("credential for unknown user", zap.String("user_id", userID))
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	if user.IsLocked {
		r.logger.Info("credential for locked user", zap.String("user_id", userID))
		return nil, domain.ErrUnauthenticated
	}

	return &domain.Principal{
		ID:          user.ID,
		Role:        user.Role,
		TenantID:    user.TenantID,
		Permissions: r.perms.Materialize(user.Role, user.Permissions),
	}, nil
}

// CredentialFromRequest takes "Authorization: Bearer <token>" first and the
// session cookie second. Any other Authorization scheme yields "".
func CredentialFromRequest(req *http.Request) string {
	if h := req.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := req.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
