package service

import (
	"context"
	"fmt"
	"time"

	"roomserve/internal/access"
	"roomserve/internal/domain"
	"roomserve/internal/repository"

	"go.uber.org/zap"
)

// UserService manages staff accounts. It enforces the single-admin rule and
// keeps the root identity in place.
type UserService struct {
	repo     *repository.ScopedRepository[*domain.User]
	users    repository.UserStore
	tokens   *RegistrationTokens
	perms    *access.PermissionModel
	rootID   string
	tokenTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewUserService(
	repo *repository.ScopedRepository[*domain.User],
	users repository.UserStore,
	tokens *RegistrationTokens,
	perms *access.PermissionModel,
	rootID string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		repo:     repo,
		users:    users,
		tokens:   tokens,
		perms:    perms,
		rootID:   rootID,
		tokenTTL: tokenTTL,
		logger:   logger,
		now:      time.Now,
	}
}

type CreateUserRequest struct {
	Account     string              `json:"account"`
	Email       string              `json:"email"`
	Role        domain.Role         `json:"role"`
	TenantID    *string             `json:"tenant_id"`
	Permissions []domain.Permission `json:"permissions"`
}

type UpdateUserRequest struct {
	TenantID    *string              `json:"tenant_id"`
	Role        *domain.Role         `json:"role"`
	Permissions *[]domain.Permission `json:"permissions"`
	IsLocked    *bool                `json:"is_locked"`
	IsOnline    *bool                `json:"is_online"`
}

// checkGrant stops non-admins from creating admins or handing out keys they
// lack, either directly or through the role.
func (s *UserService) checkGrant(p *domain.Principal, role domain.Role, overrides []domain.Permission) error {
	if p.IsAdmin() {
		return nil
	}
	if role == domain.RoleAdmin {
		return &access.Error{Code: access.CodeMissingPermission, Err: domain.ErrForbidden}
	}
	perms := overrides
	if role != "" {
		perms = append(s.perms.Implied(role).Sorted(), overrides...)
	}
	for _, perm := range perms {
		if !p.Can(perm) {
			return &access.Error{Code: access.CodeMissingPermission, Err: fmt.Errorf("cannot grant %s: %w", perm, domain.ErrForbidden)}
		}
	}
	return nil
}

func (s *UserService) ensureNoAdmin(ctx context.Context) error {
	n, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrSingleAdminViolation
	}
	return nil
}

func (s *UserService) CreateUser(ctx context.Context, p *domain.Principal, req CreateUserRequest) (*domain.User, error) {
	if err := access.Require(p, domain.PermUsersWrite); err != nil {
		return nil, err
	}
	if err := s.checkGrant(p, req.Role, req.Permissions); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &domain.User{
		Account:     req.Account,
		Email:       req.Email,
		Role:        req.Role,
		TenantID:    req.TenantID,
		Permissions: req.Permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if u.Role == domain.RoleAdmin {
		if err := s.ensureNoAdmin(ctx); err != nil {
			return nil, err
		}
	}
	created, err := s.repo.Create(ctx, p, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created",
		zap.String("user_id", created.ID),
		zap.String("role", string(created.Role)),
		zap.String("actor_id", p.ID),
	)
	return created, nil
}

func (s *UserService) GetUser(ctx context.Context, p *domain.Principal, id string) (*domain.User, error) {
	if err := access.Require(p, domain.PermUsersRead); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, p, id)
}

func (s *UserService) ListUsers(ctx context.Context, p *domain.Principal, filter repository.ListFilter) ([]*domain.User, error) {
	if err := access.Require(p, domain.PermUsersRead); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, p, filter)
}

func (s *UserService) UpdateUser(ctx context.Context, p *domain.Principal, id string, req UpdateUserRequest) (*domain.User, error) {
	if id == s.rootID {
		demote := req.Role != nil && *req.Role != domain.RoleAdmin
		lock := req.IsLocked != nil && *req.IsLocked
		if demote || lock || req.TenantID != nil {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrProtectedIdentity)
		}
	}
	if err := access.Require(p, domain.PermUsersWrite); err != nil {
		return nil, err
	}
	var grants []domain.Permission
	if req.Permissions != nil {
		grants = *req.Permissions
	}
	role := domain.Role("")
	if req.Role != nil {
		role = *req.Role
	}
	if err := s.checkGrant(p, role, grants); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, p, id, repository.Patch[*domain.User]{
		SetTenant: req.TenantID != nil,
		TenantID:  req.TenantID,
		Apply: func(u *domain.User) error {
			if req.Role != nil && *req.Role != u.Role {
				if *req.Role == domain.RoleAdmin {
					if err := s.ensureNoAdmin(ctx); err != nil {
						return err
					}
				}
				u.Role = *req.Role
			}
			if req.Permissions != nil {
				u.Permissions = *req.Permissions
			}
			if req.IsLocked != nil {
				u.IsLocked = *req.IsLocked
			}
			if req.IsOnline != nil {
				u.IsOnline = *req.IsOnline
			}
			u.UpdatedAt = s.now().UTC()
			return u.Validate()
		},
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser refuses the root identity before looking at the caller.
func (s *UserService) DeleteUser(ctx context.Context, p *domain.Principal, id string) error {
	if id == s.rootID {
		return fmt.Errorf("user %s: %w", id, domain.ErrProtectedIdentity)
	}
	if err := access.Require(p, domain.PermUsersWrite); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p, id); err != nil {
		return err
	}
	if err := s.tokens.RevokeForUser(ctx, id); err != nil {
		s.logger.Warn("registration tokens not revoked", zap.String("user_id", id), zap.Error(err))
	}
	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("actor_id", p.ID))
	return nil
}

// IssueRegistrationToken creates a sign-up token for a user the caller may write.
func (s *UserService) IssueRegistrationToken(ctx context.Context, p *domain.Principal, id string) (string, time.Time, error) {
	if err := access.Require(p, domain.PermUsersWrite); err != nil {
		return "", time.Time{}, err
	}
	u, err := s.repo.Get(ctx, p, id)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.tokens.Issue(ctx, u.ID, s.tokenTTL)
}

// CompleteRegistration redeems token and records the user's email.
func (s *UserService) CompleteRegistration(ctx context.Context, token, email string) (*domain.User, error) {
	userID, err := s.tokens.Consume(ctx, token, email)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	u.Email = email
	u.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, u, u.TenantID); err != nil {
		return nil, fmt.Errorf("record email for %s: %w", userID, err)
	}
	s.logger.Info("registration completed", zap.String("user_id", userID))
	return u, nil
}
