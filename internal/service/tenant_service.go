package service

import (
	"context"
	"strings"
	"time"

	"roomserve/internal/access"
	"roomserve/internal/domain"
	"roomserve/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantService is platform-level: tenants are not themselves tenant scoped.
type TenantService struct {
	tenants repository.TenantsRepo
	logger  *zap.Logger
	now     func() time.Time
}

func NewTenantService(tenants repository.TenantsRepo, logger *zap.Logger) *TenantService {
	return &TenantService{tenants: tenants, logger: logger, now: time.Now}
}

type CreateTenantRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerName string `json:"owner_name"`
}

func (s *TenantService) ListTenants(ctx context.Context, p *domain.Principal, status domain.TenantStatus) ([]*domain.Tenant, error) {
	if err := access.Require(p, domain.PermTenantsManage); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, domain.Invalid("unknown tenant status %q", status)
	}
	return s.tenants.ListTenants(ctx, status)
}

func (s *TenantService) CreateTenant(ctx context.Context, p *domain.Principal, req CreateTenantRequest) (*domain.Tenant, error) {
	if err := access.Require(p, domain.PermTenantsManage); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.Invalid("tenant name is required")
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	now := s.now().UTC()
	t := &domain.Tenant{
		ID:        id,
		Name:      name,
		OwnerName: req.OwnerName,
		Status:    domain.TenantActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tenants.CreateTenant(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("tenant created", zap.String("tenant_id", id), zap.String("actor_id", p.ID))
	return t, nil
}

// SetStatus suspends or reactivates a tenant. Guests of a suspended tenant
// cannot place orders.
func (s *TenantService) SetStatus(ctx context.Context, p *domain.Principal, id string, status domain.TenantStatus) (*domain.Tenant, error) {
	if err := access.Require(p, domain.PermTenantsManage); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.Invalid("unknown tenant status %q", status)
	}
	t, err := s.tenants.SetTenantStatus(ctx, id, status, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info("tenant status changed",
		zap.String("tenant_id", id),
		zap.String("status", string(status)),
		zap.String("actor_id", p.ID),
	)
	return t, nil
}
