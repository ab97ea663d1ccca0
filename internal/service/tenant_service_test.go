package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"roomserve/internal/domain"
	"roomserve/internal/repository"
)

func TestTenantService_AdminOnly(t *testing.T) {
	svc := NewTenantService(repository.NewMemoryTenantsRepo(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreateTenant(ctx, principalOf(domain.RolePartner, "T1"), CreateTenantRequest{Name: "Other"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.ListTenants(ctx, principalOf(domain.RolePartner, "T1"), "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.ListTenants(ctx, nil, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestTenantService_Lifecycle(t *testing.T) {
	svc := NewTenantService(repository.NewMemoryTenantsRepo(), zap.NewNop())
	ctx := context.Background()
	admin := rootAdmin()

	t1, err := svc.CreateTenant(ctx, admin, CreateTenantRequest{ID: "T1", Name: " Harbor Hotel ", OwnerName: "Mai"})
	require.NoError(t, err)
	assert.Equal(t, "Harbor Hotel", t1.Name)
	assert.Equal(t, domain.TenantActive, t1.Status)

	t2, err := svc.CreateTenant(ctx, admin, CreateTenantRequest{Name: "Noodle Bar"})
	require.NoError(t, err)
	assert.NotEmpty(t, t2.ID)

	_, err = svc.CreateTenant(ctx, admin, CreateTenantRequest{ID: "T1", Name: "Dup"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.CreateTenant(ctx, admin, CreateTenantRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	suspended, err := svc.SetStatus(ctx, admin, "T1", domain.TenantSuspended)
	require.NoError(t, err)
	assert.Equal(t, domain.TenantSuspended, suspended.Status)

	_, err = svc.SetStatus(ctx, admin, "T1", "closed")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.SetStatus(ctx, admin, "missing", domain.TenantActive)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	active, err := svc.ListTenants(ctx, admin, domain.TenantActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, t2.ID, active[0].ID)

	all, err := svc.ListTenants(ctx, admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
