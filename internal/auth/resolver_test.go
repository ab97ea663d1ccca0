package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"roomserve/internal/access"
	"roomserve/internal/domain"
	"roomserve/internal/repository"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Verify(ctx context.Context, credential string) (string, error) {
	args := m.Called(ctx, credential)
	return args.String(0), args.Error(1)
}

func setupResolver(t *testing.T) (*Resolver, *MockProvider) {
	users := repository.NewMemoryUserStore()
	ctx := context.Background()
	require.NoError(t, users.Insert(ctx, &domain.User{
		ID: "u-staff", Account: "chef", Role: domain.RoleStaff, TenantID: domain.TenantPtr("T1"),
		Permissions: []domain.Permission{domain.PermFinanceRead},
	}))
	require.NoError(t, users.Insert(ctx, &domain.User{
		ID: "u-locked", Account: "old", Role: domain.RoleManager, TenantID: domain.TenantPtr("T1"), IsLocked: true,
	}))

	provider := new(MockProvider)
	return NewResolver(provider, users, access.DefaultPermissionModel(), zap.NewNop()), provider
}

func TestResolve_MaterializesOverrides(t *testing.T) {
	r, provider := setupResolver(t)
	provider.On("Verify", mock.Anything, "tok").Return("u-staff", nil).Once()

	p, err := r.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u-staff", p.ID)
	assert.Equal(t, domain.RoleStaff, p.Role)
	assert.Equal(t, "T1", *p.TenantID)
	assert.True(t, p.Can(domain.PermOrdersTransition), "role-implied")
	assert.True(t, p.Can(domain.PermFinanceRead), "override")
	assert.False(t, p.Can(domain.PermMenuWrite))

	provider.AssertExpectations(t)
}

func TestResolve_Unauthenticated(t *testing.T) {
	r, provider := setupResolver(t)
	provider.On("Verify", mock.Anything, "bad").Return("", ErrInvalidCredential)
	provider.On("Verify", mock.Anything, "ghost").Return("u-ghost", nil)
	provider.On("Verify", mock.Anything, "locked").Return("u-locked", nil)

	for _, cred := range []string{"", "   ", "bad", "ghost", "locked"} {
		p, err := r.Resolve(context.Background(), cred)
		assert.Nil(t, p, cred)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated, cred)
	}
	provider.AssertNotCalled(t, "Verify", mock.Anything, "")
}

func TestResolve_ProviderOutageIsNotUnauthenticated(t *testing.T) {
	r, provider := setupResolver(t)
	provider.On("Verify", mock.Anything, "tok").Return("", errors.New("connection refused"))

	p, err := r.Resolve(context.Background(), "tok")
	assert.Nil(t, p)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestCredentialFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", CredentialFromRequest(req))

	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-tok"})
	assert.Equal(t, "cookie-tok", CredentialFromRequest(req))

	req.Header.Set("Authorization", "Bearer header-tok")
	assert.Equal(t, "header-tok", CredentialFromRequest(req))

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Equal(t, "", CredentialFromRequest(req))
}
