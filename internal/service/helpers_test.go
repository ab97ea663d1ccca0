package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"roomserve/internal/access"
	"roomserve/internal/domain"
	"roomserve/internal/repository"
)

const rootID = "00000000-0000-0000-0000-000000000001"

var perms = access.DefaultPermissionModel()

func principalOf(role domain.Role, tenant string) *domain.Principal {
	p := &domain.Principal{ID: string(role) + "-" + tenant, Role: role, Permissions: perms.Implied(role)}
	if tenant != "" {
		p.TenantID = domain.TenantPtr(tenant)
	}
	return p
}

func rootAdmin() *domain.Principal {
	return &domain.Principal{ID: rootID, Role: domain.RoleAdmin, Permissions: perms.Implied(domain.RoleAdmin)}
}

type fakeKitchen struct {
	mu      sync.Mutex
	tickets []KitchenTicket
	err     error
}

func (k *fakeKitchen) NotifyKitchen(_ context.Context, t KitchenTicket) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.tickets = append(k.tickets, t)
	return k.err
}

func (k *fakeKitchen) Tickets() []KitchenTicket {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]KitchenTicket(nil), k.tickets...)
}

type fakeEvents struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (e *fakeEvents) Publish(_ context.Context, evt OrderEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, evt)
	return nil
}

func (e *fakeEvents) Events() []OrderEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]OrderEvent(nil), e.events...)
}

func waitEffects(t *testing.T, l *OrderLifecycle) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, l.Wait(ctx))
}

func seedOrder(t *testing.T, s repository.OrderStore, id, tenant string, status domain.OrderStatus) *domain.Order {
	t.Helper()
	o := &domain.Order{
		ID:            id,
		RoomID:        "8201",
		Items:         []domain.OrderItem{{DishID: "d1", Name: "Pho", Quantity: 2, Price: 450}},
		TotalAmount:   900,
		Status:        status,
		PaymentMethod: domain.PaymentRoomCharge,
		CreatedAt:     time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC),
	}
	if tenant != "" {
		o.TenantID = domain.TenantPtr(tenant)
	}
	require.NoError(t, s.Insert(context.Background(), o))
	return o.Clone()
}

func int64Ptr(v int64) *int64 { return &v }
