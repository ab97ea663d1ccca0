package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"roomserve/internal/access"
	"roomserve/internal/domain"
	"roomserve/internal/repository"
)

type lifecycleFixture struct {
	store   *repository.MemoryOrderStore
	kitchen *fakeKitchen
	events  *fakeEvents
	l       *OrderLifecycle
}

func newLifecycle(t *testing.T, logger *zap.Logger) *lifecycleFixture {
	t.Helper()
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &lifecycleFixture{
		store:   repository.NewMemoryOrderStore(),
		kitchen: &fakeKitchen{},
		events:  &fakeEvents{},
	}
	f.l = NewOrderLifecycle(f.store, access.NewGuard(nil), f.kitchen, f.events, logger)
	return f
}

func TestTransition_PendingToPreparingNotifiesKitchen(t *testing.T) {
	f := newLifecycle(t, nil)
	ctx := context.Background()
	o := seedOrder(t, f.store, "o1", "T1", domain.StatusPending)

	got, err := f.l.Transition(ctx, o, domain.StatusPreparing, principalOf(domain.RoleStaff, "T1"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, got.Status)
	assert.Equal(t, domain.StatusPending, o.Status, "caller's copy is not mutated")

	stored, err := f.store.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, stored.Status)

	waitEffects(t, f.l)
	tickets := f.kitchen.Tickets()
	require.Len(t, tickets, 1)
	assert.Equal(t, "o1", tickets[0].OrderID)
	assert.Equal(t, "T1", tickets[0].TenantID)

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.StatusPending, events[0].From)
	assert.Equal(t, domain.StatusPreparing, events[0].To)
	assert.Equal(t, "staff-T1", events[0].ActorID)
}

func TestTransition_OtherEdgesSkipKitchen(t *testing.T) {
	f := newLifecycle(t, nil)
	o := seedOrder(t, f.store, "o1", "T1", domain.StatusPreparing)

	_, err := f.l.Transition(context.Background(), o, domain.StatusDelivering, principalOf(domain.RoleStaff, "T1"))
	require.NoError(t, err)

	waitEffects(t, f.l)
	assert.Empty(t, f.kitchen.Tickets())
	assert.Len(t, f.events.Events(), 1)
}

func TestTransition_SameStatusIsNoop(t *testing.T) {
	f := newLifecycle(t, nil)
	o := seedOrder(t, f.store, "o1", "T1", domain.StatusPreparing)

	got, err := f.l.Transition(context.Background(), o, domain.StatusPreparing, principalOf(domain.RoleStaff, "T1"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, got.Status)

	waitEffects(t, f.l)
	assert.Empty(t, f.kitchen.Tickets())
	assert.Empty(t, f.events.Events())
}

func TestTransition_TerminalRejectsEverything(t *testing.T) {
	for _, terminal := range []domain.OrderStatus{domain.StatusCompleted, domain.StatusCancelled} {
		t.Run(string(terminal), func(t *testing.T) {
			f := newLifecycle(t, nil)
			o := seedOrder(t, f.store, "o1", "T1", terminal)

			for _, to := range []domain.OrderStatus{domain.StatusPending, domain.StatusPreparing, terminal, "eaten"} {
				_, err := f.l.Transition(context.Background(), o, to, principalOf(domain.RoleStaff, "T1"))
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
				var ite *domain.InvalidTransitionError
				require.True(t, errors.As(err, &ite))
				assert.Equal(t, terminal, ite.From)
				assert.Equal(t, to, ite.To)
			}
		})
	}
}

func TestTransition_SkippingStatesIsInvalid(t *testing.T) {
	f := newLifecycle(t, nil)
	o := seedOrder(t, f.store, "o1", "T1", domain.StatusPending)

	_, err := f.l.Transition(context.Background(), o, domain.StatusCompleted, principalOf(domain.RoleStaff, "T1"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, err := f.store.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestTransition_UnknownStatus(t *testing.T) {
	f := newLifecycle(t, nil)
	o := seedOrder(t, f.store, "o1", "T1", domain.StatusPending)

	_, err := f.l.Transition(context.Background(), o, domain.OrderStatus("eaten"), principalOf(domain.RoleStaff, "T1"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTransition_ForeignTenantForbiddenWithoutWrite(t *testing.T) {
	f := newLifecycle(t, nil)
	o := seedOrder(t, f.store, "o1", "T1", domain.StatusPending)

	_, err := f.l.Transition(context.Background(), o, domain.StatusPreparing, principalOf(domain.RoleStaff, "T2"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := f.store.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	waitEffects(t, f.l)
	assert.Empty(t, f.kitchen.Tickets())
}

func TestTransition_AdminReachesDirectOperatedOrder(t *testing.T) {
	f := newLifecycle(t, nil)
	o := seedOrder(t, f.store, "o1", "", domain.StatusPending)

	_, err := f.l.Transition(context.Background(), o, domain.StatusPreparing, principalOf(domain.RoleManager, "T1"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := f.l.Transition(context.Background(), o, domain.StatusPreparing, rootAdmin())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, got.Status)
}

func TestTransition_StaleObservedStatus(t *testing.T) {
	f := newLifecycle(t, nil)
	ctx := context.Background()
	o := seedOrder(t, f.store, "o1", "T1", domain.StatusPending)
	staff := principalOf(domain.RoleStaff, "T1")

	_, err := f.l.Transition(ctx, o, domain.StatusCancelled, staff)
	require.NoError(t, err)

	// o still says pending
	_, err = f.l.Transition(ctx, o, domain.StatusPreparing, staff)
	assert.ErrorIs(t, err, domain.ErrStaleState)
}

func TestTransition_LostRaceToSameTargetSucceedsQuietly(t *testing.T) {
	f := newLifecycle(t, nil)
	ctx := context.Background()
	o := seedOrder(t, f.store, "o1", "T1", domain.StatusPending)
	staff := principalOf(domain.RoleStaff, "T1")

	_, err := f.l.Transition(ctx, o, domain.StatusPreparing, staff)
	require.NoError(t, err)
	got, err := f.l.Transition(ctx, o, domain.StatusPreparing, staff)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, got.Status)

	waitEffects(t, f.l)
	assert.Len(t, f.kitchen.Tickets(), 1)
	assert.Len(t, f.events.Events(), 1)
}

func TestTransition_ConcurrentConflictingTargetsOneWinner(t *testing.T) {
	f := newLifecycle(t, nil)
	o := seedOrder(t, f.store, "o1", "T1", domain.StatusPending)
	staff := principalOf(domain.RoleStaff, "T1")

	targets := []domain.OrderStatus{domain.StatusPreparing, domain.StatusCancelled}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, to := range targets {
		wg.Add(1)
		go func(i int, to domain.OrderStatus) {
			defer wg.Done()
			_, errs[i] = f.l.Transition(context.Background(), o.Clone(), to, staff)
		}(i, to)
	}
	wg.Wait()

	var ok, stale int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrStaleState):
			stale++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, stale)

	stored, err := f.store.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	waitEffects(t, f.l)
	if stored.Status == domain.StatusPreparing {
		assert.Len(t, f.kitchen.Tickets(), 1)
	} else {
		assert.Equal(t, domain.StatusCancelled, stored.Status)
		assert.Empty(t, f.kitchen.Tickets())
	}
}

func TestTransition_ConcurrentSameTargetNotifiesOnce(t *testing.T) {
	f := newLifecycle(t, nil)
	o := seedOrder(t, f.store, "o1", "T1", domain.StatusPending)
	staff := principalOf(domain.RoleStaff, "T1")

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.l.Transition(context.Background(), o.Clone(), domain.StatusPreparing, staff)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	waitEffects(t, f.l)
	assert.Len(t, f.kitchen.Tickets(), 1)
	assert.Len(t, f.events.Events(), 1)
}

func TestTransition_KitchenFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	f := newLifecycle(t, zap.New(core))
	f.kitchen.err = errors.New("printer offline")
	o := seedOrder(t, f.store, "o1", "T1", domain.StatusPending)

	got, err := f.l.Transition(context.Background(), o, domain.StatusPreparing, principalOf(domain.RoleStaff, "T1"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, got.Status)

	waitEffects(t, f.l)
	entries := logs.FilterMessage("kitchen ticket not delivered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "o1", entries[0].ContextMap()["order_id"])

	stored, err := f.store.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, stored.Status, "delivery failure never rolls back")
}

func TestCancelForGuest_OnlyFromPending(t *testing.T) {
	f := newLifecycle(t, nil)
	ctx := context.Background()

	pending := seedOrder(t, f.store, "o1", "T1", domain.StatusPending)
	got, err := f.l.CancelForGuest(ctx, pending)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)

	preparing := seedOrder(t, f.store, "o2", "T1", domain.StatusPreparing)
	_, err = f.l.CancelForGuest(ctx, preparing)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	waitEffects(t, f.l)
	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, GuestActor, events[0].ActorID)
}

func TestWait_ReturnsWhenContextEnds(t *testing.T) {
	f := newLifecycle(t, nil)
	block := make(chan struct{})
	f.l.events = EventSinkFunc(func(ctx context.Context, _ OrderEvent) error {
		<-block
		return nil
	})
	o := seedOrder(t, f.store, "o1", "T1", domain.StatusPreparing)
	_, err := f.l.Transition(context.Background(), o, domain.StatusDelivering, principalOf(domain.RoleStaff, "T1"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.l.Wait(ctx), context.Canceled)

	close(block)
	waitEffects(t, f.l)
}
