package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"roomserve/internal/access"
	"roomserve/internal/domain"
	"roomserve/internal/repository"

	"go.uber.org/zap"
)

// GuestActor is the actor id recorded for guest-initiated transitions.
const GuestActor = "guest"

// OrderLifecycle owns every status write. Side effects (kitchen ticket, audit
// event) run in the background after the status is committed and never undo it.
type OrderLifecycle struct {
	orders  repository.OrderStore
	guard   *access.Guard
	kitchen KitchenNotifier
	events  EventSink
	logger  *zap.Logger

	now           func() time.Time
	effectTimeout time.Duration
	wg            sync.WaitGroup
}

func NewOrderLifecycle(orders repository.OrderStore, guard *access.Guard, kitchen KitchenNotifier, events EventSink, logger *zap.Logger) *OrderLifecycle {
	return &OrderLifecycle{
		orders:        orders,
		guard:         guard,
		kitchen:       kitchen,
		events:        events,
		logger:        logger,
		now:           time.Now,
		effectTimeout: 10 * time.Second,
	}
}

// Transition moves order to `to` on behalf of p.
//
// A request for the order's current non-terminal status succeeds without writing. The write
// itself is a compare-and-set on the status the caller observed; if another
// writer got there first the stored order is re-read, and the call succeeds only
// when that writer already produced the requested status.
func (l *OrderLifecycle) Transition(ctx context.Context, order *domain.Order, to domain.OrderStatus, p *domain.Principal) (*domain.Order, error) {
	if order == nil {
		return nil, domain.Invalid("order is required")
	}
	if err := l.guard.Check(p, order.TenantID, access.ActionWrite); err != nil {
		return nil, fmt.Errorf("order %s: %w", order.ID, err)
	}
	return l.apply(ctx, order, to, p.ID)
}

// CancelForGuest voids a still-pending order placed by a guest. The caller
// has already matched the order to the guest's room.
func (l *OrderLifecycle) CancelForGuest(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.Status != domain.StatusPending {
		return nil, &domain.InvalidTransitionError{From: order.Status, To: domain.StatusCancelled}
	}
	return l.apply(ctx, order, domain.StatusCancelled, GuestActor)
}

func (l *OrderLifecycle) apply(ctx context.Context, order *domain.Order, to domain.OrderStatus, actor string) (*domain.Order, error) {
	from := order.Status
	// terminal states reject every request, including a repeat of themselves
	if from.IsTerminal() {
		return nil, &domain.InvalidTransitionError{From: from, To: to}
	}
	if !to.Valid() {
		return nil, domain.Invalid("unknown order status %q", to)
	}
	if to == from {
		return order, nil
	}
	if !domain.CanTransition(from, to) {
		return nil, &domain.InvalidTransitionError{From: from, To: to}
	}

	at := l.now().UTC()
	ok, err := l.orders.CompareAndSetStatus(ctx, order.ID, order.TenantID, from, to, at)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", order.ID, err)
	}
	if !ok {
		cur, err := l.orders.FindByID(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", order.ID, err)
		}
		if cur.Status == to && domain.SameTenant(cur.TenantID, order.TenantID) {
			return cur, nil
		}
		l.logger.Info("order status changed concurrently",
			zap.String("order_id", order.ID),
			zap.String("expected", string(from)),
			zap.String("stored", string(cur.Status)),
			zap.String("requested", string(to)),
		)
		return nil, fmt.Errorf("order %s is %s, not %s: %w", order.ID, cur.Status, from, domain.ErrStaleState)
	}

	updated := order.Clone()
	updated.Status = to
	updated.UpdatedAt = at

	l.dispatch(updated, OrderEvent{
		OrderID:  updated.ID,
		TenantID: updated.TenantID,
		From:     from,
		To:       to,
		ActorID:  actor,
		At:       at,
	})
	return updated, nil
}

// dispatch runs the post-commit side effects off the request path.
func (l *OrderLifecycle) dispatch(order *domain.Order, evt OrderEvent) {
	sendTicket := evt.From == domain.StatusPending && evt.To == domain.StatusPreparing && l.kitchen != nil
	if !sendTicket && l.events == nil {
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), l.effectTimeout)
		defer cancel()

		if sendTicket {
			if err := l.kitchen.NotifyKitchen(ctx, NewKitchenTicket(order, evt.At)); err != nil {
				l.logger.Error("kitchen ticket not delivered",
					zap.String("order_id", order.ID),
					zap.Error(err),
				)
			}
		}
		if l.events != nil {
			if err := l.events.Publish(ctx, evt); err != nil {
				l.logger.Warn("order event not recorded",
					zap.String("order_id", order.ID),
					zap.String("to", string(evt.To)),
					zap.Error(err),
				)
			}
		}
	}()
}

// Wait blocks until in-flight side effects finish or ctx ends.
func (l *OrderLifecycle) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("order side effects still running"), ctx.Err())
	}
}
