package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roomserve/internal/access"
	"roomserve/internal/domain"
	"roomserve/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService is the staff and guest entry point for orders.
type OrderService struct {
	repo      *repository.ScopedRepository[*domain.Order]
	orders    repository.OrderStore
	rooms     repository.TenantResolver
	tenants   repository.TenantsRepo
	lifecycle *OrderLifecycle
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderService(
	repo *repository.ScopedRepository[*domain.Order],
	orders repository.OrderStore,
	rooms repository.TenantResolver,
	tenants repository.TenantsRepo,
	lifecycle *OrderLifecycle,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		repo:      repo,
		orders:    orders,
		rooms:     rooms,
		tenants:   tenants,
		lifecycle: lifecycle,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateOrderRequest is the staff payload. TenantID is honored for admins only.
type CreateOrderRequest struct {
	TenantID      *string              `json:"tenant_id"`
	RoomID        string               `json:"room_id"`
	Items         []domain.OrderItem   `json:"items"`
	TotalAmount   *int64               `json:"total_amount"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

// GuestOrderRequest is the QR-code payload. Any tenant id the client sends is ignored.
type GuestOrderRequest struct {
	Items         []domain.OrderItem   `json:"items"`
	TotalAmount   *int64               `json:"total_amount"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

// UpdateOrderRequest changes an order's non-status fields. Items can change only while pending.
// A null or absent tenant_id leaves the owner unchanged.
type UpdateOrderRequest struct {
	TenantID      *string               `json:"tenant_id"`
	Items         *[]domain.OrderItem   `json:"items"`
	PaymentMethod *domain.PaymentMethod `json:"payment_method"`
}

// newPending builds a pending order. An absent total is taken from the items;
// a present one, zero included, must match them.
func (s *OrderService) newPending(roomID string, tenantID *string, items []domain.OrderItem, total *int64, pm domain.PaymentMethod) (*domain.Order, error) {
	if err := domain.ValidateItems(items); err != nil {
		return nil, err
	}
	amount, err := domain.ItemsTotal(items)
	if err != nil {
		return nil, err
	}
	if total != nil {
		amount = *total
	}
	now := s.now().UTC()
	o := &domain.Order{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		RoomID:        roomID,
		Items:         items,
		TotalAmount:   amount,
		Status:        domain.StatusPending,
		PaymentMethod: pm,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, p *domain.Principal, req CreateOrderRequest) (*domain.Order, error) {
	if err := access.Require(p, domain.PermOrdersWrite); err != nil {
		return nil, err
	}
	o, err := s.newPending(req.RoomID, req.TenantID, req.Items, req.TotalAmount, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, p, o)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order created",
		zap.String("order_id", created.ID),
		zap.String("room_id", created.RoomID),
		zap.String("actor_id", p.ID),
		zap.Int64("total_amount", created.TotalAmount),
	)
	return created, nil
}

// roomTenant resolves the tenant of roomID and refuses suspended tenants.
func (s *OrderService) roomTenant(ctx context.Context, roomID string) (*string, error) {
	tenantID, err := s.rooms.TenantIDByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if tenantID == nil {
		return nil, nil
	}
	t, err := s.tenants.GetTenant(ctx, *tenantID)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TenantActive {
		return nil, fmt.Errorf("tenant %s is %s: %w", t.ID, t.Status, domain.ErrForbidden)
	}
	return tenantID, nil
}

// PlaceGuestOrder needs no principal; the room decides the tenant.
func (s *OrderService) PlaceGuestOrder(ctx context.Context, roomID string, req GuestOrderRequest) (*domain.Order, error) {
	tenantID, err := s.roomTenant(ctx, roomID)
	if err != nil {
		return nil, err
	}
	o, err := s.newPending(roomID, tenantID, req.Items, req.TotalAmount, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Insert(ctx, o); err != nil {
		return nil, fmt.Errorf("create guest order: %w", err)
	}
	s.logger.Info("guest order placed",
		zap.String("order_id", o.ID),
		zap.String("room_id", roomID),
		zap.Int64("total_amount", o.TotalAmount),
	)
	return o, nil
}

// GuestOrder returns an order only to the room it was placed from.
func (s *OrderService) GuestOrder(ctx context.Context, roomID, orderID string) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}
	if o.RoomID != roomID {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	return o, nil
}

// GuestCancel voids a pending order from the room that placed it.
func (s *OrderService) GuestCancel(ctx context.Context, roomID, orderID string) (*domain.Order, error) {
	o, err := s.GuestOrder(ctx, roomID, orderID)
	if err != nil {
		return nil, err
	}
	return s.lifecycle.CancelForGuest(ctx, o)
}

func (s *OrderService) GetOrder(ctx context.Context, p *domain.Principal, id string) (*domain.Order, error) {
	if err := access.Require(p, domain.PermOrdersRead); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, p, id)
}

func (s *OrderService) ListOrders(ctx context.Context, p *domain.Principal, filter repository.ListFilter) ([]*domain.Order, error) {
	if err := access.Require(p, domain.PermOrdersRead); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, p, filter)
}

func (s *OrderService) UpdateOrder(ctx context.Context, p *domain.Principal, id string, req UpdateOrderRequest) (*domain.Order, error) {
	if err := access.Require(p, domain.PermOrdersWrite); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, p, id, repository.Patch[*domain.Order]{
		SetTenant: req.TenantID != nil,
		TenantID:  req.TenantID,
		Apply: func(o *domain.Order) error {
			if req.Items != nil {
				if o.Status != domain.StatusPending {
					return fmt.Errorf("order is %s: %w", o.Status, domain.ErrOrderLocked)
				}
				if err := domain.ValidateItems(*req.Items); err != nil {
					return err
				}
				total, err := domain.ItemsTotal(*req.Items)
				if err != nil {
					return err
				}
				o.Items = *req.Items
				o.TotalAmount = total
			}
			if req.PaymentMethod != nil {
				if !req.PaymentMethod.Valid() {
					return domain.Invalid("unknown payment method %q", *req.PaymentMethod)
				}
				o.PaymentMethod = *req.PaymentMethod
			}
			o.UpdatedAt = s.now().UTC()
			return nil
		},
	})
}

func (s *OrderService) DeleteOrder(ctx context.Context, p *domain.Principal, id string) error {
	if err := access.Require(p, domain.PermOrdersWrite); err != nil {
		return err
	}
	return s.repo.Delete(ctx, p, id)
}

// Transition loads id in the caller's scope and hands it to the lifecycle.
func (s *OrderService) Transition(ctx context.Context, p *domain.Principal, id string, to domain.OrderStatus) (*domain.Order, error) {
	if err := access.Require(p, domain.PermOrdersTransition); err != nil {
		return nil, err
	}
	o, err := s.repo.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.lifecycle.Transition(ctx, o, to, p)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrStaleState) {
			s.logger.Info("order transition rejected",
				zap.String("order_id", id),
				zap.String("actor_id", p.ID),
				zap.String("requested", string(to)),
				zap.Error(err),
			)
		}
		return nil, err
	}
	return updated, nil
}
