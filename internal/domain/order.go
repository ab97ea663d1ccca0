package domain

import (
	"math"
	"time"
)

// OrderStatus is a state of the order lifecycle.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPreparing  OrderStatus = "preparing"
	StatusDelivering OrderStatus = "delivering"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions lists every legal edge. Terminal states have no entry.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusPreparing, StatusCancelled},
	StatusPreparing:  {StatusDelivering, StatusCancelled},
	StatusDelivering: {StatusCompleted, StatusCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusDelivering, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
// A same-status request is not an edge; callers treat it as a no-op.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCard       PaymentMethod = "card"
	PaymentRoomCharge PaymentMethod = "room_charge"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentRoomCharge
}

// OrderItem is a dish snapshot; Price is the unit price in minor units.
type OrderItem struct {
	DishID   string `json:"dish_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

type Order struct {
	ID            string        `json:"id"`
	TenantID      *string       `json:"tenant_id"`
	RoomID        string        `json:"room_id"`
	Items         []OrderItem   `json:"items"`
	TotalAmount   int64         `json:"total_amount"`
	Status        OrderStatus   `json:"status"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (o *Order) EntityID() string             { return o.ID }
func (o *Order) SetEntityID(id string)        { o.ID = id }
func (o *Order) OwnerTenantID() *string       { return o.TenantID }
func (o *Order) SetOwnerTenantID(tid *string) { o.TenantID = tid }

// Per-line limits for order items.
const (
	MaxItemQuantity = 10000
	MaxItemPrice    = int64(100_000_000_000)
)

// ItemsTotal sums price*quantity over the items. It fails with
// ErrInvalidArgument when the sum does not fit in int64.
func ItemsTotal(items []OrderItem) (int64, error) {
	var total int64
	for i, it := range items {
		if it.Quantity < 0 || it.Price < 0 {
			return 0, Invalid("items[%d] has a negative price or quantity", i)
		}
		q := int64(it.Quantity)
		if q != 0 && it.Price > math.MaxInt64/q {
			return 0, Invalid("items[%d] line total overflows", i)
		}
		line := it.Price * q
		if total > math.MaxInt64-line {
			return 0, Invalid("order total overflows")
		}
		total += line
	}
	return total, nil
}

// ValidateItems checks the line items of a new or edited order.
func ValidateItems(items []OrderItem) error {
	if len(items) == 0 {
		return Invalid("order must contain at least one item")
	}
	for i, it := range items {
		if it.DishID == "" {
			return Invalid("items[%d].dish_id is required", i)
		}
		if it.Quantity <= 0 || it.Quantity > MaxItemQuantity {
			return Invalid("items[%d].quantity must be between 1 and %d", i, MaxItemQuantity)
		}
		if it.Price < 0 || it.Price > MaxItemPrice {
			return Invalid("items[%d].price must be between 0 and %d", i, MaxItemPrice)
		}
	}
	_, err := ItemsTotal(items)
	return err
}

// Validate checks a new order. TotalAmount must equal the items total.
func (o *Order) Validate() error {
	if o.RoomID == "" {
		return Invalid("room_id is required")
	}
	if err := ValidateItems(o.Items); err != nil {
		return err
	}
	sum, err := ItemsTotal(o.Items)
	if err != nil {
		return err
	}
	if o.TotalAmount != sum {
		return Invalid("total_amount %d does not match items total %d", o.TotalAmount, sum)
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = PaymentRoomCharge
	}
	if !o.PaymentMethod.Valid() {
		return Invalid("unknown payment method %q", o.PaymentMethod)
	}
	return nil
}
