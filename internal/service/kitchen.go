package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"roomserve/internal/domain"

	"go.uber.org/zap"
)

// KitchenTicket is handed to the print service when an order enters preparation.
type KitchenTicket struct {
	OrderID  string             `json:"order_id"`
	TenantID string             `json:"tenant_id,omitempty"`
	RoomID   string             `json:"room_id"`
	Items    []domain.OrderItem `json:"items"`
	PlacedAt time.Time          `json:"placed_at"`
	IssuedAt time.Time          `json:"issued_at"`
}

func NewKitchenTicket(o *domain.Order, at time.Time) KitchenTicket {
	t := KitchenTicket{
		OrderID:  o.ID,
		RoomID:   o.RoomID,
		Items:    append([]domain.OrderItem(nil), o.Items...),
		PlacedAt: o.CreatedAt,
		IssuedAt: at,
	}
	if o.TenantID != nil {
		t.TenantID = *o.TenantID
	}
	return t
}

type KitchenNotifier interface {
	NotifyKitchen(ctx context.Context, ticket KitchenTicket) error
}

// Publisher is the subset of the MQTT client the notifier needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte, timeout time.Duration) error
}

// MQTTKitchenNotifier publishes tickets to <prefix>/<tenant>, "direct" for
// direct-operated orders.
type MQTTKitchenNotifier struct {
	pub     Publisher
	prefix  string
	qos     byte
	timeout time.Duration
	logger  *zap.Logger
}

func NewMQTTKitchenNotifier(pub Publisher, prefix string, qos byte, logger *zap.Logger) *MQTTKitchenNotifier {
	return &MQTTKitchenNotifier{pub: pub, prefix: prefix, qos: qos, timeout: 5 * time.Second, logger: logger}
}

func (n *MQTTKitchenNotifier) Topic(ticket KitchenTicket) string {
	tenant := ticket.TenantID
	if tenant == "" {
		tenant = "direct"
	}
	return fmt.Sprintf("%s/%s", n.prefix, tenant)
}

func (n *MQTTKitchenNotifier) NotifyKitchen(ctx context.Context, ticket KitchenTicket) error {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("encode kitchen ticket: %w", err)
	}
	timeout := n.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	topic := n.Topic(ticket)
	if err := n.pub.Publish(topic, n.qos, false, payload, timeout); err != nil {
		return err
	}
	n.logger.Debug("kitchen ticket published", zap.String("topic", topic), zap.String("order_id", ticket.OrderID))
	return nil
}

// LogKitchenNotifier only logs tickets. Used when no broker is configured.
type LogKitchenNotifier struct {
	logger *zap.Logger
}

func NewLogKitchenNotifier(logger *zap.Logger) *LogKitchenNotifier {
	return &LogKitchenNotifier{logger: logger}
}

func (n *LogKitchenNotifier) NotifyKitchen(_ context.Context, ticket KitchenTicket) error {
	n.logger.Info("kitchen ticket (no broker configured)",
		zap.String("order_id", ticket.OrderID),
		zap.String("tenant_id", ticket.TenantID),
		zap.String("room_id", ticket.RoomID),
		zap.Int("items", len(ticket.Items)),
	)
	return nil
}
