package service

import (
	"context"
	"time"

	commonredis "roomserve/common/redis"
	"roomserve/internal/domain"
)

// OrderEvent records one applied status transition.
type OrderEvent struct {
	OrderID  string             `json:"order_id"`
	TenantID *string            `json:"tenant_id"`
	From     domain.OrderStatus `json:"from"`
	To       domain.OrderStatus `json:"to"`
	ActorID  string             `json:"actor_id"`
	At       time.Time          `json:"at"`
}

type EventSink interface {
	Publish(ctx context.Context, evt OrderEvent) error
}

// StreamEventSink appends events to a Redis stream capped at maxLen entries.
type StreamEventSink struct {
	client *commonredis.Client
	stream string
	maxLen int64
}

func NewStreamEventSink(client *commonredis.Client, stream string, maxLen int64) *StreamEventSink {
	return &StreamEventSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *StreamEventSink) Publish(ctx context.Context, evt OrderEvent) error {
	_, err := commonredis.PublishJSONToStream(ctx, s.client, s.stream, s.maxLen, evt)
	return err
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, evt OrderEvent) error

func (f EventSinkFunc) Publish(ctx context.Context, evt OrderEvent) error { return f(ctx, evt) }
