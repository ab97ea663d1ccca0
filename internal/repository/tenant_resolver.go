package repository

import (
	"context"
	"errors"
	"fmt"

	"roomserve/internal/domain"
)

// TenantResolver answers "which tenant owns this room" for the guest entry point,
// which has no principal to take a tenant from.
type TenantResolver interface {
	TenantIDByRoomID(ctx context.Context, roomID string) (*string, error)
}

// RoomTenantResolver resolves through the rooms store. Direct-operated rooms
// resolve to a nil tenant.
type RoomTenantResolver struct {
	rooms Store[*domain.Room]
}

func NewRoomTenantResolver(rooms Store[*domain.Room]) *RoomTenantResolver {
	return &RoomTenantResolver{rooms: rooms}
}

func (r *RoomTenantResolver) TenantIDByRoomID(ctx context.Context, roomID string) (*string, error) {
	if roomID == "" {
		return nil, domain.Invalid("room id is required")
	}
	room, err := r.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("room %s: %w", roomID, domain.ErrNotFound)
		}
		return nil, err
	}
	return room.TenantID, nil
}
