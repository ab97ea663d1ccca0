package service

import (
	"context"
	"sort"

	"roomserve/internal/domain"
	"roomserve/internal/repository"
)

// Menu is what a guest sees after scanning a room code.
type Menu struct {
	RoomID     string             `json:"room_id"`
	Categories []*domain.Category `json:"categories"`
	Dishes     []*domain.Dish     `json:"dishes"`
}

// MenuService serves the guest menu. Like PlaceGuestOrder it has no principal,
// so it reads the stores directly with the room's tenant as the filter.
type MenuService struct {
	rooms      repository.TenantResolver
	tenants    repository.TenantsRepo
	dishes     repository.Store[*domain.Dish]
	categories repository.Store[*domain.Category]
}

func NewMenuService(rooms repository.TenantResolver, tenants repository.TenantsRepo, dishes repository.Store[*domain.Dish], categories repository.Store[*domain.Category]) *MenuService {
	return &MenuService{rooms: rooms, tenants: tenants, dishes: dishes, categories: categories}
}

func (s *MenuService) GuestMenu(ctx context.Context, roomID string) (*Menu, error) {
	tenantID, err := s.rooms.TenantIDByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if tenantID != nil {
		t, err := s.tenants.GetTenant(ctx, *tenantID)
		if err != nil {
			return nil, err
		}
		if t.Status != domain.TenantActive {
			return nil, domain.ErrForbidden
		}
	}
	scope := repository.ListFilter{}.WithTenant(tenantID)

	cats, err := s.categories.Find(ctx, scope)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].SortOrder < cats[j].SortOrder })

	dishFilter := scope
	dishFilter.Equals = map[string]string{"available": "true"}
	dishes, err := s.dishes.Find(ctx, dishFilter)
	if err != nil {
		return nil, err
	}
	return &Menu{RoomID: roomID, Categories: cats, Dishes: dishes}, nil
}
