package service

import (
	"context"
	"fmt"
	"strings"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/repository"

	"go.uber.org/zap"
)

// RoomService manages the room inventory.
type RoomService interface {
	List(ctx context.Context, status domain.RoomStatus) ([]*domain.Room, error)
	Get(ctx context.Context, id string) (*domain.Room, error)
	Create(ctx context.Context, req CreateRoomRequest) (*domain.Room, error)
	Update(ctx context.Context, req UpdateRoomRequest) (*domain.Room, error)
	Delete(ctx context.Context, id string) error
}

type CreateRoomRequest struct {
	RoomNumber string
	Capacity   int
	Type       domain.RoomType
	Status     domain.RoomStatus // empty means Available
}

type UpdateRoomRequest struct {
	ID      string
	Patch   domain.RoomPatch
	Version *int
}

type roomService struct {
	rooms  repository.RoomsRepository
	logger *zap.Logger
}

func NewRoomService(rooms repository.RoomsRepository, logger *zap.Logger) RoomService {
	return &roomService{rooms: rooms, logger: logger}
}

func (s *roomService) List(ctx context.Context, status domain.RoomStatus) ([]*domain.Room, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown room status %q", domain.ErrInvalid, status)
	}
	return s.rooms.ListRooms(ctx, status)
}

func (s *roomService) Get(ctx context.Context, id string) (*domain.Room, error) {
	return s.rooms.GetRoom(ctx, id)
}

func (s *roomService) Create(ctx context.Context, req CreateRoomRequest) (*domain.Room, error) {
	r := &domain.Room{
		RoomNumber: strings.TrimSpace(req.RoomNumber),
		Capacity:   req.Capacity,
		Type:       req.Type,
		Status:     req.Status,
	}
	if r.Status == "" {
		r.Status = domain.RoomAvailable
	}
	if r.Status == domain.RoomFull {
		return nil, fmt.Errorf("%w: a new room cannot be Full", domain.ErrInvalid)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.rooms.CreateRoom(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info("Room created", zap.String("room_number", r.RoomNumber), zap.Int("capacity", r.Capacity))
	return r, nil
}

func (s *roomService) Update(ctx context.Context, req UpdateRoomRequest) (*domain.Room, error) {
	cur, err := s.rooms.GetRoom(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != cur.Version {
		return nil, fmt.Errorf("room %s: %w", cur.RoomNumber, domain.ErrVersionMismatch)
	}
	if req.Patch.Type != nil && !req.Patch.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown room type %q", domain.ErrInvalid, *req.Patch.Type)
	}
	if req.Patch.Status != nil && !req.Patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown room status %q", domain.ErrInvalid, *req.Patch.Status)
	}
	if req.Patch.Capacity != nil && *req.Patch.Capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", domain.ErrInvalid)
	}

	next := *cur
	if err := next.Apply(req.Patch); err != nil {
		return nil, err
	}
	if err := s.rooms.UpdateRoom(ctx, &next); err != nil {
		return nil, err
	}
	s.logger.Info("Room updated",
		zap.String("room_number", next.RoomNumber),
		zap.String("status", string(next.Status)),
		zap.Int("capacity", next.Capacity),
	)
	return &next, nil
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	if err := s.rooms.DeleteRoom(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Room deleted", zap.String("room_id", id))
	return nil
}
