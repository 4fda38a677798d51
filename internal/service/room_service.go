package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/chat-relay/relay-service/internal/domain"
)

// RoomRepo is the slice of the room repository this service needs.
type RoomRepo interface {
	CreateWithMembers(ctx context.Context, room *domain.Room, userIDs []int64) error
	Get(ctx context.Context, id string) (*domain.Room, error)
	FindRoom(ctx context.Context, id string) (*domain.Room, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error)
	Delete(ctx context.Context, id string) error
}

// MembershipRepo manages the per-room authorized user list.
type MembershipRepo interface {
	Grant(ctx context.Context, roomID string, userID int64) error
	Revoke(ctx context.Context, roomID string, userID int64) error
}

// RoomService owns room lifecycle and the authorized member list. It is the
// relay core's RoomStore.
type RoomService struct {
	roomRepo   RoomRepo
	memberRepo MembershipRepo
}

func NewRoomService(roomRepo RoomRepo, memberRepo MembershipRepo) *RoomService {
	return &RoomService{roomRepo: roomRepo, memberRepo: memberRepo}
}

// FindRoom returns the room with its authorized user list, or
// domain.ErrRoomNotFound.
func (s *RoomService) FindRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	return s.roomRepo.FindRoom(ctx, roomID)
}

// CreateRoom creates a room and grants the given users atomically: either
// the room lands with its full member list or nothing is persisted.
func (s *RoomService) CreateRoom(ctx context.Context, name string, userIDs []int64) (*domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: room name is required", domain.ErrInvalidRequest)
	}

	ids := make([]int64, 0, len(userIDs))
	for _, uid := range userIDs {
		if uid > 0 {
			ids = append(ids, uid)
		}
	}

	room := &domain.Room{Name: name, AuthorizedUserIDs: ids}
	if err := s.roomRepo.CreateWithMembers(ctx, room, ids); err != nil {
		return nil, fmt.Errorf("roomRepo.CreateWithMembers: %w", err)
	}
	return room, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	return s.roomRepo.FindRoom(ctx, id)
}

// ListRooms returns rooms with cursor pagination.
func (s *RoomService) ListRooms(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	return s.roomRepo.List(ctx, limit, cursor)
}

func (s *RoomService) DeleteRoom(ctx context.Context, id string) error {
	if _, err := s.roomRepo.Get(ctx, id); err != nil {
		return err
	}
	return s.roomRepo.Delete(ctx, id)
}

// GrantMember authorizes a user for a room; the room must exist.
func (s *RoomService) GrantMember(ctx context.Context, roomID string, userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("%w: positive userId required", domain.ErrInvalidRequest)
	}
	if _, err := s.roomRepo.Get(ctx, roomID); err != nil {
		return err
	}
	return s.memberRepo.Grant(ctx, roomID, userID)
}

// RevokeMember removes a user from a room's authorized list. Live sessions
// are not torn down; they lapse when the connection closes or re-registers.
func (s *RoomService) RevokeMember(ctx context.Context, roomID string, userID int64) error {
	if _, err := s.roomRepo.Get(ctx, roomID); err != nil {
		return err
	}
	return s.memberRepo.Revoke(ctx, roomID, userID)
}
