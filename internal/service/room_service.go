package service

import (
	"context"
	"strings"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/elyaddev/Silo/internal/repository"
	"github.com/elyaddev/Silo/pkg/errcode"
	"github.com/google/uuid"
	"github.com/mbeoliero/kit/log"
)

// RoomService handles community room logic
type RoomService struct {
	roomRepo       *repository.RoomRepo
	discussionRepo *repository.DiscussionRepo
}

// NewRoomService creates a new RoomService
func NewRoomService(roomRepo *repository.RoomRepo, discussionRepo *repository.DiscussionRepo) *RoomService {
	return &RoomService{
		roomRepo:       roomRepo,
		discussionRepo: discussionRepo,
	}
}

// CreateRoomRequest represents room creation request
type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Sport       string `json:"sport,omitempty"`
}

// CreateRoom creates a new room
func (s *RoomService) CreateRoom(ctx context.Context, userId string, req *CreateRoomRequest) (*entity.RoomInfo, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errcode.ErrInvalidParam
	}

	room := &entity.Room{
		Id:          uuid.New().String(),
		Name:        name,
		Description: req.Description,
		Sport:       req.Sport,
		CreatorId:   userId,
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		log.CtxError(ctx, "create room failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	log.CtxInfo(ctx, "room created: room_id=%s, creator_id=%s", room.Id, userId)
	return s.toRoomInfo(ctx, room), nil
}

// GetRoom gets one room with its discussion count
func (s *RoomService) GetRoom(ctx context.Context, roomId string) (*entity.RoomInfo, error) {
	room, err := s.roomRepo.GetById(ctx, roomId)
	if err != nil {
		log.CtxError(ctx, "get room failed: room_id=%s, error=%v", roomId, err)
		return nil, errcode.ErrInternalServer
	}
	if room == nil {
		return nil, errcode.ErrRoomNotFound
	}
	return s.toRoomInfo(ctx, room), nil
}

// ListRooms lists all rooms ordered by name
func (s *RoomService) ListRooms(ctx context.Context) ([]*entity.RoomInfo, error) {
	rooms, err := s.roomRepo.List(ctx)
	if err != nil {
		log.CtxError(ctx, "list rooms failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	infos := make([]*entity.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		infos = append(infos, s.toRoomInfo(ctx, room))
	}
	return infos, nil
}

func (s *RoomService) toRoomInfo(ctx context.Context, room *entity.Room) *entity.RoomInfo {
	count, err := s.discussionRepo.CountByRoom(ctx, room.Id)
	if err != nil {
		log.CtxWarn(ctx, "count discussions failed: room_id=%s, error=%v", room.Id, err)
	}
	return &entity.RoomInfo{
		Id:              room.Id,
		Name:            room.Name,
		Description:     room.Description,
		Sport:           room.Sport,
		DiscussionCount: count,
		CreatedAt:       room.CreatedAt,
	}
}
