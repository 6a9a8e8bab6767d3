package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/elyaddev/Silo/internal/middleware"
	"github.com/elyaddev/Silo/internal/service"
	"github.com/elyaddev/Silo/pkg/errcode"
	"github.com/elyaddev/Silo/pkg/response"
)

// RoomHandler handles room requests
type RoomHandler struct {
	roomService *service.RoomService
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// CreateRoom handles room creation
func (h *RoomHandler) CreateRoom(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req service.CreateRoomRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	room, err := h.roomService.CreateRoom(ctx, userId, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, room)
}

// GetRoom handles fetching one room
func (h *RoomHandler) GetRoom(ctx context.Context, c *app.RequestContext) {
	roomId := c.Param("room_id")
	if roomId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	room, err := h.roomService.GetRoom(ctx, roomId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, room)
}

// ListRooms handles listing all rooms
func (h *RoomHandler) ListRooms(ctx context.Context, c *app.RequestContext) {
	rooms, err := h.roomService.ListRooms(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"rooms": rooms,
	})
}
