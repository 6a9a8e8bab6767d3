package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/elyaddev/Silo/internal/middleware"
	"github.com/elyaddev/Silo/internal/service"
	"github.com/elyaddev/Silo/pkg/errcode"
	"github.com/elyaddev/Silo/pkg/response"
)

// DiscussionHandler handles discussion, alias and search requests
type DiscussionHandler struct {
	discussionService *service.DiscussionService
	searchService     *service.SearchService
}

// NewDiscussionHandler creates a new DiscussionHandler
func NewDiscussionHandler(discussionService *service.DiscussionService, searchService *service.SearchService) *DiscussionHandler {
	return &DiscussionHandler{
		discussionService: discussionService,
		searchService:     searchService,
	}
}

// CreateDiscussion handles starting a discussion
func (h *DiscussionHandler) CreateDiscussion(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req service.CreateDiscussionRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	discussion, err := h.discussionService.CreateDiscussion(ctx, userId, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, discussion)
}

// GetDiscussion handles fetching one discussion
func (h *DiscussionHandler) GetDiscussion(ctx context.Context, c *app.RequestContext) {
	discussionId := c.Param("discussion_id")
	if discussionId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	discussion, err := h.discussionService.GetDiscussion(ctx, discussionId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, discussion)
}

// ListDiscussions handles listing discussions of a room
func (h *DiscussionHandler) ListDiscussions(ctx context.Context, c *app.RequestContext) {
	roomId := c.Query("room_id")
	if roomId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	discussions, err := h.discussionService.ListDiscussions(ctx, roomId, limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"discussions": discussions,
	})
}

// GetAlias handles one alias lookup inside a discussion
func (h *DiscussionHandler) GetAlias(ctx context.Context, c *app.RequestContext) {
	discussionId := c.Param("discussion_id")
	targetId := c.Query("user_id")
	if discussionId == "" || targetId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	alias, err := h.discussionService.GetAlias(ctx, discussionId, targetId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, alias)
}

// Search handles whole-word discussion search
func (h *DiscussionHandler) Search(ctx context.Context, c *app.RequestContext) {
	query := c.Query("q")

	results, err := h.searchService.Search(ctx, query)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"results": results,
	})
}
