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

// DirectHandler handles DM requests, conversations and messages
type DirectHandler struct {
	directService *service.DirectService
}

// NewDirectHandler creates a new DirectHandler
func NewDirectHandler(directService *service.DirectService) *DirectHandler {
	return &DirectHandler{directService: directService}
}

// SendRequestBody represents a DM request submission
type SendRequestBody struct {
	RequestedId string `json:"requested_id"`
}

// SendRequest handles creating a DM request
func (h *DirectHandler) SendRequest(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req SendRequestBody
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	out, err := h.directService.SendRequest(ctx, userId, req.RequestedId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, out)
}

// RespondRequestBody represents a DM request decision
type RespondRequestBody struct {
	Action string `json:"action"` // accept / decline / block / cancel
}

// RespondRequest handles deciding a DM request
func (h *DirectHandler) RespondRequest(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	requestId := c.Param("request_id")
	if requestId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	var req RespondRequestBody
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	out, err := h.directService.RespondRequest(ctx, userId, requestId, req.Action)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, out)
}

// ListRequests handles listing pending incoming requests
func (h *DirectHandler) ListRequests(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	reqs, err := h.directService.ListPendingRequests(ctx, userId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"requests": reqs,
	})
}

// ListSummaries handles the DM conversation list
func (h *DirectHandler) ListSummaries(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	summaries, err := h.directService.ListSummaries(ctx, userId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"conversations": summaries,
	})
}

// TotalUnread handles the total DM unread counter
func (h *DirectHandler) TotalUnread(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	total, err := h.directService.TotalUnread(ctx, userId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"total_unread": total,
	})
}

// MarkRead handles moving the caller's read marker
func (h *DirectHandler) MarkRead(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	conversationId := c.Param("conversation_id")
	if conversationId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	if err := h.directService.MarkRead(ctx, userId, conversationId); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// Leave handles leaving a conversation
func (h *DirectHandler) Leave(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	conversationId := c.Param("conversation_id")
	if conversationId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	if err := h.directService.LeaveConversation(ctx, userId, conversationId); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// SendMessage handles sending a DM
func (h *DirectHandler) SendMessage(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req service.SendMessageRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	msg, err := h.directService.SendMessage(ctx, userId, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, msg)
}

// ListMessages handles listing conversation messages
func (h *DirectHandler) ListMessages(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	conversationId := c.Param("conversation_id")
	if conversationId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	before, _ := strconv.ParseInt(c.Query("before"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))

	messages, err := h.directService.ListMessages(ctx, userId, conversationId, before, limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"messages": messages,
	})
}

// DeleteMessage handles soft-deleting a DM
func (h *DirectHandler) DeleteMessage(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	messageId, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil || messageId <= 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	msg, err := h.directService.DeleteMessage(ctx, userId, messageId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, msg)
}
