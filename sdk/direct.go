package sdk

import (
	"context"
	"strconv"
)

// SendDirectRequest asks another user to open a DM conversation
func (c *Client) SendDirectRequest(ctx context.Context, requestedId string) (*DirectRequest, error) {
	req := map[string]string{"requested_id": requestedId}
	var result DirectRequest
	if err := c.post(ctx, "/dm/request", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RespondDirectRequest decides a pending DM request. Valid actions are
// accept, decline, block (by the requested user) and cancel (by the
// requester).
func (c *Client) RespondDirectRequest(ctx context.Context, requestId, action string) (*DirectRequest, error) {
	req := map[string]string{"action": action}
	var result DirectRequest
	if err := c.post(ctx, "/dm/request/"+requestId+"/respond", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListPendingRequests lists DM requests awaiting the caller's decision
func (c *Client) ListPendingRequests(ctx context.Context) ([]*DirectRequest, error) {
	var result struct {
		Requests []*DirectRequest `json:"requests"`
	}
	if err := c.get(ctx, "/dm/requests", nil, &result); err != nil {
		return nil, err
	}
	return result.Requests, nil
}

// ListConversations lists the caller's DM conversations, most recently
// active first
func (c *Client) ListConversations(ctx context.Context) ([]*ConversationSummary, error) {
	var result struct {
		Conversations []*ConversationSummary `json:"conversations"`
	}
	if err := c.get(ctx, "/dm/list", nil, &result); err != nil {
		return nil, err
	}
	return result.Conversations, nil
}

// TotalUnread returns the caller's total unread DM count across all
// conversations
func (c *Client) TotalUnread(ctx context.Context) (int64, error) {
	var result struct {
		Total int64 `json:"total_unread"`
	}
	if err := c.get(ctx, "/dm/unread_total", nil, &result); err != nil {
		return 0, err
	}
	return result.Total, nil
}

// SendDirectMessageRequest represents DM sending request
type SendDirectMessageRequest struct {
	ConversationId   string `json:"conversation_id"`
	Content          string `json:"content"`
	ReplyToMessageId *int64 `json:"reply_to_message_id,omitempty"`
}

// SendDirectMessage sends a DM. The call honors the client's
// configured send timeout.
func (c *Client) SendDirectMessage(ctx context.Context, req *SendDirectMessageRequest) (*DirectMessageInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.SendTimeout())
	defer cancel()

	var result DirectMessageInfo
	if err := c.post(ctx, "/dm/send", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListDirectMessages lists the messages of one conversation in sending
// order
func (c *Client) ListDirectMessages(ctx context.Context, conversationId string) ([]*DirectMessageInfo, error) {
	var result struct {
		Messages []*DirectMessageInfo `json:"messages"`
	}
	if err := c.get(ctx, "/dm/"+conversationId+"/messages", nil, &result); err != nil {
		return nil, err
	}
	return result.Messages, nil
}

// MarkConversationRead moves the caller's read cursor to now
func (c *Client) MarkConversationRead(ctx context.Context, conversationId string) error {
	return c.post(ctx, "/dm/"+conversationId+"/mark_read", nil, nil)
}

// LeaveConversation removes the caller from a conversation
func (c *Client) LeaveConversation(ctx context.Context, conversationId string) error {
	return c.post(ctx, "/dm/"+conversationId+"/leave", nil, nil)
}

// DeleteDirectMessage soft deletes the caller's own DM
func (c *Client) DeleteDirectMessage(ctx context.Context, messageId int64) error {
	return c.del(ctx, "/dm/message/"+strconv.FormatInt(messageId, 10), nil)
}
