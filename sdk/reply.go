package sdk

import (
	"context"
	"strconv"
)

// PostReplyRequest represents reply posting request
type PostReplyRequest struct {
	DiscussionId string `json:"discussion_id"`
	Content      string `json:"content"`
	ParentId     *int64 `json:"parent_id,omitempty"`
}

// PostReply posts a reply to a discussion. The call honors the
// client's configured send timeout.
func (c *Client) PostReply(ctx context.Context, req *PostReplyRequest) (*MessageInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.SendTimeout())
	defer cancel()

	var result MessageInfo
	if err := c.post(ctx, "/reply/post", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListReplies lists the replies of a discussion in posting order
func (c *Client) ListReplies(ctx context.Context, discussionId string) ([]*MessageInfo, error) {
	params := map[string]string{"discussion_id": discussionId}
	var result struct {
		Replies []*MessageInfo `json:"replies"`
	}
	if err := c.get(ctx, "/reply/list", params, &result); err != nil {
		return nil, err
	}
	return result.Replies, nil
}

// DeleteReply soft deletes the caller's own reply
func (c *Client) DeleteReply(ctx context.Context, messageId int64) error {
	return c.del(ctx, "/reply/"+strconv.FormatInt(messageId, 10), nil)
}
