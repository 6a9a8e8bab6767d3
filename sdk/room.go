package sdk

import (
	"context"
	"strconv"
)

// CreateRoomRequest represents room creation request
type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Sport       string `json:"sport,omitempty"`
}

// CreateRoom creates a new room
func (c *Client) CreateRoom(ctx context.Context, req *CreateRoomRequest) (*RoomInfo, error) {
	var result RoomInfo
	if err := c.post(ctx, "/room/create", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRoom gets one room
func (c *Client) GetRoom(ctx context.Context, roomId string) (*RoomInfo, error) {
	var result RoomInfo
	if err := c.get(ctx, "/room/"+roomId, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListRooms lists all rooms
func (c *Client) ListRooms(ctx context.Context) ([]*RoomInfo, error) {
	var result struct {
		Rooms []*RoomInfo `json:"rooms"`
	}
	if err := c.get(ctx, "/room/list", nil, &result); err != nil {
		return nil, err
	}
	return result.Rooms, nil
}

// CreateDiscussionRequest represents discussion creation request
type CreateDiscussionRequest struct {
	RoomId string `json:"room_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// CreateDiscussion starts a new discussion
func (c *Client) CreateDiscussion(ctx context.Context, req *CreateDiscussionRequest) (*DiscussionInfo, error) {
	var result DiscussionInfo
	if err := c.post(ctx, "/discussion/create", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetDiscussion gets one discussion
func (c *Client) GetDiscussion(ctx context.Context, discussionId string) (*DiscussionInfo, error) {
	var result DiscussionInfo
	if err := c.get(ctx, "/discussion/"+discussionId, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListDiscussions lists discussions of a room, newest first
func (c *Client) ListDiscussions(ctx context.Context, roomId string, limit int) ([]*DiscussionInfo, error) {
	params := map[string]string{"room_id": roomId}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	var result struct {
		Discussions []*DiscussionInfo `json:"discussions"`
	}
	if err := c.get(ctx, "/discussion/list", params, &result); err != nil {
		return nil, err
	}
	return result.Discussions, nil
}

// GetAlias looks up one user's alias inside a discussion. A NotFound
// error means the user has never participated there.
func (c *Client) GetAlias(ctx context.Context, discussionId, userId string) (*AliasInfo, error) {
	params := map[string]string{"user_id": userId}
	var result AliasInfo
	if err := c.get(ctx, "/discussion/"+discussionId+"/alias", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Search runs a whole-word discussion search
func (c *Client) Search(ctx context.Context, query string) ([]*SearchResult, error) {
	params := map[string]string{"q": query}
	var result struct {
		Results []*SearchResult `json:"results"`
	}
	if err := c.get(ctx, "/discussion/search", params, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}
