package sdk

import (
	"context"
	"strconv"
)

// ListActivities lists the caller's activity feed, newest first
func (c *Client) ListActivities(ctx context.Context, limit int) ([]*Activity, error) {
	var params map[string]string
	if limit > 0 {
		params = map[string]string{"limit": strconv.Itoa(limit)}
	}

	var result struct {
		Activities []*Activity `json:"activity"`
	}
	if err := c.get(ctx, "/activity/list", params, &result); err != nil {
		return nil, err
	}
	return result.Activities, nil
}

// ReportUserRequest represents a user report
type ReportUserRequest struct {
	TargetUserId string                 `json:"target_user_id"`
	Reason       string                 `json:"reason"`
	Details      string                 `json:"details,omitempty"`
	Context      map[string]interface{} `json:"context,omitempty"`
}

// ReportUser files a report against another user
func (c *Client) ReportUser(ctx context.Context, req *ReportUserRequest) error {
	return c.post(ctx, "/activity/report", req, nil)
}
