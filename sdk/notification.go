package sdk

import (
	"context"
	"strconv"
)

// ListNotifications lists the caller's notifications, newest first
func (c *Client) ListNotifications(ctx context.Context, limit int) ([]*NotificationItem, error) {
	var params map[string]string
	if limit > 0 {
		params = map[string]string{"limit": strconv.Itoa(limit)}
	}

	var result struct {
		Notifications []*NotificationItem `json:"notifications"`
	}
	if err := c.get(ctx, "/notification/list", params, &result); err != nil {
		return nil, err
	}
	return result.Notifications, nil
}

// CountUnreadNotifications returns the caller's unread notification count
func (c *Client) CountUnreadNotifications(ctx context.Context) (int64, error) {
	var result struct {
		Count int64 `json:"unread_count"`
	}
	if err := c.get(ctx, "/notification/unread_count", nil, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// MarkNotificationRead marks one notification as read
func (c *Client) MarkNotificationRead(ctx context.Context, notificationId int64) error {
	return c.post(ctx, "/notification/"+strconv.FormatInt(notificationId, 10)+"/read", nil, nil)
}

// MarkAllNotificationsRead marks every unread notification as read
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.post(ctx, "/notification/read_all", nil, nil)
}
