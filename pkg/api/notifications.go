package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hobbyhub/hobbyhub/internal/client/page"
)

// NotificationStreamPath is the SSE endpoint the push channel subscribes to.
// The stream is scoped to the authenticated user by the bearer token.
const NotificationStreamPath = "/notifications/subscribe"

func notificationKey(n Notification) (int64, string) {
	return n.NotificationID, n.CreatedAt
}

// Notifications fetches one page of the caller's notifications, newest
// first.
func (c *Client) Notifications(ctx context.Context, cur page.Cursor, size int) (page.Result[Notification], error) {
	q := map[string]string{"size": strconv.Itoa(size)}
	cur.SetParams(q, "lastNotificationId", "")

	body, _, err := c.doer.DoRequest(ctx, requestGet("/notifications", q))
	if err != nil {
		return page.Result[Notification]{}, err
	}
	return page.DecodeEnvelope[Notification](body, "notifications")
}

// NotificationsPager returns a pager over the caller's notifications.
func (c *Client) NotificationsPager(size int) *page.Pager[Notification] {
	if size <= 0 {
		size = c.pageSize
	}
	return page.NewPager(c.Notifications, notificationKey, size)
}

// MarkNotificationRead acknowledges a single notification.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID int64) error {
	path := fmt.Sprintf("/notifications/%d/read", notificationID)
	return c.postJSON(ctx, http.MethodPut, path, nil, nil)
}

// UnreadNotificationCount returns the number of unacknowledged
// notifications.
func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var res struct {
		Count int `json:"count"`
	}
	if err := c.getJSON(ctx, "/notifications/count", nil, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}
