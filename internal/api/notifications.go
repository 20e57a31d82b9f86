package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ListNotifications returns the caller's notifications, newest first,
// following pagination.
func (c *Client) ListNotifications(ctx context.Context) ([]Notification, error) {
	notifications, err := listAll[Notification](ctx, c, "/notifications/")
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flags a single notification as read.
func (c *Client) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/notifications/%s/mark_read/", id), nil, nil); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead flags every unread notification as read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/notifications/mark_all_read/", nil, nil); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
