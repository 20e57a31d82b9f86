package api

import (
	"context"
	"fmt"
)

// ListMenuItems fetches the full menu, following pagination until exhausted.
func (c *Client) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	items, err := listAll[MenuItem](ctx, c, "/menu-items/")
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}
