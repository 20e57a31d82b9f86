package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ListFavourites returns the caller's saved favourites, following pagination.
func (c *Client) ListFavourites(ctx context.Context) ([]Favourite, error) {
	favourites, err := listAll[Favourite](ctx, c, "/favourites/")
	if err != nil {
		return nil, fmt.Errorf("failed to list favourites: %w", err)
	}
	return favourites, nil
}

// SaveFavourite stores an order's line items as a reusable template.
func (c *Client) SaveFavourite(ctx context.Context, name string, templateOrder uuid.UUID) (*Favourite, error) {
	payload := map[string]any{
		"name":           name,
		"template_order": templateOrder,
	}
	var favourite Favourite
	if err := c.do(ctx, http.MethodPost, "/favourites/", payload, &favourite); err != nil {
		return nil, fmt.Errorf("failed to save favourite: %w", err)
	}
	return &favourite, nil
}

// Reorder instantiates a fresh order from the favourite's template. This is a
// server-side copy; the template's own status is irrelevant.
func (c *Client) Reorder(ctx context.Context, id uuid.UUID, scheduledFor *time.Time) (*Order, error) {
	payload := map[string]*time.Time{"scheduled_for": scheduledFor}
	var order Order
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/favourites/%s/reorder/", id), payload, &order); err != nil {
		return nil, fmt.Errorf("failed to reorder from favourite: %w", err)
	}
	return &order, nil
}

// DeleteFavourite removes a favourite permanently.
func (c *Client) DeleteFavourite(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/favourites/%s/", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete favourite: %w", err)
	}
	return nil
}
