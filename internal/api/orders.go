package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// OrderLine is one line of an order submission: menu item identity plus
// quantity and customizations.
type OrderLine struct {
	MenuItemID     uuid.UUID `json:"menu_item_id"`
	Quantity       int       `json:"quantity"`
	Customizations string    `json:"customizations,omitempty"`
}

// CreateOrderRequest is the payload accepted by POST /orders/.
type CreateOrderRequest struct {
	Items        []OrderLine `json:"items"`
	Notes        string      `json:"notes,omitempty"`
	ScheduledFor *time.Time  `json:"scheduled_for,omitempty"`
}

// UpdateOrderRequest is the PATCH payload for pre-preparation edits.
type UpdateOrderRequest struct {
	Items []OrderLine `json:"items"`
	Notes string      `json:"notes,omitempty"`
}

// CreateOrder submits a new order. The server assigns identity and sets the
// initial RECEIVED status.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders/", req, &order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return &order, nil
}

// ListMyOrders returns the caller's orders, filtered server-side. The
// collection is paginated; every page is fetched.
func (c *Client) ListMyOrders(ctx context.Context) ([]Order, error) {
	orders, err := listAll[Order](ctx, c, "/orders/")
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder fetches a single order by id.
func (c *Client) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%s/", id), nil, &order); err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// UpdateOrder edits an order in place. The server rejects edits once the
// order has left RECEIVED; that rejection surfaces as ConflictError.
func (c *Client) UpdateOrder(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/orders/%s/", id), req, &order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return &order, nil
}

// CancelOrder requests cancellation. Permitted only while RECEIVED.
func (c *Client) CancelOrder(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%s/", id), nil, nil); err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	return nil
}

// Queue returns the barista queue: open orders awaiting preparation.
func (c *Client) Queue(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders/queue/", nil, &orders); err != nil {
		return nil, fmt.Errorf("failed to fetch order queue: %w", err)
	}
	return orders, nil
}

// UpdateStatus requests a status transition and returns the server's
// authoritative representation of the order.
func (c *Client) UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) (*Order, error) {
	payload := map[string]OrderStatus{"status": status}
	var order Order
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%s/update_status/", id), payload, &order); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return &order, nil
}

// MarkFavourite toggles the favourite flag on an order.
func (c *Client) MarkFavourite(ctx context.Context, id uuid.UUID, favourite bool) (*Order, error) {
	payload := map[string]bool{"is_favourite": favourite}
	var order Order
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%s/mark_favourite/", id), payload, &order); err != nil {
		return nil, fmt.Errorf("failed to mark order favourite: %w", err)
	}
	return &order, nil
}
