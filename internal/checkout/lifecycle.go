package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/brewbarclub/brewbar/internal/api"
	"github.com/brewbarclub/brewbar/internal/cart"
	"github.com/brewbarclub/brewbar/internal/session"
)

// ErrDeclined is returned when the user rejects a confirmation prompt for an
// irrevocable action.
var ErrDeclined = errors.New("action declined by user")

// ConfirmFunc asks the user to confirm an irrevocable action. A nil hook
// means the caller has no confirmation channel and actions proceed.
type ConfirmFunc func(prompt string) bool

// OrderAPI is the slice of the remote API the lifecycle controller drives.
// *api.Client satisfies it; tests substitute fakes.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*api.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, req api.UpdateOrderRequest) (*api.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status api.OrderStatus) (*api.Order, error)
	SaveFavourite(ctx context.Context, name string, templateOrder uuid.UUID) (*api.Favourite, error)
	Reorder(ctx context.Context, id uuid.UUID, scheduledFor *time.Time) (*api.Order, error)
	DeleteFavourite(ctx context.Context, id uuid.UUID) error
	GetProfile(ctx context.Context) (*api.User, error)
}

// Lifecycle drives an order from cart snapshot to terminal state: submission,
// pre-preparation edits, cancellation, favourites and reorders. The server
// owns the status state machine; this controller only requests transitions
// and reconciles with whatever the server confirms.
type Lifecycle struct {
	client   OrderAPI
	cart     *cart.Cart
	sessions *session.Store
	confirm  ConfirmFunc
	logger   apt.Logger
}

type Deps struct {
	Client   OrderAPI
	Cart     *cart.Cart
	Sessions *session.Store
	Confirm  ConfirmFunc
}

func NewLifecycle(deps Deps, logger apt.Logger) *Lifecycle {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Lifecycle{
		client:   deps.Client,
		cart:     deps.Cart,
		sessions: deps.Sessions,
		confirm:  deps.Confirm,
		logger:   logger,
	}
}

// Submit validates the cart snapshot, posts it, and clears the cart once the
// server confirms. An empty cart fails locally before any network call; a
// failed submission leaves the cart untouched so the user can retry.
func (l *Lifecycle) Submit(ctx context.Context, notes string, scheduledFor *time.Time) (*api.Order, error) {
	snapshot := l.cart.Snapshot()
	if len(snapshot) == 0 {
		return nil, &api.ValidationError{Field: "items", Reason: "cart is empty"}
	}

	order, err := l.client.CreateOrder(ctx, api.CreateOrderRequest{
		Items:        snapshot,
		Notes:        notes,
		ScheduledFor: scheduledFor,
	})
	if err != nil {
		l.logger.Error("order submission failed", "error", err)
		return nil, err
	}

	l.cart.Clear()
	l.logger.Info("order submitted", "order_id", order.ID, "total", order.TotalPrice.String())
	return order, nil
}

// Edit replaces an order's lines and notes in place. Permitted only while
// the order is RECEIVED; the server is the final authority and its rejection
// surfaces as ConflictError.
func (l *Lifecycle) Edit(ctx context.Context, orderID uuid.UUID, lines []api.OrderLine, notes string) (*api.Order, error) {
	if len(lines) == 0 {
		return nil, &api.ValidationError{Field: "items", Reason: "an order needs at least one item"}
	}

	order, err := l.client.UpdateOrder(ctx, orderID, api.UpdateOrderRequest{Items: lines, Notes: notes})
	if err != nil {
		l.logger.Error("order edit rejected", "order_id", orderID, "error", err)
		return nil, err
	}
	return order, nil
}

// Cancel requests cancellation of a RECEIVED order after explicit user
// confirmation.
func (l *Lifecycle) Cancel(ctx context.Context, orderID uuid.UUID) error {
	if !l.confirmed(fmt.Sprintf("Cancel order %s? This cannot be undone.", orderID)) {
		return ErrDeclined
	}

	if err := l.client.CancelOrder(ctx, orderID); err != nil {
		l.logger.Error("order cancellation failed", "order_id", orderID, "error", err)
		return err
	}

	l.logger.Info("order cancelled", "order_id", orderID)
	return nil
}

// RequestStatusChange asks the server for a transition and returns its
// authoritative representation. Callers should offer only the statuses from
// OrderStatus.Next; illegal requests are the server's to reject.
func (l *Lifecycle) RequestStatusChange(ctx context.Context, orderID uuid.UUID, next api.OrderStatus) (*api.Order, error) {
	order, err := l.client.UpdateStatus(ctx, orderID, next)
	if err != nil {
		l.logger.Error("status change rejected", "order_id", orderID, "status", string(next), "error", err)
		return nil, err
	}

	l.logger.Info("order status changed", "order_id", orderID, "status", string(order.Status))
	return order, nil
}

// SaveFavourite stores an order as a named reusable template.
func (l *Lifecycle) SaveFavourite(ctx context.Context, name string, orderID uuid.UUID) (*api.Favourite, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &api.ValidationError{Field: "name", Reason: "favourite name cannot be blank"}
	}

	favourite, err := l.client.SaveFavourite(ctx, name, orderID)
	if err != nil {
		l.logger.Error("failed to save favourite", "order_id", orderID, "error", err)
		return nil, err
	}
	return favourite, nil
}

// ReorderFromFavourite asks the server to instantiate a fresh order from the
// favourite's template. The cart is not involved; it is a server-side copy.
// Loyalty points move server-side, so the mirrored profile is refreshed
// afterwards on a best-effort basis.
func (l *Lifecycle) ReorderFromFavourite(ctx context.Context, favouriteID uuid.UUID, scheduledFor *time.Time) (*api.Order, error) {
	order, err := l.client.Reorder(ctx, favouriteID, scheduledFor)
	if err != nil {
		l.logger.Error("reorder failed", "favourite_id", favouriteID, "error", err)
		return nil, err
	}

	l.refreshProfile(ctx)
	l.logger.Info("reordered from favourite", "favourite_id", favouriteID, "order_id", order.ID)
	return order, nil
}

// DeleteFavourite removes a favourite after explicit user confirmation.
func (l *Lifecycle) DeleteFavourite(ctx context.Context, favouriteID uuid.UUID) error {
	if !l.confirmed(fmt.Sprintf("Delete favourite %s? This cannot be undone.", favouriteID)) {
		return ErrDeclined
	}

	if err := l.client.DeleteFavourite(ctx, favouriteID); err != nil {
		l.logger.Error("failed to delete favourite", "favourite_id", favouriteID, "error", err)
		return err
	}
	return nil
}

func (l *Lifecycle) confirmed(prompt string) bool {
	if l.confirm == nil {
		return true
	}
	return l.confirm(prompt)
}

// refreshProfile re-reads the profile into the session mirror. Failures are
// logged only; the triggering operation already succeeded.
func (l *Lifecycle) refreshProfile(ctx context.Context) {
	if l.sessions == nil {
		return
	}

	user, err := l.client.GetProfile(ctx)
	if err != nil {
		l.logger.Info("profile refresh failed", "error", err)
		return
	}
	if err := l.sessions.UpdateUser(*user); err != nil {
		l.logger.Info("session update failed", "error", err)
	}
}
