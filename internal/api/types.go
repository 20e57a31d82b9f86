package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemCategory classifies a menu item.
type ItemCategory string

const (
	CategoryCoffee  ItemCategory = "COFFEE"
	CategoryDessert ItemCategory = "DESSERT"
)

// MenuItem is a server-owned menu entry. Instances are immutable once fetched.
type MenuItem struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       Cents        `json:"price"`
	Category    ItemCategory `json:"item_type"`
	Available   bool         `json:"is_available"`
	PrepMinutes int          `json:"prep_minutes,omitempty"`
}

// OrderStatus is the server-owned order state machine. The client only
// requests transitions and reflects whatever the server confirms.
type OrderStatus string

const (
	StatusReceived  OrderStatus = "RECEIVED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// ParseStatus validates a raw status string.
func ParseStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusReceived, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// IsTerminal reports whether no further transitions are permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Next returns the legal target statuses from s. Forward transitions only;
// cancellation is reachable from RECEIVED alone.
func (s OrderStatus) Next() []OrderStatus {
	switch s {
	case StatusReceived:
		return []OrderStatus{StatusPreparing, StatusCancelled}
	case StatusPreparing:
		return []OrderStatus{StatusReady}
	case StatusReady:
		return []OrderStatus{StatusCompleted}
	}
	return nil
}

// CanTransitionTo reports whether target is a legal next state from s.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range s.Next() {
		if next == target {
			return true
		}
	}
	return false
}

// OrderItem is a line snapshot inside an order: menu item identity plus the
// quantity, customizations and unit price captured at order time.
type OrderItem struct {
	ID             uuid.UUID `json:"id"`
	MenuItemID     uuid.UUID `json:"menu_item_id"`
	Title          string    `json:"title"`
	Quantity       int       `json:"quantity"`
	Price          Cents     `json:"price"`
	Customizations string    `json:"customizations,omitempty"`
}

// Order mirrors the aggregate returned by the order service.
type Order struct {
	ID           uuid.UUID   `json:"id"`
	CustomerID   uuid.UUID   `json:"customer"`
	Items        []OrderItem `json:"items"`
	TotalPrice   Cents       `json:"total_price"`
	Notes        string      `json:"notes,omitempty"`
	ScheduledFor *time.Time  `json:"scheduled_for,omitempty"`
	IsFavourite  bool        `json:"is_favourite"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}

// Favourite is a named reference to a template order, used as a blueprint
// for reorders.
type Favourite struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	TemplateOrder uuid.UUID `json:"template_order"`
	CreatedAt     time.Time `json:"created_at"`
}

// Role determines which operations the UI offers a signed-in user.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleBarista  Role = "BARISTA"
	RoleAdmin    Role = "ADMIN"
)

// User is the profile record mirrored locally after auth and profile calls.
type User struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Role          Role      `json:"role"`
	LoyaltyPoints int       `json:"loyalty_points"`
}

// LoyaltyOffer is a promotion redeemable with points.
type LoyaltyOffer struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	PointsRequired int       `json:"points_required"`
}

// Redemption is returned when an offer is claimed.
type Redemption struct {
	RedemptionCode string `json:"redemption_code"`
	PointsLeft     int    `json:"points_left"`
}

// Notification is a server-pushed message about an order or promotion.
type Notification struct {
	ID      uuid.UUID  `json:"id"`
	Type    string     `json:"notification_type"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	IsRead  bool       `json:"is_read"`
	SentAt  time.Time  `json:"sent_at"`
	OrderID *uuid.UUID `json:"order,omitempty"`
}
