package cart

import (
	"sync"

	"github.com/google/uuid"

	"github.com/brewbarclub/brewbar/internal/api"
)

// Line is one cart entry: the selected menu item by value (price snapshotted
// at add time), a quantity and a free-text customizations string.
type Line struct {
	MenuItem       api.MenuItem
	Quantity       int
	Customizations string
}

// Total returns the line total at the snapshotted unit price.
func (l Line) Total() api.Cents {
	return l.MenuItem.Price * api.Cents(l.Quantity)
}

// Cart accumulates the customer's in-progress selection prior to submission.
// It holds at most one line per menu item id; adding an already-present item
// merges into the existing line. Submission reads a snapshot and never
// mutates the cart, so a failed submission leaves it intact.
type Cart struct {
	mu    sync.RWMutex
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add appends a line for item, or merges into the existing line for the same
// menu item id: quantities sum, customizations are overwritten with the new
// value. Quantities below one are clamped to one.
func (c *Cart) Add(item api.MenuItem, quantity int, customizations string) {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].MenuItem.ID == item.ID {
			c.lines[i].Quantity += quantity
			c.lines[i].Customizations = customizations
			return
		}
	}

	c.lines = append(c.lines, Line{
		MenuItem:       item,
		Quantity:       quantity,
		Customizations: customizations,
	})
}

// Remove deletes the line for menuItemID. Removing an absent item is a no-op.
func (c *Cart) Remove(menuItemID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].MenuItem.ID == menuItemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetQuantity replaces the quantity on an existing line. No-op when the line
// is absent or quantity is not positive.
func (c *Cart) SetQuantity(menuItemID uuid.UUID, quantity int) {
	if quantity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].MenuItem.ID == menuItemID {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// Total sums unit price times quantity over current lines, using the prices
// captured at add time.
func (c *Cart) Total() api.Cents {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total api.Cents
	for _, line := range c.lines {
		total += line.Total()
	}
	return total
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines)
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Snapshot converts the current lines into an order submission payload.
// The snapshot is detached: later cart mutations do not affect it.
func (c *Cart) Snapshot() []api.OrderLine {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]api.OrderLine, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, api.OrderLine{
			MenuItemID:     line.MenuItem.ID,
			Quantity:       line.Quantity,
			Customizations: line.Customizations,
		})
	}
	return out
}

// Clear empties the cart. Called exactly once after a confirmed submission.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}
