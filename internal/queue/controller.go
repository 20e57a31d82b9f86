package queue

import (
	"context"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/brewbarclub/brewbar/internal/api"
)

// DefaultInterval is the baseline polling cadence for the queue view.
const DefaultInterval = 5 * time.Second

// QueueAPI fetches the open order set. *api.Client satisfies it.
type QueueAPI interface {
	Queue(ctx context.Context) ([]api.Order, error)
}

// StatusChanger requests status transitions. checkout.Lifecycle satisfies it.
type StatusChanger interface {
	RequestStatusChange(ctx context.Context, orderID uuid.UUID, next api.OrderStatus) (*api.Order, error)
}

// Controller maintains a near-real-time view of all non-terminal orders for
// the barista side. Each refresh replaces the held list wholesale; partial
// merges are never attempted. Responses are tagged with a sequence number
// taken before the request goes out, and a response older than the last
// applied one is discarded so a slow refresh cannot clobber fresher state.
type Controller struct {
	mu       sync.RWMutex
	orders   []api.Order
	applied  uint64
	nextSeq  uint64
	client   QueueAPI
	statuses StatusChanger
	interval time.Duration
	onError  func(error)
	logger   apt.Logger

	subMu       sync.Mutex
	subscribers map[string]chan []api.Order
}

type Deps struct {
	Client   QueueAPI
	Statuses StatusChanger
	// Interval overrides the polling cadence; zero means DefaultInterval.
	Interval time.Duration
	// OnError receives refresh failures for transient user notification.
	OnError func(error)
}

func NewController(deps Deps, logger apt.Logger) *Controller {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	interval := deps.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{
		client:      deps.Client,
		statuses:    deps.Statuses,
		interval:    interval,
		onError:     deps.OnError,
		logger:      logger,
		subscribers: make(map[string]chan []api.Order),
	}
}

// Run refreshes immediately, then on every tick until ctx is cancelled.
// Cancelling the context is the owning view's teardown; the ticker is always
// released.
func (c *Controller) Run(ctx context.Context) {
	c.logger.Info("queue controller started", "interval", c.interval.String())

	if err := c.Refresh(ctx); err != nil {
		c.reportError(err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("queue controller stopped")
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.reportError(err)
			}
		}
	}
}

// Refresh fetches the full order set, drops terminal orders and replaces the
// held list. A failed refresh leaves the previous list intact.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.nextSeq++
	seq := c.nextSeq
	c.mu.Unlock()

	orders, err := c.client.Queue(ctx)
	if err != nil {
		c.logger.Info("queue refresh failed, keeping previous list", "error", err)
		return err
	}

	open := make([]api.Order, 0, len(orders))
	for _, order := range orders {
		if order.Status.IsTerminal() {
			continue
		}
		open = append(open, order)
	}

	c.mu.Lock()
	if seq <= c.applied {
		c.mu.Unlock()
		c.logger.Debug("discarding stale queue refresh", "seq", seq, "applied", c.applied)
		return nil
	}
	c.applied = seq
	c.orders = open
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.broadcast(snapshot)
	return nil
}

// ApplyStatusChange requests a transition and reconciles the held list with
// the server's returned order: terminal results drop out of the queue,
// non-terminal ones replace the matching entry in place. A locally-guessed
// post-transition object is never used.
func (c *Controller) ApplyStatusChange(ctx context.Context, orderID uuid.UUID, next api.OrderStatus) (*api.Order, error) {
	order, err := c.statuses.RequestStatusChange(ctx, orderID, next)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.nextSeq++
	c.applied = c.nextSeq
	if order.Status.IsTerminal() {
		c.removeLocked(order.ID)
	} else {
		c.replaceLocked(*order)
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.broadcast(snapshot)
	return order, nil
}

// Snapshot returns a copy of the currently held open orders.
func (c *Controller) Snapshot() []api.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// CountByStatus tallies the held orders per status for the dashboard header.
func (c *Controller) CountByStatus() map[api.OrderStatus]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[api.OrderStatus]int)
	for _, order := range c.orders {
		counts[order.Status]++
	}
	return counts
}

// Subscribe registers a snapshot channel for fan-out to stream consumers.
// Sends are non-blocking; a slow consumer misses intermediate snapshots, not
// the final state.
func (c *Controller) Subscribe(subscriberID string) <-chan []api.Order {
	ch := make(chan []api.Order, 8)

	c.subMu.Lock()
	c.subscribers[subscriberID] = ch
	c.subMu.Unlock()

	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (c *Controller) Unsubscribe(subscriberID string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if ch, ok := c.subscribers[subscriberID]; ok {
		delete(c.subscribers, subscriberID)
		close(ch)
	}
}

func (c *Controller) broadcast(snapshot []api.Order) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for _, ch := range c.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (c *Controller) reportError(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}

func (c *Controller) snapshotLocked() []api.Order {
	out := make([]api.Order, len(c.orders))
	copy(out, c.orders)
	return out
}

func (c *Controller) removeLocked(orderID uuid.UUID) {
	for i := range c.orders {
		if c.orders[i].ID == orderID {
			c.orders = append(c.orders[:i], c.orders[i+1:]...)
			return
		}
	}
}

func (c *Controller) replaceLocked(order api.Order) {
	for i := range c.orders {
		if c.orders[i].ID == order.ID {
			c.orders[i] = order
			return
		}
	}
	// Not held yet (created between refreshes); append rather than drop it.
	c.orders = append(c.orders, order)
}
