package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher fans counter events out to in-store consumers (pickup
// displays, notification boards). Satisfies events.Publisher. The counter
// runs on shop hardware with flaky wifi, so the connection retries
// indefinitely and buffers while reconnecting.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("brewbar-counter"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if err := p.conn.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Close flushes pending messages before dropping the connection so a status
// event published right before shutdown still reaches the displays.
func (p *NATSPublisher) Close() error {
	if err := p.conn.FlushTimeout(2 * time.Second); err != nil {
		p.conn.Close()
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}
	p.conn.Close()
	return nil
}
