package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix roots every subject: colorway.<table>.<type>.
const DefaultSubjectPrefix = "colorway"

// NATSPublisher forwards events to a NATS server.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher connects to url. The connection reconnects on its own
// and buffers publishes while it does.
func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	opts = append([]nats.Option{
		nats.Name("colorway-poker"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}, opts...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return NewNATSPublisherConn(nc, DefaultSubjectPrefix), nil
}

// NewNATSPublisherConn wraps an existing connection.
func NewNATSPublisherConn(nc *nats.Conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{nc: nc, prefix: prefix}
}

// Subject returns the subject ev is published on.
func (p *NATSPublisher) Subject(ev Event) string {
	return Subject(p.prefix, ev)
}

// Subject builds prefix.<table id>.<event type>.
func Subject(prefix string, ev Event) string {
	return prefix + "." + ev.TableID + "." + ev.Type
}

func (p *NATSPublisher) Publish(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.nc.Publish(p.Subject(ev), data); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Close drains pending publishes and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
