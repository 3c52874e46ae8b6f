// Package events fans table lifecycle events out to in-process
// subscribers and, optionally, to NATS.
package events

import (
	"context"
	"time"

	"go.uber.org/multierr"
)

// Event types.
const (
	TypeRoundDealt    = "round.dealt"
	TypeRoundResolved = "round.resolved"
	TypeTableRotated  = "table.rotated"
)

// Event is one table lifecycle change.
type Event struct {
	Type    string    `json:"type"`
	TableID string    `json:"table_id"`
	At      time.Time `json:"at"`
	Data    any       `json:"data,omitempty"`
}

// Publisher delivers events somewhere.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Multi publishes to every publisher in order and reports all failures.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var err error
	for _, p := range m {
		err = multierr.Append(err, p.Publish(ctx, ev))
	}
	return err
}

func (m Multi) Close() error {
	var err error
	for _, p := range m {
		err = multierr.Append(err, p.Close())
	}
	return err
}
