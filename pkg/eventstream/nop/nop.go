// Package nop provides a no-op eventstream publisher for deployments
// without an event stream backend.
package nop

import (
	"context"

	"github.com/papercomputeco/catalog/pkg/eventstream"
)

// Publisher discards all events.
type Publisher struct{}

// New creates a no-op publisher.
func New() *Publisher {
	return &Publisher{}
}

// PublishCapture validates the payload and discards it.
func (p *Publisher) PublishCapture(_ context.Context, event *eventstream.EntriesCapturedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
