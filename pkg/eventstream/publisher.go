package eventstream

import "context"

// Publisher publishes capture events to an event stream backend.
type Publisher interface {
	PublishCapture(ctx context.Context, event *EntriesCapturedEvent) error
	Close() error
}
