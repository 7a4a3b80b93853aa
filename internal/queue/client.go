package queue

import "context"

// Publisher sends report lifecycle events to a broker.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}
