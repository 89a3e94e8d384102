package stream

import "context"

// StreamConsumer reads moderation requests from a broker until ctx is done.
type StreamConsumer interface {
	Setup(ctx context.Context) error
	Start(ctx context.Context) error
	Stop() error
}
