package events

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"
)

type PubSubEmitter struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	logger *zerolog.Logger
}

func NewPubSubEmitter(ctx context.Context, projectID, topicID string, logger *zerolog.Logger) (*PubSubEmitter, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &PubSubEmitter{
		client: client,
		topic:  client.Topic(topicID),
		logger: logger,
	}, nil
}

// Emit publishes without waiting for the server ack; failures are logged.
func (e *PubSubEmitter) Emit(ctx context.Context, event ModerationEvent) {
	b, err := json.Marshal(event)
	if err != nil {
		e.logger.Error().Err(err).Msg("pubsub marshal failed")
		return
	}

	res := e.topic.Publish(context.WithoutCancel(ctx), &pubsub.Message{
		Data: b,
		Attributes: map[string]string{
			"field":  string(event.Field),
			"reason": event.Reason,
		},
	})

	go func() {
		if _, err := res.Get(context.Background()); err != nil {
			e.logger.Error().Err(err).Str("request_id", event.RequestID).Msg("pubsub publish failed")
		}
	}()
}

// Close flushes pending messages.
func (e *PubSubEmitter) Close() error {
	e.topic.Stop()
	return e.client.Close()
}
