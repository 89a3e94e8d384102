package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const DefaultEventsStream = "moderation-events"

// StreamAdder is satisfied by *redis.Client.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStreamEmitter appends events to a capped Redis stream.
type RedisStreamEmitter struct {
	client StreamAdder
	stream string
	maxLen int64
	logger *zerolog.Logger
}

func NewRedisStreamEmitter(client StreamAdder, stream string, maxLen int64, logger *zerolog.Logger) *RedisStreamEmitter {
	if stream == "" {
		stream = DefaultEventsStream
	}
	return &RedisStreamEmitter{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger,
	}
}

func (e *RedisStreamEmitter) Emit(ctx context.Context, event ModerationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.Error().Err(err).Msg("event marshal failed")
		return
	}

	args := &redis.XAddArgs{
		Stream: e.stream,
		Values: map[string]any{
			"payload":  string(payload),
			"decision": string(event.Decision),
			"reason":   event.Reason,
		},
	}
	if e.maxLen > 0 {
		args.MaxLen = e.maxLen
		args.Approx = true
	}

	id, err := e.client.XAdd(ctx, args).Result()
	if err != nil {
		e.logger.Error().Err(err).Str("stream", e.stream).Str("request_id", event.RequestID).Msg("event publish failed")
		return
	}

	e.logger.Debug().Str("stream", e.stream).Str("id", id).Msg("event published")
}
