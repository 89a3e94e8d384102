package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/povarna/pet-poison-map/internal/models"
	goredis "github.com/redis/go-redis/v9"
)

type StreamAdder interface {
	XAdd(ctx context.Context, a *goredis.XAddArgs) *goredis.StringCmd
}

// Publish appends a moderation request to stream and returns the entry id.
func Publish(ctx context.Context, client StreamAdder, stream string, req models.ModerationRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	id, err := client.XAdd(ctx, &goredis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"payload": string(payload)},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", stream, err)
	}
	return id, nil
}
