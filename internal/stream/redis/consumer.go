package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/pet-poison-map/internal/models"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Moderator runs one moderation request.
type Moderator interface {
	Execute(ctx context.Context, req models.ModerationRequest) models.ModerationResult
}

// StreamClient is the subset of the go-redis client the consumer uses.
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *goredis.StatusCmd
	XReadGroup(ctx context.Context, a *goredis.XReadGroupArgs) *goredis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *goredis.IntCmd
	XAdd(ctx context.Context, a *goredis.XAddArgs) *goredis.StringCmd
}

var ErrMissingPayload = errors.New("missing payload field")

type Consumer struct {
	client    StreamClient
	cfg       *RedisStreamConfig
	moderator Moderator
	logger    *zerolog.Logger
}

func NewConsumer(client StreamClient, cfg *RedisStreamConfig, moderator Moderator, logger *zerolog.Logger) *Consumer {
	return &Consumer{
		client:    client,
		cfg:       cfg,
		moderator: moderator,
		logger:    logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.cfg.Stream).
		Str("group", c.cfg.Group).
		Str("consumer", c.cfg.ConsumerName).
		Str("results", c.cfg.ResultsStream).
		Msg("Consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		streams, err := c.client.XReadGroup(ctx, &goredis.XReadGroupArgs{
			Group:    c.cfg.Group,
			Consumer: c.cfg.ConsumerName,
			Streams:  []string{c.cfg.Stream, ">"},
			Count:    10,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			c.logger.Error().Err(err).Msg("Failed to read from stream")
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

func (c *Consumer) Stop() error {
	return nil
}

// process always acks: a malformed message would otherwise be redelivered
// forever.
func (c *Consumer) process(ctx context.Context, msg goredis.XMessage) {
	defer c.ack(ctx, msg.ID)

	req, err := DecodeRequest(msg.Values)
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Skipping malformed message")
		return
	}
	if req.RequestID == "" {
		req.RequestID = msg.ID
	}

	result := c.moderator.Execute(ctx, req)

	if err := c.publish(ctx, result); err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to publish result")
		return
	}

	c.logger.Debug().
		Str("id", msg.ID).
		Str("requestID", result.RequestID).
		Str("decision", string(result.Decision())).
		Msg("Message processed")
}

func (c *Consumer) publish(ctx context.Context, result models.ModerationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return c.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: c.cfg.ResultsStream,
		MaxLen: c.cfg.ResultsMaxLen,
		Approx: c.cfg.ResultsMaxLen > 0,
		Values: map[string]any{
			"payload":    string(payload),
			"request_id": result.RequestID,
			"decision":   string(result.Decision()),
		},
	}).Err()
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}

// DecodeRequest reads the JSON "payload" field of a stream entry.
func DecodeRequest(values map[string]any) (models.ModerationRequest, error) {
	payload, ok := values["payload"].(string)
	if !ok {
		return models.ModerationRequest{}, ErrMissingPayload
	}

	var req models.ModerationRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return models.ModerationRequest{}, fmt.Errorf("decode payload: %w", err)
	}

	switch req.Field {
	case models.FieldTitle, models.FieldComment:
	case "":
		req.Field = models.FieldComment
	default:
		return models.ModerationRequest{}, fmt.Errorf("unknown field %q", req.Field)
	}

	return req, nil
}
