package events

import (
	"context"

	"github.com/rs/zerolog"
)

type LogEmitter struct {
	logger *zerolog.Logger
}

func NewLogEmitter(logger *zerolog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) Emit(ctx context.Context, event ModerationEvent) {
	e.logger.Info().
		Str("request_id", event.RequestID).
		Str("field", string(event.Field)).
		Str("policy", event.Policy).
		Str("decision", string(event.Decision)).
		Str("reason", event.Reason).
		Str("rule", event.Rule).
		Int64("latency_ms", event.LatencyMs).
		Msg("moderation event")
}
