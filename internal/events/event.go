package events

import (
	"context"
	"time"

	"github.com/povarna/pet-poison-map/internal/models"
)

// ModerationEvent describes one moderation decision. It never carries the
// submitted text.
type ModerationEvent struct {
	Timestamp string          `json:"timestamp"` // RFC3339
	RequestID string          `json:"request_id"`
	Field     models.Field    `json:"field"`
	Policy    string          `json:"policy"`
	Decision  models.Decision `json:"decision"`
	Reason    string          `json:"reason"`
	Rule      string          `json:"rule"`
	LatencyMs int64           `json:"latency_ms"`
}

type Emitter interface {
	Emit(ctx context.Context, event ModerationEvent)
}

func NewModerationEvent(result models.ModerationResult, latency time.Duration) ModerationEvent {
	return ModerationEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: result.RequestID,
		Field:     result.Field,
		Policy:    result.Policy,
		Decision:  result.Decision(),
		Reason:    string(result.Verdict.Reason),
		Rule:      result.Verdict.Rule,
		LatencyMs: latency.Milliseconds(),
	}
}
