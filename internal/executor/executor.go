package executor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/povarna/pet-poison-map/internal/events"
	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/povarna/pet-poison-map/internal/textsafety"
	"github.com/rs/zerolog"
)

//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks

// Engine validates text against a policy
type Engine interface {
	Validate(text *string, policy textsafety.Policy) textsafety.Verdict
}

// PolicySource resolves policy names from configuration
type PolicySource interface {
	Lookup(name string) (textsafety.Policy, bool)
}

// EventEmitter publishes moderation decisions
type EventEmitter interface {
	Emit(ctx context.Context, event events.ModerationEvent)
}

const fallbackPolicy = "comment"

type Executor struct {
	engine   Engine
	policies PolicySource
	emitter  EventEmitter
	logger   *zerolog.Logger
}

func NewExecutor(
	engine Engine,
	policies PolicySource,
	emitter EventEmitter,
	logger *zerolog.Logger,
) *Executor {
	return &Executor{
		engine:   engine,
		policies: policies,
		emitter:  emitter,
		logger:   logger,
	}
}

// Execute moderates one request. The result always carries a verdict; a
// rejection is also published to the emitter.
func (e *Executor) Execute(ctx context.Context, req models.ModerationRequest) models.ModerationResult {
	start := time.Now()

	id := req.RequestID
	if id == "" {
		id = uuid.NewString()
	}

	policyName, policy := e.resolvePolicy(req)

	verdict := e.engine.Validate(req.Text, policy)

	result := models.ModerationResult{
		RequestID: id,
		Field:     req.Field,
		Policy:    policyName,
		Verdict:   verdict,
	}

	latency := time.Since(start)

	if verdict.OK {
		e.logger.Debug().
			Str("requestID", id).
			Str("field", string(req.Field)).
			Str("policy", policyName).
			Msg("text accepted")
		return result
	}

	e.logger.Info().
		Str("requestID", id).
		Str("field", string(req.Field)).
		Str("policy", policyName).
		Str("reason", string(verdict.Reason)).
		Str("rule", verdict.Rule).
		Dur("latency", latency).
		Msg("text rejected")

	if e.emitter != nil {
		e.emitter.Emit(ctx, events.NewModerationEvent(result, latency))
	}

	return result
}

// Moderate validates text for a write path and returns the cleaned text to
// persist, or a *RejectionError.
func (e *Executor) Moderate(ctx context.Context, field models.Field, text string, policyName string) (string, error) {
	result := e.Execute(ctx, models.ModerationRequest{
		Field:  field,
		Text:   &text,
		Policy: policyName,
	})

	if !result.Verdict.OK {
		return "", &RejectionError{
			Field:  field,
			Reason: result.Verdict.Reason,
			Rule:   result.Verdict.Rule,
		}
	}

	return result.Verdict.CleanedText, nil
}

func (e *Executor) resolvePolicy(req models.ModerationRequest) (string, textsafety.Policy) {
	name := req.Policy
	if name == "" {
		name = string(req.Field)
	}

	if policy, ok := e.policies.Lookup(name); ok {
		return name, policy
	}

	e.logger.Warn().Str("policy", name).Msg("unknown policy, using comment policy")

	if policy, ok := e.policies.Lookup(fallbackPolicy); ok {
		return fallbackPolicy, policy
	}
	return fallbackPolicy, textsafety.CommentPolicy
}
