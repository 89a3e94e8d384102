package aggregator

import (
	"sync"

	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/rs/zerolog"
)

// Summary counts batch outcomes. Reviewers use the per-rule counts to find
// rules with too many false positives.
type Summary struct {
	Total    int            `json:"total"`
	Accepted int            `json:"accepted"`
	Rejected int            `json:"rejected"`
	Errors   int            `json:"errors"`
	ByReason map[string]int `json:"by_reason"`
	ByRule   map[string]int `json:"by_rule"`
	ByField  map[string]int `json:"rejected_by_field"`

	// Filled only for records labeled with an expected decision.
	Labeled            int            `json:"labeled"`
	FalsePositives     int            `json:"false_positives"`
	FalseNegatives     int            `json:"false_negatives"`
	FalsePositiveRules map[string]int `json:"false_positive_rules"`
}

// RejectionRate is rejected over moderated records, errors excluded.
func (s Summary) RejectionRate() float64 {
	moderated := s.Accepted + s.Rejected
	if moderated == 0 {
		return 0
	}
	return float64(s.Rejected) / float64(moderated)
}

type Aggregator struct {
	mu      sync.Mutex
	summary Summary
	logger  *zerolog.Logger
}

func NewAggregator(logger *zerolog.Logger) *Aggregator {
	return &Aggregator{
		summary: Summary{
			ByReason: map[string]int{},
			ByRule:   map[string]int{},
			ByField:  map[string]int{},

			FalsePositiveRules: map[string]int{},
		},
		logger: logger,
	}
}

func (a *Aggregator) Add(result models.ModerationResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.summary.Total++
	if result.Verdict.OK {
		a.summary.Accepted++
		return
	}

	a.summary.Rejected++
	a.summary.ByReason[string(result.Verdict.Reason)]++
	a.summary.ByField[string(result.Field)]++
	if result.Verdict.Rule != "" {
		a.summary.ByRule[result.Verdict.Rule]++
	}
}

// Label compares a result with a reviewer's expected decision. A false
// positive is a rejection of text the reviewer would allow.
func (a *Aggregator) Label(result models.ModerationResult, expected models.Decision) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.summary.Labeled++
	got := result.Decision()
	switch {
	case expected == models.DecisionAllow && got == models.DecisionReject:
		a.summary.FalsePositives++
		rule := result.Verdict.Rule
		if rule == "" {
			rule = string(result.Verdict.Reason)
		}
		a.summary.FalsePositiveRules[rule]++
	case expected == models.DecisionReject && got == models.DecisionAllow:
		a.summary.FalseNegatives++
	}
}

// AddError counts a record that could not be moderated.
func (a *Aggregator) AddError() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.summary.Total++
	a.summary.Errors++
}

// Summary returns a copy safe to use after further Adds.
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := a.summary
	out.ByReason = copyCounts(a.summary.ByReason)
	out.ByRule = copyCounts(a.summary.ByRule)
	out.ByField = copyCounts(a.summary.ByField)
	out.FalsePositiveRules = copyCounts(a.summary.FalsePositiveRules)

	a.logger.
		Info().
		Int("total", out.Total).
		Int("rejected", out.Rejected).
		Int("errors", out.Errors).
		Float64("rejection_rate", out.RejectionRate()).
		Msg("aggregation complete")

	return out
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
