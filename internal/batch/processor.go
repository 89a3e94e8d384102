package batch

import (
	"context"
	"sync"

	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/rs/zerolog"
)

type Moderator interface {
	Execute(ctx context.Context, req models.ModerationRequest) models.ModerationResult
}

type OutputRecord struct {
	LineNumber int                      `json:"line"`
	RequestID  string                   `json:"request_id,omitempty"`
	Result     *models.ModerationResult `json:"result,omitempty"`
	Expected   models.Decision          `json:"expected,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

type Processor struct {
	moderator Moderator
	workers   int
	logger    *zerolog.Logger
}

func NewProcessor(moderator Moderator, workers int, logger *zerolog.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		moderator: moderator,
		workers:   workers,
		logger:    logger,
	}
}

// Process moderates records on a pool of workers. Results arrive in
// completion order; invalid records pass through with their error.
func (p *Processor) Process(ctx context.Context, records []InputRecord) <-chan OutputRecord {
	jobs := make(chan InputRecord)
	results := make(chan OutputRecord, p.workers)

	go func() {
		defer close(jobs)
		for _, record := range records {
			select {
			case <-ctx.Done():
				p.logger.Warn().Int("line", record.LineNumber).Msg("Stopping batch, context cancelled")
				return
			case jobs <- record:
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range jobs {
				results <- p.processOne(ctx, record)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (p *Processor) processOne(ctx context.Context, record InputRecord) OutputRecord {
	out := OutputRecord{
		LineNumber: record.LineNumber,
		RequestID:  record.Request.RequestID,
		Expected:   record.Request.Expected,
	}

	if record.Error != nil {
		out.Error = record.Error.Error()
		return out
	}

	result := p.moderator.Execute(ctx, record.Request.ModerationRequest)
	out.Result = &result
	return out
}
