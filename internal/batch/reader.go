package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/rs/zerolog"
)

const maxLineBytes = 1 << 20

// BatchRequest is one JSONL input line. Expected is an optional reviewer
// label used to measure false positives.
type BatchRequest struct {
	models.ModerationRequest
	Expected models.Decision `json:"expected,omitempty"`
}

type InputRecord struct {
	LineNumber int
	Request    BatchRequest
	Error      error
}

type Reader struct {
	r      io.Reader
	logger *zerolog.Logger
}

func NewReader(r io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{
		r:      r,
		logger: logger,
	}
}

// ReadAll streams records until EOF or until ctx is cancelled. Blank lines
// are skipped but still counted for line numbers.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	out := make(chan InputRecord)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r.r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

		lineNumber := 0
		for scanner.Scan() {
			lineNumber++

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			record := parseLine(lineNumber, line)
			if record.Error != nil {
				r.logger.Warn().Err(record.Error).Int("line", lineNumber).Msg("Invalid input record")
			}

			select {
			case <-ctx.Done():
				return
			case out <- record:
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error().Err(err).Int("line", lineNumber+1).Msg("Failed to read input")
			select {
			case <-ctx.Done():
			case out <- InputRecord{LineNumber: lineNumber + 1, Error: err}:
			}
		}
	}()

	return out
}

func parseLine(lineNumber int, line string) InputRecord {
	record := InputRecord{LineNumber: lineNumber}

	if err := json.Unmarshal([]byte(line), &record.Request); err != nil {
		record.Error = fmt.Errorf("line %d: %w", lineNumber, err)
		return record
	}

	switch record.Request.Field {
	case models.FieldTitle, models.FieldComment:
	case "":
		record.Request.Field = models.FieldComment
	default:
		record.Error = fmt.Errorf("line %d: unknown field %q", lineNumber, record.Request.Field)
		return record
	}

	switch record.Request.Expected {
	case "", models.DecisionAllow, models.DecisionReject:
	default:
		record.Error = fmt.Errorf("line %d: unknown expected decision %q", lineNumber, record.Request.Expected)
		return record
	}

	if record.Request.RequestID == "" {
		record.Request.RequestID = fmt.Sprintf("line-%d", lineNumber)
	}

	return record
}
