package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/povarna/pet-poison-map/internal/aggregator"
	"github.com/rs/zerolog"
)

const (
	FormatJSONL   = "jsonl"
	FormatSummary = "summary"
)

// Writer writes verdicts as JSONL and tallies them. In summary format only
// the tally is written, on Close.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	format string
	enc    *json.Encoder
	agg    *aggregator.Aggregator
	logger *zerolog.Logger
}

func NewWriter(out io.Writer, format string, logger *zerolog.Logger) (*Writer, error) {
	if format != FormatJSONL && format != FormatSummary {
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	return &Writer{
		out:    out,
		format: format,
		enc:    json.NewEncoder(out),
		agg:    aggregator.NewAggregator(logger),
		logger: logger,
	}, nil
}

func (w *Writer) Write(record OutputRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if record.Result == nil {
		w.agg.AddError()
	} else {
		w.agg.Add(*record.Result)
		if record.Expected != "" {
			w.agg.Label(*record.Result, record.Expected)
		}
	}

	if w.format != FormatJSONL {
		return nil
	}
	return w.enc.Encode(record)
}

func (w *Writer) Summary() aggregator.Summary {
	return w.agg.Summary()
}

func (w *Writer) Close() error {
	if w.format != FormatSummary {
		return nil
	}
	return WriteSummary(w.out, w.Summary())
}

func WriteSummary(out io.Writer, summary aggregator.Summary) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
