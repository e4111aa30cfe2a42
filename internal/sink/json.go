package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aevon-lab/rollbar-metrics/internal/core/metrics"
)

// jsonDocument is the shape written for each batch.
type jsonDocument struct {
	Report    string                `json:"report"`
	RunID     string                `json:"run_id"`
	ProjectID int64                 `json:"project_id"`
	Project   string                `json:"project"`
	Window    metrics.Window        `json:"window"`
	Records   []metrics.ItemMetrics `json:"records"`
}

// JSONSink writes one indented JSON document per batch.
type JSONSink struct {
	enc *json.Encoder
}

func NewJSONSink(out io.Writer) *JSONSink {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return &JSONSink{enc: enc}
}

func (s *JSONSink) Write(_ context.Context, b Batch) error {
	records := b.Records
	if records == nil {
		records = []metrics.ItemMetrics{}
	}
	if err := s.enc.Encode(jsonDocument{
		Report:    b.Report,
		RunID:     b.RunID,
		ProjectID: b.Project.ID,
		Project:   b.Project.Name,
		Window:    b.Window,
		Records:   records,
	}); err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}
	return nil
}

func (s *JSONSink) Close() error { return nil }
