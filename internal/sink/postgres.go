package sink

import (
	"context"
	"fmt"

	"github.com/aevon-lab/rollbar-metrics/internal/core/storage"
	"github.com/google/uuid"
)

// PostgresSink stores every batch in item_metrics, one transaction per batch.
type PostgresSink struct {
	store storage.ItemMetricsStore
}

func NewPostgresSink(store storage.ItemMetricsStore) *PostgresSink {
	return &PostgresSink{store: store}
}

func (s *PostgresSink) Write(ctx context.Context, b Batch) error {
	runID, err := uuid.Parse(b.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", b.RunID, err)
	}
	return s.store.SaveItemMetrics(ctx, storage.RunRef{RunID: runID, Report: b.Report}, b.Records)
}

// Close is a no-op; the database handle belongs to the caller.
func (s *PostgresSink) Close() error { return nil }
