package storage

import (
	"context"
	"errors"

	"github.com/aevon-lab/rollbar-metrics/internal/core/metrics"
	"github.com/google/uuid"
)

// ErrSchemaMissing is returned when the item_metrics table does not exist.
var ErrSchemaMissing = errors.New("item_metrics table does not exist")

// RunRef identifies the report run a batch of records belongs to.
type RunRef struct {
	RunID  uuid.UUID
	Report string
}

// ItemMetricsStore persists flattened records.
type ItemMetricsStore interface {
	// SaveItemMetrics writes every record in one transaction. Either all rows
	// of the batch are stored or none are.
	SaveItemMetrics(ctx context.Context, ref RunRef, records []metrics.ItemMetrics) error

	// CountRun returns the number of rows stored for a run.
	CountRun(ctx context.Context, runID uuid.UUID) (int64, error)
}
