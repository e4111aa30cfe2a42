// Package sink renders flattened item records: CSV files, console tables,
// summaries, JSON dumps and PostgreSQL rows.
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aevon-lab/rollbar-metrics/internal/core/metrics"
	"github.com/aevon-lab/rollbar-metrics/internal/core/storage"
	"github.com/aevon-lab/rollbar-metrics/internal/rollbar"
)

// Sink types accepted in report definitions.
const (
	TypeCSV      = "csv"
	TypeTable    = "table"
	TypeSummary  = "summary"
	TypeJSON     = "json"
	TypePostgres = "postgres"
)

// Batch is the output of one query: the records of one project over one
// window.
type Batch struct {
	Report  string
	RunID   string
	Project rollbar.Project
	Window  metrics.Window
	Records []metrics.ItemMetrics
}

// Sink consumes batches in the order the runner produces them.
// Close flushes anything buffered and releases resources.
type Sink interface {
	Write(ctx context.Context, b Batch) error
	Close() error
}

// Spec configures one sink of a report definition.
type Spec struct {
	Type string `yaml:"type" validate:"required,oneof=csv table summary json postgres"`

	// csv
	Path           string `yaml:"path"`
	Layout         string `yaml:"layout" validate:"omitempty,oneof=items occurrences"`
	CRLF           bool   `yaml:"crlf"`
	RotateExisting bool   `yaml:"rotate_existing"`

	// table
	TopN   int    `yaml:"top_n" validate:"gte=0"`
	SortBy string `yaml:"sort_by" validate:"omitempty,oneof=occurrence_count ip_address_count counter"`

	// summary
	Groups []SummaryGroup `yaml:"groups" validate:"dive"`
}

// SummaryGroup selects the records a summary line totals. An empty Levels
// means every level.
type SummaryGroup struct {
	Environments []string `yaml:"environments" validate:"required,min=1"`
	Levels       []string `yaml:"levels"`
}

// Deps carries the shared resources sinks are built from.
type Deps struct {
	Out       io.Writer
	OutputDir string
	Store     storage.ItemMetricsStore
	Now       func() time.Time
}

// New builds the sink described by spec.
func New(spec Spec, deps Deps) (Sink, error) {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	switch spec.Type {
	case TypeCSV:
		return NewCSVSink(spec, deps.OutputDir, deps.Now)
	case TypeTable:
		return NewTableSink(deps.Out, spec.TopN, spec.SortBy), nil
	case TypeSummary:
		return NewSummarySink(deps.Out, spec.Groups), nil
	case TypeJSON:
		return NewJSONSink(deps.Out), nil
	case TypePostgres:
		if deps.Store == nil {
			return nil, fmt.Errorf("postgres sink requires database.enabled")
		}
		return NewPostgresSink(deps.Store), nil
	default:
		return nil, fmt.Errorf("unsupported sink type %q", spec.Type)
	}
}
