package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperr "github.com/aevon-lab/rollbar-metrics/internal/core/errors"
	"github.com/aevon-lab/rollbar-metrics/internal/core/metrics"
	"github.com/aevon-lab/rollbar-metrics/internal/rollbar"
	"github.com/aevon-lab/rollbar-metrics/internal/sink"
)

// MetricsClient is the subset of the Rollbar API a run needs.
type MetricsClient interface {
	OccurrenceMetrics(ctx context.Context, project rollbar.Project, spec metrics.QuerySpec) (*metrics.RawMetricsResult, error)
	GetItem(ctx context.Context, project rollbar.Project, itemID int64) (*rollbar.ItemDetail, error)
}

// SinkOpener builds the sink for one entry of a definition's sinks list.
type SinkOpener func(spec sink.Spec) (sink.Sink, error)

// Stats summarizes one run of a definition.
type Stats struct {
	Projects       int
	Windows        int
	Records        int
	Failures       int
	EnrichFailures int
	SinkFailures   int
}

// Runner executes definitions one query at a time.
type Runner struct {
	client MetricsClient
	runID  string
	open   SinkOpener
}

func NewRunner(client MetricsClient, runID string, open SinkOpener) *Runner {
	return &Runner{client: client, runID: runID, open: open}
}

// Run queries every project over [start, end), split into the definition's
// batches, and hands each batch of records to every sink. A failed query is
// logged, counted and skipped; the run continues with the next window and the
// next project. The returned error is reserved for an invalid window, a sink
// that cannot be opened, or cancellation of ctx.
func (r *Runner) Run(ctx context.Context, def Definition, projects []rollbar.Project, start, end int64) (stats Stats, err error) {
	windows, err := metrics.SplitWindow(start, end, def.BatchSize())
	if err != nil {
		return stats, fmt.Errorf("report %q: %w", def.Name, err)
	}

	sinks, err := r.openSinks(def)
	if err != nil {
		return stats, err
	}
	defer func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				stats.SinkFailures++
				slog.Error("[Runner] Failed to close sink", "report", def.Name, "error", err)
			}
		}
	}()

	opts := def.QueryOptions()
	slog.Info("[Runner] Starting report",
		"report", def.Name,
		"run_id", r.runID,
		"projects", len(projects),
		"windows_per_project", len(windows),
		"start", start,
		"end", end,
	)

	for _, project := range projects {
		stats.Projects++
		items := make(map[int64]*rollbar.ItemDetail)

		// Every project starts again from the first window.
		for _, w := range windows {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			stats.Windows++

			records, err := r.query(ctx, project, w, opts)
			if err != nil {
				if ctx.Err() != nil {
					return stats, ctx.Err()
				}
				stats.Failures++
				logFailure(def.Name, project, w, err)
				continue
			}

			if def.Enrich {
				stats.EnrichFailures += r.enrich(ctx, project, records, items)
			}
			stats.Records += len(records)

			batch := sink.Batch{
				Report:  def.Name,
				RunID:   r.runID,
				Project: project,
				Window:  w,
				Records: records,
			}
			for _, s := range sinks {
				if err := s.Write(ctx, batch); err != nil {
					stats.SinkFailures++
					slog.Error("[Runner] Sink write failed",
						"report", def.Name,
						"project", project.Name,
						"error", err,
					)
				}
			}
		}
	}

	slog.Info("[Runner] Report finished",
		"report", def.Name,
		"projects", stats.Projects,
		"windows", stats.Windows,
		"records", stats.Records,
		"failures", stats.Failures,
		"enrich_failures", stats.EnrichFailures,
		"sink_failures", stats.SinkFailures,
	)
	return stats, nil
}

func (r *Runner) openSinks(def Definition) ([]sink.Sink, error) {
	sinks := make([]sink.Sink, 0, len(def.Sinks))
	for i, spec := range def.Sinks {
		s, err := r.open(spec)
		if err != nil {
			for _, opened := range sinks {
				opened.Close()
			}
			return nil, fmt.Errorf("report %q: sink %d (%s): %w", def.Name, i, spec.Type, err)
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}

func (r *Runner) query(ctx context.Context, project rollbar.Project, w metrics.Window, opts metrics.QueryOptions) ([]metrics.ItemMetrics, error) {
	spec, err := metrics.BuildQuery(w.Start, w.End, opts)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	raw, err := r.client.OccurrenceMetrics(ctx, project, spec)
	if err != nil {
		return nil, err
	}

	records, err := metrics.Flatten(raw, metrics.RecordContext{
		ProjectID:     project.ID,
		ProjectName:   project.Name,
		StartTimeUnix: w.Start,
		EndTimeUnix:   w.End,
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("[Runner] Window queried",
		"project", project.Name,
		"start", w.Start,
		"end", w.End,
		"records", len(records),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return records, nil
}

// enrich fills title and assigned user from the item endpoint. Lookups are
// cached per project and a failed lookup leaves the record as it was. It
// returns the number of failed lookups.
func (r *Runner) enrich(ctx context.Context, project rollbar.Project, records []metrics.ItemMetrics, cache map[int64]*rollbar.ItemDetail) int {
	failures := 0
	for i := range records {
		rec := &records[i]
		if rec.ID == nil {
			continue
		}

		detail, cached := cache[*rec.ID]
		if !cached {
			var err error
			detail, err = r.client.GetItem(ctx, project, *rec.ID)
			if err != nil {
				failures++
				slog.Warn("[Runner] Item lookup failed",
					"project", project.Name,
					"item_id", *rec.ID,
					"error", err,
				)
			}
			cache[*rec.ID] = detail
		}
		if detail == nil {
			continue
		}

		if rec.Title == nil {
			title := detail.Title
			rec.Title = &title
		}
		if detail.AssignedUserID != nil {
			assigned := *detail.AssignedUserID
			rec.AssignedUserID = &assigned
		}
	}
	return failures
}

func logFailure(report string, project rollbar.Project, w metrics.Window, err error) {
	var transportErr *apperr.TransportError
	var decodeErr *apperr.DecodeError
	switch {
	case errors.As(err, &transportErr):
		slog.Warn("[Runner] Query failed, no data for window",
			"report", report,
			"project", project.Name,
			"status", transportErr.StatusCode,
			"start", w.Start,
			"end", w.End,
			"error", err,
		)
	case errors.As(err, &decodeErr):
		slog.Error("[Runner] Malformed response, skipping window",
			"report", report,
			"project", project.Name,
			"path", decodeErr.Path,
			"start", w.Start,
			"end", w.End,
			"error", err,
		)
	default:
		slog.Error("[Runner] Query failed",
			"report", report,
			"project", project.Name,
			"error", err,
		)
	}
}
