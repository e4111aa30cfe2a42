// Package report defines what a metrics run queries and where its records
// go, and runs those definitions against resolved projects.
package report

import (
	"fmt"
	"time"

	"github.com/aevon-lab/rollbar-metrics/internal/core/metrics"
	"github.com/aevon-lab/rollbar-metrics/internal/sink"
)

// Definition is one report, loaded from a YAML file.
type Definition struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`

	// Window is how far back from the end time the report looks ("30d").
	Window string `yaml:"window" validate:"required"`
	// Batch splits the window into consecutive queries ("1d"). Empty means
	// one query per project.
	Batch string `yaml:"batch"`

	GroupBy      []string            `yaml:"group_by" validate:"required,min=1"`
	Levels       []string            `yaml:"levels" validate:"dive,oneof=debug info warning error critical"`
	Statuses     []string            `yaml:"statuses"`
	Environments []string            `yaml:"environments"`
	Aggregates   []metrics.Aggregate `yaml:"aggregates" validate:"dive"`
	Granularity  string              `yaml:"granularity"`

	// Enrich looks up title and assigned user of every record with an item id.
	Enrich bool `yaml:"enrich"`

	Sinks []sink.Spec `yaml:"sinks" validate:"required,min=1,dive"`

	windowSize time.Duration
	batchSize  time.Duration
}

// Prepare validates d and parses its durations. It must succeed before the
// definition is run.
func (d *Definition) Prepare() error {
	if err := validateStruct(d); err != nil {
		return fmt.Errorf("report %q: %w", d.Name, err)
	}

	window, err := metrics.ParseDuration(d.Window)
	if err != nil {
		return fmt.Errorf("report %q: window: %w", d.Name, err)
	}
	d.windowSize = window

	d.batchSize = 0
	if d.Batch != "" {
		batch, err := metrics.ParseDuration(d.Batch)
		if err != nil {
			return fmt.Errorf("report %q: batch: %w", d.Name, err)
		}
		if batch > window {
			return fmt.Errorf("report %q: batch %s is longer than window %s", d.Name, d.Batch, d.Window)
		}
		d.batchSize = batch
	}
	return nil
}

// WindowSize is the parsed Window.
func (d *Definition) WindowSize() time.Duration { return d.windowSize }

// BatchSize is the parsed Batch, zero when the window is queried at once.
func (d *Definition) BatchSize() time.Duration { return d.batchSize }

// QueryOptions maps the definition onto the query builder's inputs.
func (d *Definition) QueryOptions() metrics.QueryOptions {
	return metrics.QueryOptions{
		GroupBy:      d.GroupBy,
		Levels:       d.Levels,
		Statuses:     d.Statuses,
		Environments: d.Environments,
		Aggregates:   d.Aggregates,
		Granularity:  d.Granularity,
	}
}
