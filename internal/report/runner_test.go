package report_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	apperr "github.com/aevon-lab/rollbar-metrics/internal/core/errors"
	"github.com/aevon-lab/rollbar-metrics/internal/core/metrics"
	reportmocks "github.com/aevon-lab/rollbar-metrics/internal/mocks/report"
	"github.com/aevon-lab/rollbar-metrics/internal/report"
	"github.com/aevon-lab/rollbar-metrics/internal/rollbar"
	"github.com/aevon-lab/rollbar-metrics/internal/rollbartest"
	"github.com/aevon-lab/rollbar-metrics/internal/sink"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const runID = "6f1c1d1e-8a40-4b5e-9a3b-2f7c3d9e0a11"

// recordingSink keeps every batch it is given.
type recordingSink struct {
	batches  []sink.Batch
	writeErr error
	closed   bool
}

func (s *recordingSink) Write(_ context.Context, b sink.Batch) error {
	s.batches = append(s.batches, b)
	return s.writeErr
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

func openInto(s sink.Sink) report.SinkOpener {
	return func(sink.Spec) (sink.Sink, error) { return s, nil }
}

func definition(t *testing.T, batch string, enrich bool) report.Definition {
	t.Helper()
	def := report.Definition{
		Name:    "test",
		Window:  "3d",
		Batch:   batch,
		GroupBy: []string{metrics.FieldEnvironment, metrics.FieldItemID},
		Levels:  []string{metrics.LevelError},
		Enrich:  enrich,
		Sinks:   []sink.Spec{{Type: sink.TypeTable}},
	}
	require.NoError(t, def.Prepare())
	return def
}

func rawResult(t *testing.T, body string) *metrics.RawMetricsResult {
	t.Helper()
	var raw metrics.RawMetricsResult
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return &raw
}

func TestRunner_TransportFailureForOneProjectContinues(t *testing.T) {
	client := reportmocks.NewMetricsClient(t)
	a := rollbar.Project{ID: 1, Name: "A", Token: "tok-a"}
	b := rollbar.Project{ID: 2, Name: "B", Token: "tok-b"}

	client.EXPECT().OccurrenceMetrics(mock.Anything, a, mock.Anything).
		Return(nil, &apperr.TransportError{Op: apperr.OpOccurrenceMetrics, Project: "A", StatusCode: http.StatusForbidden}).Once()
	client.EXPECT().OccurrenceMetrics(mock.Anything, b, mock.Anything).
		Return(rawResult(t, `{"timepoints":[{"metrics_rows":[[{"field":"environment","value":"production"},{"field":"occurrence_count","value":4}]]}]}`), nil).Once()

	out := &recordingSink{}
	stats, err := report.NewRunner(client, runID, openInto(out)).
		Run(context.Background(), definition(t, "", false), []rollbar.Project{a, b}, 0, 3*86400)
	require.NoError(t, err)

	require.Equal(t, report.Stats{Projects: 2, Windows: 2, Records: 1, Failures: 1}, stats)
	require.Len(t, out.batches, 1)
	require.Equal(t, "B", out.batches[0].Project.Name)
	require.Equal(t, runID, out.batches[0].RunID)
	require.Equal(t, int64(2), out.batches[0].Records[0].ProjectID)
	require.True(t, out.closed)
}

func TestRunner_DecodeFailureIsIsolated(t *testing.T) {
	client := reportmocks.NewMetricsClient(t)
	a := rollbar.Project{ID: 1, Name: "A"}

	client.EXPECT().OccurrenceMetrics(mock.Anything, a, mock.Anything).
		Return(&metrics.RawMetricsResult{}, nil).Once()

	out := &recordingSink{}
	stats, err := report.NewRunner(client, runID, openInto(out)).
		Run(context.Background(), definition(t, "", false), []rollbar.Project{a}, 0, 100)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Failures)
	require.Empty(t, out.batches)
}

func TestRunner_BatchesRestartForEveryProject(t *testing.T) {
	client := reportmocks.NewMetricsClient(t)
	projects := []rollbar.Project{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}

	var seen []string
	client.EXPECT().OccurrenceMetrics(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, p rollbar.Project, spec metrics.QuerySpec) (*metrics.RawMetricsResult, error) {
			seen = append(seen, fmt.Sprintf("%s:%d-%d", p.Name, spec.StartTime, spec.EndTime))
			return &metrics.RawMetricsResult{Timepoints: []metrics.Timepoint{{MetricsRows: []metrics.RowGroup{}}}}, nil
		}).Times(6)

	out := &recordingSink{}
	stats, err := report.NewRunner(client, runID, openInto(out)).
		Run(context.Background(), definition(t, "1d", false), projects, 0, 3*86400)
	require.NoError(t, err)

	require.Equal(t, []string{
		"A:0-86400", "A:86400-172800", "A:172800-259200",
		"B:0-86400", "B:86400-172800", "B:172800-259200",
	}, seen)
	require.Equal(t, 6, stats.Windows)
	require.Len(t, out.batches, 6, "empty windows still reach the sinks")
}

func TestRunner_EnrichmentIsBestEffortAndCached(t *testing.T) {
	client := reportmocks.NewMetricsClient(t)
	a := rollbar.Project{ID: 1, Name: "A", Token: "tok-a"}
	user := int64(77)

	client.EXPECT().OccurrenceMetrics(mock.Anything, a, mock.Anything).
		Return(rawResult(t, `{"timepoints":[{"metrics_rows":[
			[{"field":"item_id","value":10},{"field":"occurrence_count","value":1}],
			[{"field":"item_id","value":10},{"field":"occurrence_count","value":2}],
			[{"field":"item_id","value":11},{"field":"occurrence_count","value":3}],
			[{"field":"environment","value":"qa"}]
		]}]}`), nil).Once()
	client.EXPECT().GetItem(mock.Anything, a, int64(10)).
		Return(&rollbar.ItemDetail{Title: "boom", AssignedUserID: &user}, nil).Once()
	client.EXPECT().GetItem(mock.Anything, a, int64(11)).
		Return(nil, &apperr.TransportError{Op: apperr.OpGetItem, Project: "A", StatusCode: http.StatusNotFound}).Once()

	out := &recordingSink{}
	stats, err := report.NewRunner(client, runID, openInto(out)).
		Run(context.Background(), definition(t, "", true), []rollbar.Project{a}, 0, 100)
	require.NoError(t, err)
	require.Equal(t, 1, stats.EnrichFailures)
	require.Equal(t, 0, stats.Failures)

	records := out.batches[0].Records
	require.Len(t, records, 4)
	require.Equal(t, "boom", *records[0].Title)
	require.Equal(t, int64(77), *records[1].AssignedUserID)
	require.Nil(t, records[2].Title)
	require.Nil(t, records[3].Title)
}

func TestRunner_SinkFailuresAreCounted(t *testing.T) {
	client := reportmocks.NewMetricsClient(t)
	a := rollbar.Project{ID: 1, Name: "A"}
	client.EXPECT().OccurrenceMetrics(mock.Anything, a, mock.Anything).
		Return(&metrics.RawMetricsResult{Timepoints: []metrics.Timepoint{{MetricsRows: []metrics.RowGroup{}}}}, nil).Once()

	out := &recordingSink{writeErr: errors.New("disk full")}
	stats, err := report.NewRunner(client, runID, openInto(out)).
		Run(context.Background(), definition(t, "", false), []rollbar.Project{a}, 0, 100)
	require.NoError(t, err)
	require.Equal(t, 1, stats.SinkFailures)
}

func TestRunner_RejectsReversedWindow(t *testing.T) {
	client := reportmocks.NewMetricsClient(t)
	_, err := report.NewRunner(client, runID, openInto(&recordingSink{})).
		Run(context.Background(), definition(t, "", false), []rollbar.Project{{Name: "A"}}, 200, 100)
	require.ErrorIs(t, err, metrics.ErrInvalidWindow)
}

func TestRunner_SinkOpenFailureAborts(t *testing.T) {
	client := reportmocks.NewMetricsClient(t)
	open := func(sink.Spec) (sink.Sink, error) { return nil, errors.New("no such dir") }

	_, err := report.NewRunner(client, runID, open).
		Run(context.Background(), definition(t, "", false), []rollbar.Project{{Name: "A"}}, 0, 100)
	require.ErrorContains(t, err, "no such dir")
}

func TestRunner_StopsWhenCancelled(t *testing.T) {
	client := reportmocks.NewMetricsClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := &recordingSink{}
	_, err := report.NewRunner(client, runID, openInto(out)).
		Run(ctx, definition(t, "", false), []rollbar.Project{{Name: "A"}}, 0, 100)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, out.closed)
}

func TestRunner_EndToEndAgainstFakeAPI(t *testing.T) {
	srv := rollbartest.NewServer(t, rollbartest.Fixture{
		MetricsStatus: map[string]int{"tok-a": http.StatusForbidden},
		Metrics: map[string]string{
			"tok-b": `{"timepoints":[{"metrics_rows":[[{"field":"environment","value":"production"},{"field":"item_level","value":"error"},{"field":"occurrence_count","value":5}]]}]}`,
		},
	})
	client := rollbar.NewClient(srv.URL, time.Second)
	projects := []rollbar.Project{{ID: 1, Name: "A", Token: "tok-a"}, {ID: 2, Name: "B", Token: "tok-b"}}

	out := &recordingSink{}
	stats, err := report.NewRunner(client, runID, openInto(out)).
		Run(context.Background(), definition(t, "", false), projects, 1000, 2000)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Failures)
	require.Equal(t, 1, stats.Records)

	queries := srv.MetricsQueries(t)
	require.Len(t, queries, 2)
	for _, q := range queries {
		require.Equal(t, int64(1000), q.StartTime)
		require.Equal(t, int64(2000), q.EndTime)
		require.Equal(t, []metrics.Filter{{Field: "item_level", Values: []string{"error"}, Operator: "eq"}}, q.Filters)
	}
}
