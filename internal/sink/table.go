package sink

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/aevon-lab/rollbar-metrics/internal/core/metrics"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

const (
	defaultTopN      = 20
	maxTitleRunes    = 20
	defaultSortBy    = metrics.FieldOccurrenceCount
	tablePlaceholder = ""
)

var tableHeader = []string{
	"project_name", "title", "counter", "level", "status", "environment",
	"assigned_user_id", "occurrence_count", "ip_address_count", "share",
}

// TableSink prints the top records of every batch as a console table.
type TableSink struct {
	out    io.Writer
	topN   int
	sortBy string
}

// NewTableSink creates a table sink. topN <= 0 means 20; an empty sortBy
// means occurrence_count.
func NewTableSink(out io.Writer, topN int, sortBy string) *TableSink {
	if topN <= 0 {
		topN = defaultTopN
	}
	if sortBy == "" {
		sortBy = defaultSortBy
	}
	return &TableSink{out: out, topN: topN, sortBy: sortBy}
}

func (s *TableSink) Write(_ context.Context, b Batch) error {
	if len(b.Records) == 0 {
		return nil
	}

	var total int64
	for _, rec := range b.Records {
		total += rec.Occurrences()
	}

	top := TopN(b.Records, s.topN, s.sortBy)

	if _, err := fmt.Fprintf(s.out, "%s [%d, %d)\n", b.Project.Name, b.Window.Start, b.Window.End); err != nil {
		return fmt.Errorf("failed to write table title: %w", err)
	}

	table := tablewriter.NewWriter(s.out)
	table.SetHeader(tableHeader)
	table.SetAutoFormatHeaders(false)
	for _, rec := range top {
		table.Append([]string{
			rec.ProjectName,
			truncateRunes(metrics.FormatString(rec.Title, tablePlaceholder), maxTitleRunes),
			metrics.FormatInt(rec.Counter, tablePlaceholder),
			metrics.FormatString(rec.Level, tablePlaceholder),
			metrics.FormatString(rec.Status, tablePlaceholder),
			metrics.FormatString(rec.Environment, tablePlaceholder),
			metrics.FormatInt(rec.AssignedUserID, tablePlaceholder),
			metrics.FormatInt(rec.OccurrenceCount, tablePlaceholder),
			metrics.FormatInt(rec.IPAddressCount, tablePlaceholder),
			Share(rec.Occurrences(), total),
		})
	}
	table.Render()

	_, err := fmt.Fprintln(s.out)
	return err
}

func (s *TableSink) Close() error { return nil }

// TopN returns the first n records ordered by field, largest first. Records
// with equal keys keep their input order; records missing the field sort
// last. The input slice is not modified.
func TopN(records []metrics.ItemMetrics, n int, field string) []metrics.ItemMetrics {
	sorted := make([]metrics.ItemMetrics, len(records))
	copy(sorted, records)

	key := func(m metrics.ItemMetrics) *int64 {
		switch field {
		case metrics.FieldIPAddressCount:
			return m.IPAddressCount
		case "counter":
			return m.Counter
		default:
			return m.OccurrenceCount
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := key(sorted[i]), key(sorted[j])
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a > *b
	})

	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Share renders part as a percentage of total with two decimals.
func Share(part, total int64) string {
	if total == 0 {
		return "0.00%"
	}
	pct := decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total))
	return pct.StringFixed(2) + "%"
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
