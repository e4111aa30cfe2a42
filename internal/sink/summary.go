package sink

import (
	"context"
	"fmt"
	"io"

	"github.com/aevon-lab/rollbar-metrics/internal/core/metrics"
)

// SummarySink totals occurrences over the whole run and prints one block per
// configured group when closed.
type SummarySink struct {
	out     io.Writer
	groups  []SummaryGroup
	records []metrics.ItemMetrics
}

func NewSummarySink(out io.Writer, groups []SummaryGroup) *SummarySink {
	return &SummarySink{out: out, groups: groups}
}

func (s *SummarySink) Write(_ context.Context, b Batch) error {
	s.records = append(s.records, b.Records...)
	return nil
}

// Close prints the totals. Nothing is printed when no record was seen.
func (s *SummarySink) Close() error {
	if len(s.records) == 0 {
		return nil
	}

	var total int64
	for _, rec := range s.records {
		total += rec.Occurrences()
	}

	if _, err := fmt.Fprintf(s.out, "Occurrences: %d\n", total); err != nil {
		return err
	}
	for _, g := range s.groups {
		envOccs := SumOccurrences(s.records, g.Environments, nil)
		if _, err := fmt.Fprintf(s.out, "Environments: %v, Levels: All, Occurrences: %d, Share: %s\n",
			g.Environments, envOccs, Share(envOccs, total)); err != nil {
			return err
		}
		if len(g.Levels) == 0 {
			continue
		}
		levelOccs := SumOccurrences(s.records, g.Environments, g.Levels)
		if _, err := fmt.Fprintf(s.out, "Environments: %v, Levels: %v, Occurrences: %d, Share: %s\n",
			g.Environments, g.Levels, levelOccs, Share(levelOccs, total)); err != nil {
			return err
		}
	}
	return nil
}

// SumOccurrences totals the occurrence counts of records whose environment is
// in environments and, when levels is non-empty, whose level is in levels.
func SumOccurrences(records []metrics.ItemMetrics, environments, levels []string) int64 {
	var sum int64
	for _, rec := range records {
		if !contains(environments, rec.Environment) {
			continue
		}
		if len(levels) > 0 && !contains(levels, rec.Level) {
			continue
		}
		sum += rec.Occurrences()
	}
	return sum
}

func contains(values []string, v *string) bool {
	if v == nil {
		return false
	}
	for _, candidate := range values {
		if candidate == *v {
			return true
		}
	}
	return false
}
