package metrics

import (
	"errors"
	"fmt"
)

// ErrInvalidWindow is returned when a query window does not satisfy start < end.
var ErrInvalidWindow = errors.New("start_time must be before end_time")

// QueryOptions names the dimensions, filters and aggregates of a query.
// Field names are not interpreted; a typo surfaces as a remote failure.
type QueryOptions struct {
	GroupBy      []string
	Levels       []string
	Statuses     []string
	Environments []string
	Aggregates   []Aggregate
	Granularity  string
}

// BuildQuery assembles the payload for the window [start, end) in Unix seconds.
// It has no side effects. Filters are only emitted for dimensions that have
// values, in the order item_level, item_status, environment.
func BuildQuery(start, end int64, opts QueryOptions) (QuerySpec, error) {
	if start >= end {
		return QuerySpec{}, fmt.Errorf("%w (start=%d end=%d)", ErrInvalidWindow, start, end)
	}

	spec := QuerySpec{
		StartTime:   start,
		EndTime:     end,
		GroupBy:     append([]string(nil), opts.GroupBy...),
		Granularity: opts.Granularity,
	}

	for _, f := range []struct {
		field  string
		values []string
	}{
		{FieldItemLevel, opts.Levels},
		{FieldItemStatus, opts.Statuses},
		{FieldEnvironment, opts.Environments},
	} {
		values := uniqueStrings(f.values)
		if len(values) == 0 {
			continue
		}
		spec.Filters = append(spec.Filters, Filter{
			Field:    f.field,
			Values:   values,
			Operator: OperatorEq,
		})
	}

	if len(opts.Aggregates) > 0 {
		spec.Aggregates = append([]Aggregate(nil), opts.Aggregates...)
	}

	return spec, nil
}

// CountDistinct returns a count_distinct aggregate over field.
func CountDistinct(field, alias string) Aggregate {
	return Aggregate{Field: field, Function: FunctionCountDistinct, Alias: alias}
}

// uniqueStrings drops repeated values, keeping first-seen order.
func uniqueStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
