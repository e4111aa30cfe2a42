package metrics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	apperr "github.com/aevon-lab/rollbar-metrics/internal/core/errors"
)

// setter assigns a decoded row value to one ItemMetrics attribute.
type setter func(m *ItemMetrics, raw json.RawMessage) error

// fieldSetters maps response field names to record attributes.
// Fields missing from this table are ignored so new response fields never
// break flattening.
var fieldSetters = map[string]setter{
	FieldItemID:          intSetter(func(m *ItemMetrics, v *int64) { m.ID = v }),
	FieldItemTitle:       stringSetter(func(m *ItemMetrics, v *string) { m.Title = v }),
	FieldItemCounter:     intSetter(func(m *ItemMetrics, v *int64) { m.Counter = v }),
	FieldEnvironment:     stringSetter(func(m *ItemMetrics, v *string) { m.Environment = v }),
	FieldItemLevel:       stringSetter(func(m *ItemMetrics, v *string) { m.Level = v }),
	FieldItemStatus:      stringSetter(func(m *ItemMetrics, v *string) { m.Status = v }),
	FieldOccurrenceCount: intSetter(func(m *ItemMetrics, v *int64) { m.OccurrenceCount = v }),
	FieldIPAddressCount:  intSetter(func(m *ItemMetrics, v *int64) { m.IPAddressCount = v }),
}

// KnownField reports whether field is copied onto ItemMetrics by Flatten.
func KnownField(field string) bool {
	_, ok := fieldSetters[field]
	return ok
}

// Flatten converts timepoints[0].metrics_rows into one record per row group,
// each pre-filled with rc. An empty metrics_rows is a valid zero-occurrence
// window and yields an empty slice.
func Flatten(raw *RawMetricsResult, rc RecordContext) ([]ItemMetrics, error) {
	if raw == nil {
		return nil, decodeErr(rc, "result", fmt.Errorf("result is missing"))
	}
	if len(raw.Timepoints) == 0 {
		return nil, decodeErr(rc, "result.timepoints", fmt.Errorf("no timepoints"))
	}
	rows := raw.Timepoints[0].MetricsRows
	if rows == nil {
		return nil, decodeErr(rc, "result.timepoints[0].metrics_rows", fmt.Errorf("metrics_rows is missing"))
	}

	if len(rows) == 0 {
		slog.Info("[Flatten] No rows for time range",
			"project", rc.ProjectName,
			"start_time", rc.StartTimeUnix,
			"end_time", rc.EndTimeUnix,
		)
		return []ItemMetrics{}, nil
	}

	out := make([]ItemMetrics, 0, len(rows))
	for i, group := range rows {
		im := ItemMetrics{
			ProjectID:     rc.ProjectID,
			ProjectName:   rc.ProjectName,
			StartTimeUnix: rc.StartTimeUnix,
			EndTimeUnix:   rc.EndTimeUnix,
		}
		for _, fv := range group {
			set, ok := fieldSetters[fv.Field]
			if !ok {
				continue
			}
			if err := set(&im, fv.Value); err != nil {
				return nil, decodeErr(rc,
					fmt.Sprintf("result.timepoints[0].metrics_rows[%d].%s", i, fv.Field), err)
			}
		}
		out = append(out, im)
	}
	return out, nil
}

func decodeErr(rc RecordContext, path string, err error) error {
	return &apperr.DecodeError{
		Op:      apperr.OpOccurrenceMetrics,
		Project: rc.ProjectName,
		Path:    path,
		Err:     err,
	}
}

func stringSetter(assign func(*ItemMetrics, *string)) setter {
	return func(m *ItemMetrics, raw json.RawMessage) error {
		v, err := decodeValue(raw)
		if err != nil {
			return err
		}
		switch val := v.(type) {
		case nil:
			assign(m, nil)
		case string:
			assign(m, &val)
		case json.Number:
			s := val.String()
			assign(m, &s)
		default:
			return fmt.Errorf("expected string, got %T", v)
		}
		return nil
	}
}

func intSetter(assign func(*ItemMetrics, *int64)) setter {
	return func(m *ItemMetrics, raw json.RawMessage) error {
		v, err := decodeValue(raw)
		if err != nil {
			return err
		}
		switch val := v.(type) {
		case nil:
			assign(m, nil)
		case json.Number:
			n, err := numberToInt(val.String())
			if err != nil {
				return err
			}
			assign(m, &n)
		case string:
			n, err := numberToInt(val)
			if err != nil {
				return err
			}
			assign(m, &n)
		default:
			return fmt.Errorf("expected integer, got %T", v)
		}
		return nil
	}
}

// decodeValue decodes a JSON value keeping numbers exact.
// An absent value decodes to nil.
func decodeValue(raw json.RawMessage) (interface{}, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid value: %w", err)
	}
	return v, nil
}

// numberToInt accepts integers and integral floats such as "5.0".
func numberToInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("integer %q out of range: %w", s, err)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected integer, got %q", s)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("integer %q out of range", s)
	}
	return int64(f), nil
}
