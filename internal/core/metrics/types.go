package metrics

import "encoding/json"

// Item levels accepted by the item_level filter.
const (
	LevelDebug    = "debug"
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelError    = "error"
	LevelCritical = "critical"
)

// AllLevels lists every item level, lowest severity first.
var AllLevels = []string{LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}

// ValidLevel reports whether l is a known item level.
func ValidLevel(l string) bool {
	for _, lvl := range AllLevels {
		if lvl == l {
			return true
		}
	}
	return false
}

// Field names understood by the occurrence metrics endpoint.
const (
	FieldEnvironment     = "environment"
	FieldItemID          = "item_id"
	FieldItemTitle       = "item_title"
	FieldItemCounter     = "item_counter"
	FieldItemLevel       = "item_level"
	FieldItemStatus      = "item_status"
	FieldIPAddress       = "ip_address"
	FieldPersonID        = "person_id"
	FieldOccurrenceCount = "occurrence_count"
	FieldIPAddressCount  = "ip_address_count"
	FieldPersonCount     = "person_count"
)

const (
	OperatorEq            = "eq"
	FunctionCountDistinct = "count_distinct"
)

// QuerySpec is the wire payload of one occurrence metrics query.
// It is built once by BuildQuery and sent unchanged.
type QuerySpec struct {
	StartTime   int64       `json:"start_time"`
	EndTime     int64       `json:"end_time"`
	GroupBy     []string    `json:"group_by"`
	Filters     []Filter    `json:"filters,omitempty"`
	Aggregates  []Aggregate `json:"aggregates,omitempty"`
	Granularity string      `json:"granularity,omitempty"`
}

// Filter restricts the occurrences counted by a query.
type Filter struct {
	Field    string   `json:"field"`
	Values   []string `json:"values"`
	Operator string   `json:"operator"`
}

// Aggregate is a computed column, e.g. count_distinct(person_id) AS person_count.
type Aggregate struct {
	Field    string `json:"field" yaml:"field" validate:"required"`
	Function string `json:"function" yaml:"function" validate:"required"`
	Alias    string `json:"alias" yaml:"alias" validate:"required"`
}

// RawMetricsResult is the decoded "result" object of a metrics response.
type RawMetricsResult struct {
	Timepoints []Timepoint `json:"timepoints"`
}

// Timepoint holds the row groups of one time bucket.
// MetricsRows is nil when the key is absent and empty when there is no data.
type Timepoint struct {
	MetricsRows []RowGroup `json:"metrics_rows"`
}

// RowGroup is one item's dimension values plus its aggregates, in no
// particular order.
type RowGroup []FieldValue

// FieldValue is a single field/value pair inside a row group.
type FieldValue struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}
