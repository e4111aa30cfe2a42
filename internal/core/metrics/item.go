package metrics

import (
	"fmt"
	"strconv"
)

// ItemMetrics is the flattened view of one row group.
// Pointer fields are nil when the response did not carry them; they are
// never defaulted.
type ItemMetrics struct {
	ProjectID     int64  `json:"project_id"`
	ProjectName   string `json:"project_name"`
	StartTimeUnix int64  `json:"start_time_unix"`
	EndTimeUnix   int64  `json:"end_time_unix"`

	ID              *int64  `json:"id"`
	Title           *string `json:"title"`
	Counter         *int64  `json:"counter"`
	Level           *string `json:"level"`
	Status          *string `json:"status"`
	Environment     *string `json:"environment"`
	AssignedUserID  *int64  `json:"assigned_user_id"`
	OccurrenceCount *int64  `json:"occurrence_count"`
	IPAddressCount  *int64  `json:"ip_address_count"`
}

// RecordContext carries the per-query values stamped on every record.
type RecordContext struct {
	ProjectID     int64
	ProjectName   string
	StartTimeUnix int64
	EndTimeUnix   int64
}

func (m ItemMetrics) String() string {
	return fmt.Sprintf("id=%s title=%s counter=%s level=%s status=%s environment=%s occurrence_count=%s ip_address_count=%s",
		FormatInt(m.ID, "None"),
		FormatString(m.Title, "None"),
		FormatInt(m.Counter, "None"),
		FormatString(m.Level, "None"),
		FormatString(m.Status, "None"),
		FormatString(m.Environment, "None"),
		FormatInt(m.OccurrenceCount, "None"),
		FormatInt(m.IPAddressCount, "None"),
	)
}

// Occurrences returns the occurrence count, or 0 when absent.
func (m ItemMetrics) Occurrences() int64 {
	if m.OccurrenceCount == nil {
		return 0
	}
	return *m.OccurrenceCount
}

// FormatInt renders v, or placeholder when v is nil.
func FormatInt(v *int64, placeholder string) string {
	if v == nil {
		return placeholder
	}
	return strconv.FormatInt(*v, 10)
}

// FormatString renders v, or placeholder when v is nil.
func FormatString(v *string, placeholder string) string {
	if v == nil {
		return placeholder
	}
	return *v
}
