package errors

import (
	"fmt"
)

// Operation labels used in TransportError.Op.
const (
	OpListProjects      = "list_projects"
	OpListAccessTokens  = "list_access_tokens"
	OpOccurrenceMetrics = "occurrence_metrics"
	OpGetItem           = "get_item"
)

// TransportError reports a failed call to the remote API: a non-2xx status,
// a non-zero envelope err, or a network fault (StatusCode == 0).
// It is scoped to one project and never fatal to a run.
type TransportError struct {
	Op         string
	Project    string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s failed for project %q", e.Op, e.Project)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that is not shaped the way the caller
// needs it (missing keys, wrong value types, invalid JSON).
type DecodeError struct {
	Op      string
	Project string
	Path    string // e.g. "result.timepoints[0].metrics_rows"
	Err     error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("malformed %s response", e.Op)
	if e.Project != "" {
		msg += fmt.Sprintf(" for project %q", e.Project)
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }
