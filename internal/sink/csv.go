package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aevon-lab/rollbar-metrics/internal/core/metrics"
)

// CSV layouts.
const (
	LayoutItems       = "items"
	LayoutOccurrences = "occurrences"
)

// Absent is written in place of a field the response did not carry.
const Absent = "nothing"

const defaultCSVPath = "results.csv"

var (
	itemsHeader = []string{
		"project_id", "project_name", "start_time_unix", "end_time_unix",
		"id", "counter", "level", "status", "environment",
		"occurrence_count", "ip_address_count", "assigned_user",
	}
	occurrencesHeader = []string{
		"Name", "Id", "Environment", "Level", "OccurrenceCount", "StartTime", "EndTime",
	}
)

// CSVSink appends one row per record to a single file. The header is written
// once, when the file is created.
type CSVSink struct {
	path   string
	layout string
	file   *os.File
	w      *csv.Writer
	rows   int
}

// NewCSVSink creates the output file. An existing file is renamed to
// "<unix>_<name>" first when spec.RotateExisting is set, and truncated
// otherwise.
func NewCSVSink(spec Spec, outputDir string, now func() time.Time) (*CSVSink, error) {
	layout := spec.Layout
	if layout == "" {
		layout = LayoutItems
	}
	path := spec.Path
	if path == "" {
		path = defaultCSVPath
	}
	if !filepath.IsAbs(path) && outputDir != "" {
		path = filepath.Join(outputDir, path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	if spec.RotateExisting {
		if err := rotate(path, now()); err != nil {
			return nil, err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create csv file: %w", err)
	}

	w := csv.NewWriter(f)
	w.UseCRLF = spec.CRLF

	header := itemsHeader
	if layout == LayoutOccurrences {
		header = occurrencesHeader
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	slog.Info("[CSV] Output file created", "path", path, "layout", layout)
	return &CSVSink{path: path, layout: layout, file: f, w: w}, nil
}

func rotate(path string, now time.Time) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	backup := filepath.Join(filepath.Dir(path), fmt.Sprintf("%d_%s", now.Unix(), filepath.Base(path)))
	if err := os.Rename(path, backup); err != nil {
		return fmt.Errorf("failed to back up %s: %w", path, err)
	}
	slog.Info("[CSV] Existing output backed up", "path", path, "backup", backup)
	return nil
}

// Path returns the file being written.
func (s *CSVSink) Path() string {
	return s.path
}

// Write appends the batch and flushes, so rows already written survive a
// later failure.
func (s *CSVSink) Write(_ context.Context, b Batch) error {
	for _, rec := range b.Records {
		var row []string
		if s.layout == LayoutOccurrences {
			row = occurrencesRow(rec)
		} else {
			row = itemsRow(rec)
		}
		if err := s.w.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv rows: %w", err)
	}
	s.rows += len(b.Records)
	return nil
}

func (s *CSVSink) Close() error {
	s.w.Flush()
	flushErr := s.w.Error()
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("failed to close csv file: %w", err)
	}
	slog.Info("[CSV] Output file closed", "path", s.path, "rows", s.rows)
	return flushErr
}

func itemsRow(m metrics.ItemMetrics) []string {
	return []string{
		projectID(m.ProjectID),
		m.ProjectName,
		strconv.FormatInt(m.StartTimeUnix, 10),
		strconv.FormatInt(m.EndTimeUnix, 10),
		metrics.FormatInt(m.ID, Absent),
		metrics.FormatInt(m.Counter, Absent),
		metrics.FormatString(m.Level, Absent),
		metrics.FormatString(m.Status, Absent),
		metrics.FormatString(m.Environment, Absent),
		metrics.FormatInt(m.OccurrenceCount, Absent),
		metrics.FormatInt(m.IPAddressCount, Absent),
		metrics.FormatInt(m.AssignedUserID, Absent),
	}
}

func occurrencesRow(m metrics.ItemMetrics) []string {
	return []string{
		m.ProjectName,
		projectID(m.ProjectID),
		metrics.FormatString(m.Environment, Absent),
		metrics.FormatString(m.Level, Absent),
		metrics.FormatInt(m.OccurrenceCount, Absent),
		strconv.FormatInt(m.StartTimeUnix, 10),
		strconv.FormatInt(m.EndTimeUnix, 10),
	}
}

// projectID renders zero, the id of a project addressed only by its token,
// as absent.
func projectID(id int64) string {
	if id == 0 {
		return Absent
	}
	return strconv.FormatInt(id, 10)
}
