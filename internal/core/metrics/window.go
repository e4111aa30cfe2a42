package metrics

import (
	"fmt"
	"strconv"
	"time"
)

// Window is a half-open query range [Start, End) in Unix seconds.
type Window struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// ParseDuration parses Go duration syntax (e.g. "12h") plus "Xd" for days.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("duration must not be empty")
	}

	// Handle "d" suffix (days), which time.ParseDuration lacks.
	if len(s) > 1 && s[len(s)-1] == 'd' {
		days, err := strconv.Atoi(s[:len(s)-1])
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		if days <= 0 {
			return 0, fmt.Errorf("duration must be positive, got %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", s)
	}
	return d, nil
}

// SplitWindow cuts [start, end) into consecutive windows of batch seconds.
// The last window is clipped to end. batch <= 0 returns the whole range.
func SplitWindow(start, end int64, batch time.Duration) ([]Window, error) {
	if start >= end {
		return nil, fmt.Errorf("%w (start=%d end=%d)", ErrInvalidWindow, start, end)
	}
	step := int64(batch / time.Second)
	if step <= 0 {
		return []Window{{Start: start, End: end}}, nil
	}

	windows := make([]Window, 0, (end-start)/step+1)
	for from := start; from < end; from += step {
		to := from + step
		if to > end {
			to = end
		}
		windows = append(windows, Window{Start: from, End: to})
	}
	return windows, nil
}
