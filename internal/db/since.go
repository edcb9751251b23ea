package db

import (
	"fmt"
	"strings"
	"time"
)

// ParseSince parses a window like "2h", "24h", "7d", or an ISO date "2026-02-17" and
// returns its start relative to now.
func ParseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}

	if strings.HasSuffix(s, "d") {
		var days int
		if _, err := fmt.Sscanf(strings.TrimSuffix(s, "d"), "%d", &days); err == nil {
			return now.Add(-time.Duration(days) * 24 * time.Hour), nil
		}
	}
	if strings.HasSuffix(s, "h") {
		var hours int
		if _, err := fmt.Sscanf(strings.TrimSuffix(s, "h"), "%d", &hours); err == nil {
			return now.Add(-time.Duration(hours) * time.Hour), nil
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse since %q: use formats like '2h', '24h', '7d', or '2026-02-17'", s)
}

// FilterSince keeps incidents logged at or after start. A zero start keeps everything.
func FilterSince(incidents []Incident, start time.Time) []Incident {
	if start.IsZero() {
		return incidents
	}
	out := incidents[:0:0]
	for _, inc := range incidents {
		if !inc.Timestamp.Before(start) {
			out = append(out, inc)
		}
	}
	return out
}
