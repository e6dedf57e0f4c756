package runpod

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayout matches the provider's textual timestamp after the
// trailing zone marker has been stripped, e.g.
// "2025-11-27 17:56:21.701466089".
const timestampLayout = "2006-01-02 15:04:05.999999999"

// utcSuffix is the provider's trailing zone marker.
const utcSuffix = " +0000 UTC"

// ParseTimestamp parses a provider timestamp. All provider timestamps are
// UTC with fractional seconds and a trailing " +0000 UTC" marker.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	trimmed := strings.TrimSuffix(s, utcSuffix)
	t, err := time.ParseInLocation(timestampLayout, trimmed, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// ParseTimestampOr parses a provider timestamp, returning fallback when the
// value is absent or unparseable.
func ParseTimestampOr(s string, fallback time.Time) time.Time {
	t, err := ParseTimestamp(s)
	if err != nil {
		return fallback
	}
	return t
}
