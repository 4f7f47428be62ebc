package utils

import "time"

// FormatTimestamp renders a time for storage. Nanosecond precision is
// kept so repeated save/load cycles round-trip exactly.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp parses a stored timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// ParseTimestampOrZero parses a stored timestamp, returning the zero
// time on malformed input. Repository reads use this so one bad
// timestamp does not fail a whole document load.
func ParseTimestampOrZero(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
