package models

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// naiveLayout matches backend datetimes written without an offset.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a backend datetime. Values without an offset are UTC.
type Timestamp struct {
	time.Time
}

// At wraps t as a Timestamp.
func At(t time.Time) Timestamp { return Timestamp{Time: t} }

// ParseTimestamp accepts RFC3339 with optional fractional seconds, or the same
// layout without an offset.
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t}, nil
	}
	t, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return Timestamp{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return Timestamp{Time: t}, nil
}

// UnmarshalJSON leaves the value untouched on null.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("timestamp must be a JSON string: %s", b)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
