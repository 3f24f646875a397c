package models

import (
	"bytes"
	"fmt"
	"time"
)

// legacyLayout matches timestamps without a zone offset, as found in older
// bot_data.json files ("2024-05-17T14:30:00.123456"). The fraction is
// optional.
const legacyLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a time.Time that also decodes zone-less timestamps. Those are
// read as UTC. It always encodes as RFC 3339.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalJSON encodes t as RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.Time.MarshalJSON()
}

// UnmarshalJSON accepts RFC 3339 and the zone-less legacy layout.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp %s is not a JSON string", data)
	}
	raw := string(data[1 : len(data)-1])

	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse(legacyLayout, raw)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}
