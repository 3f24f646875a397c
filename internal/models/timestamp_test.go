package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339 utc", `"2024-05-17T14:30:00Z"`, time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC)},
		{"rfc3339 offset", `"2024-05-17T16:30:00+02:00"`, time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC)},
		{"zone-less with micros", `"2024-05-17T14:30:00.123456"`, time.Date(2024, 5, 17, 14, 30, 0, 123456000, time.UTC)},
		{"zone-less whole seconds", `"2024-05-17T14:30:00"`, time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC)},
		{"null", `null`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
		})
	}
}

func TestTimestamp_UnmarshalRejects(t *testing.T) {
	for _, raw := range []string{`"yesterday"`, `"2024-05-17"`, `1715956200`} {
		var ts Timestamp
		assert.Error(t, json.Unmarshal([]byte(raw), &ts), raw)
	}
}

func TestTimestamp_MarshalsRFC3339(t *testing.T) {
	rec := JoinRecord{Timestamp: NewTimestamp(time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC))}

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"timestamp":"2024-05-17T14:30:00Z"`)
}
