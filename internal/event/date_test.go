package event

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		header string
		want   time.Time
	}{
		{"Monday, October 14", time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)},
		{"  Tue,   Oct 15 ", time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)},
		{"October 16th", time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)},
		{"Oct 2", time.Date(2026, time.October, 2, 0, 0, 0, 0, time.UTC)},
		{"Saturday, January 3, 2027", time.Date(2027, time.January, 3, 0, 0, 0, 0, time.UTC)},
		{"Nov 1st, 2026", time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)},
		{"10/14/2026", time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)},
		{"2026-12-31", time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{"This Weekend", time.Time{}},
		{"", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got := ParseDate(tt.header, now)
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}
