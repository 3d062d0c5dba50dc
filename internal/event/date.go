package event

import (
	"strings"
	"time"
)

// dated header layouts carry their own year
var datedLayouts = []string{
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
}

// year-less header layouts take the year of the reference time
var yearlessLayouts = []string{
	"Monday, January 2",
	"Mon, Jan 2",
	"Monday January 2",
	"January 2",
	"Jan 2",
	"1/2",
}

// ParseDate attempts to parse a day header such as "Monday, October 14" into a date.
// Headers without a year use now's year. Returns time.Time{} (zero value) if parsing fails.
func ParseDate(header string, now time.Time) time.Time {
	header = strings.Join(strings.Fields(header), " ")
	if header == "" {
		return time.Time{}
	}

	// Ordinal suffixes ("October 14th") are not understood by time.Parse
	header = stripOrdinal(header)

	for _, layout := range datedLayouts {
		if t, err := time.Parse(layout, header); err == nil {
			return t
		}
	}

	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, header); err == nil {
			return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}

	// Could not parse, return zero time
	return time.Time{}
}

// stripOrdinal removes st/nd/rd/th suffixes following a day number
func stripOrdinal(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		trimmed := strings.TrimSuffix(w, ",")
		for _, suffix := range []string{"st", "nd", "rd", "th"} {
			if !strings.HasSuffix(trimmed, suffix) {
				continue
			}
			digits := strings.TrimSuffix(trimmed, suffix)
			if digits != "" && strings.Trim(digits, "0123456789") == "" {
				words[i] = digits + strings.TrimPrefix(w, trimmed)
			}
		}
	}
	return strings.Join(words, " ")
}
