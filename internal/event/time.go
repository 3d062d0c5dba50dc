package event

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	// ClockLayout is the 12-hour clock format used on the listing page, e.g. "7:30 PM".
	// Hours and minutes may have one or two digits.
	ClockLayout = "3:4 PM"

	// ISOLayout is the serialization of a parsed clock time. A clock time carries
	// no date, so the date component is fixed at 1900-01-01.
	ISOLayout = "2006-01-02T15:04:05"

	// RangeSeparator splits a time range such as "7:00 PM - 9:00 PM"
	RangeSeparator = " - "
)

// ParseClock parses a 12-hour clock time with meridiem. The meridiem is matched
// case-insensitively and a run of whitespace between the time and the meridiem
// counts as one space. Whitespace before or after the value is rejected.
func ParseClock(s string) (time.Time, error) {
	if s != strings.TrimSpace(s) {
		return time.Time{}, fmt.Errorf("parsing clock time %q: surrounding whitespace", s)
	}
	normalized := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	t, err := time.Parse(ClockLayout, normalized)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing clock time %q: %w", s, err)
	}
	if strings.HasPrefix(normalized, "0:") || strings.HasPrefix(normalized, "00:") {
		return time.Time{}, fmt.Errorf("parsing clock time %q: hour out of range", s)
	}
	return time.Date(1900, time.January, 1, t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// FormatISO formats a parsed clock time in ISO-8601 form
func FormatISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// TrimTime strips leading and trailing whitespace and periods
func TrimTime(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '.'
	})
}

// NormalizeTime converts the raw time segment of an event item.
//
// Two attempts run in order. The single-time attempt converts "7:30 PM" to its ISO
// form; the range attempt then always runs and its outcome replaces the first:
//   - exactly two parts around " - " that both parse: "<iso> - <iso>"
//   - exactly two parts where either fails to parse: nil
//   - any other part count: the trimmed raw string
//
// A lone clock time therefore comes back as its trimmed raw text.
func NormalizeTime(raw *string) *string {
	if raw == nil {
		return nil
	}

	timeStr := TrimTime(*raw)

	var result *string
	if t, err := ParseClock(timeStr); err == nil {
		result = StringPtr(FormatISO(t))
	}

	result = normalizeRange(timeStr)
	return result
}

// normalizeRange applies the range attempt of NormalizeTime
func normalizeRange(timeStr string) *string {
	parts := strings.Split(timeStr, RangeSeparator)
	if len(parts) != 2 {
		return StringPtr(timeStr)
	}

	start, err := ParseClock(parts[0])
	if err != nil {
		return nil
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return nil
	}

	return StringPtr(FormatISO(start) + RangeSeparator + FormatISO(end))
}

// ParseRange parses a normalized time value back into its clock times. A single
// ISO time returns ok with end equal to start and single set.
func ParseRange(normalized string) (start, end time.Time, single bool, ok bool) {
	parts := strings.Split(normalized, RangeSeparator)
	switch len(parts) {
	case 1:
		t, err := time.Parse(ISOLayout, parts[0])
		if err != nil {
			return time.Time{}, time.Time{}, false, false
		}
		return t, t, true, true
	case 2:
		s, err := time.Parse(ISOLayout, parts[0])
		if err != nil {
			return time.Time{}, time.Time{}, false, false
		}
		e, err := time.Parse(ISOLayout, parts[1])
		if err != nil {
			return time.Time{}, time.Time{}, false, false
		}
		return s, e, false, true
	}
	return time.Time{}, time.Time{}, false, false
}
