package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/citycast-events/internal/event"
)

// SortOrder represents the available sorting options for events within a day
type SortOrder string

const (
	SortByDocument SortOrder = "document"
	SortByName     SortOrder = "name"
	SortByTime     SortOrder = "time"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case SortByDocument, SortByName, SortByTime:
		return order, nil
	}
	return "", fmt.Errorf("invalid sort: %s (must be 'document', 'name' or 'time')", s)
}

// sortResult returns a copy of result with each day's events reordered.
// Day order is always the page order.
func sortResult(result event.Result, order SortOrder) event.Result {
	if result.Failed() || order == SortByDocument || order == "" {
		return result
	}

	days := make([]*event.DayRecord, len(result.Days))
	for i, day := range result.Days {
		events := make([]*event.EventRecord, len(day.Events))
		copy(events, day.Events)
		sortEvents(events, order)
		days[i] = &event.DayRecord{Date: day.Date, Events: events}
	}
	return event.Result{Days: days}
}

// sortEvents sorts a slice of events based on the specified sort order
func sortEvents(events []*event.EventRecord, order SortOrder) {
	switch order {
	case SortByName:
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(events[i].Name) < strings.ToLower(events[j].Name)
		})
	case SortByTime:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByTime(events[i], events[j])
		})
	}
}

// compareByTime reports whether event i starts before event j.
// Events without a recognizable start time go last.
func compareByTime(i, j *event.EventRecord) bool {
	startI, okI := startTime(i)
	startJ, okJ := startTime(j)

	if okI && okJ {
		return startI.Before(startJ)
	}
	// If only one time is valid, put the valid one first
	return okI && !okJ
}

// startTime extracts the start of an event's normalized or raw clock time
func startTime(e *event.EventRecord) (time.Time, bool) {
	if e.Time == nil {
		return time.Time{}, false
	}
	if start, _, _, ok := event.ParseRange(*e.Time); ok {
		return start, true
	}
	if clock, err := event.ParseClock(*e.Time); err == nil {
		return clock, true
	}
	return time.Time{}, false
}
