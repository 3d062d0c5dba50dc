// Package calendar exports scraped events as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/pfrederiksen/citycast-events/internal/event"
)

const (
	ProductID = "-//City Cast Events//citycast-events//EN"
	uidDomain = "citycast-events"

	// defaultDuration is used when an event lists only a start time
	defaultDuration = time.Hour
)

// Options control how day headers and clock times are placed in time
type Options struct {
	Now      time.Time      // reference for headers without a year
	Location *time.Location // zone of the listed clock times
}

// GenerateICS renders every event whose day header can be parsed as a VEVENT.
// Events with a time range get DTSTART/DTEND, a single time gets a one hour
// slot and anything else becomes an all-day event.
func GenerateICS(result event.Result, opts Options) (string, error) {
	if result.Failed() {
		return "", fmt.Errorf("cannot export failed result: %s", result.Err.Error)
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	cal := ics.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ics.MethodPublish)

	stamp := opts.Now.UTC()
	for _, day := range result.Days {
		date := event.ParseDate(day.Date, opts.Now)
		if date.IsZero() {
			continue
		}

		for _, evt := range day.Events {
			vevent := cal.AddEvent(fmt.Sprintf("%s@%s", event.ID(day.Date, evt), uidDomain))
			vevent.SetDtStampTime(stamp)
			vevent.SetSummary(evt.Name)
			vevent.SetStatus(ics.ObjectStatusConfirmed)

			if start, end, ok := eventTimes(date, evt.Time, opts.Location); ok {
				vevent.SetStartAt(start)
				vevent.SetEndAt(end)
			} else {
				vevent.SetAllDayStartAt(date)
				vevent.SetAllDayEndAt(date.AddDate(0, 0, 1))
			}

			if evt.Location != nil && *evt.Location != "" {
				vevent.SetLocation(*evt.Location)
			}
			if evt.URL != nil && *evt.URL != "" {
				vevent.SetURL(*evt.URL)
			}
			vevent.SetDescription(description(day.Date, evt))
		}
	}

	return cal.Serialize(), nil
}

// eventTimes places the normalized time field on date. Both ISO ranges and
// raw clock text such as "7:30 PM" are understood.
func eventTimes(date time.Time, value *string, loc *time.Location) (time.Time, time.Time, bool) {
	if value == nil {
		return time.Time{}, time.Time{}, false
	}

	start, end, single, ok := event.ParseRange(*value)
	if !ok {
		clock, err := event.ParseClock(*value)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		start, end, single = clock, clock, true
	}

	startAt := onDate(date, start, loc)
	if single {
		return startAt, startAt.Add(defaultDuration), true
	}

	endAt := onDate(date, end, loc)
	// Ranges such as "10:00 PM - 1:00 AM" end on the next day
	if !endAt.After(startAt) {
		endAt = endAt.AddDate(0, 0, 1)
	}
	return startAt, endAt, true
}

func onDate(date, clock time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
}

func description(date string, evt *event.EventRecord) string {
	lines := []string{"Date: " + date}
	if evt.Time != nil && *evt.Time != "" {
		lines = append(lines, "Time: "+*evt.Time)
	}
	if evt.Price != nil && *evt.Price != "" {
		lines = append(lines, "Price: "+*evt.Price)
	}
	return strings.Join(lines, "\n")
}

// LoadLocation resolves a zone name, returning UTC for an empty name
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", name, err)
	}
	return loc, nil
}
