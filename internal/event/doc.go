// Package event defines the calendar data model for scraped City Cast events.
//
// A scrape produces a Result: either a list of DayRecords (a day header plus the
// events listed under it) or a single structural error descriptor. The package also
// owns field normalization (clock times and time ranges), day-header date parsing,
// and snapshot diffing used to report newly-listed events between runs.
package event
