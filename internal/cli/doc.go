// Package cli implements the command-line interface for citycast-events.
//
// The cli package provides the Cobra-based command that fetches the City Cast events
// page (or reads a saved fixture), extracts its calendar, optionally narrows it to
// events not seen on the previous run, and writes the result as JSON, a text table,
// or an iCalendar feed.
package cli
