package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pfrederiksen/citycast-events/internal/calendar"
	"github.com/pfrederiksen/citycast-events/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatText OutputFormat = "text"
	FormatICS  OutputFormat = "ics"
)

// OutputOptions carries settings needed by individual formats
type OutputOptions struct {
	Verbose  bool
	Now      time.Time
	Location *time.Location
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result event.Result, format OutputFormat, opts OutputOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, opts.Verbose)
	case FormatICS:
		return writeICS(w, result, opts)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as an indented JSON array
func writeJSON(w io.Writer, result event.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(result)
}

// writeText outputs results as one table per day
func writeText(w io.Writer, result event.Result, verbose bool) error {
	if result.Failed() {
		fmt.Fprintf(w, "Error: %s\n", result.Err.Error)
		return nil
	}

	if len(result.Days) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	for _, day := range result.Days {
		fmt.Fprintf(w, "\n%s (%d events):\n", day.Date, len(day.Events))
		if len(day.Events) == 0 {
			continue
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if verbose {
			fmt.Fprintln(tw, "  NAME\tTIME\tPRICE\tLOCATION\tURL")
		} else {
			fmt.Fprintln(tw, "  NAME\tTIME\tPRICE\tLOCATION")
		}
		for _, evt := range day.Events {
			if verbose {
				fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
					evt.Name, dash(evt.Time), dash(evt.Price), dash(evt.Location), dash(evt.URL))
			} else {
				fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
					evt.Name, dash(evt.Time), dash(evt.Price), dash(evt.Location))
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\nTotal: %d events across %d days\n", result.EventCount(), len(result.Days))
	return nil
}

// writeICS outputs results as an iCalendar feed
func writeICS(w io.Writer, result event.Result, opts OutputOptions) error {
	out, err := calendar.GenerateICS(result, calendar.Options{
		Now:      opts.Now,
		Location: opts.Location,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// dash renders an absent field as "-"
func dash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
