package event

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
)

const (
	// NoName is used when an event item carries no link text
	NoName = "No Name"

	// ErrEventListNotFound is the descriptor returned when the page has no event container
	ErrEventListNotFound = "Event list not found"
)

// EventRecord represents a single listed event. Optional fields are nil when the
// source text did not provide them.
type EventRecord struct {
	Name     string  `json:"name"`
	URL      *string `json:"url"`
	Time     *string `json:"time"`
	Location *string `json:"location"`
	Price    *string `json:"price"`
}

// DayRecord groups the events listed under one day header
type DayRecord struct {
	Date   string         `json:"date"`
	Events []*EventRecord `json:"events"`
}

// ErrorRecord describes a structural failure of the page
type ErrorRecord struct {
	Error string `json:"error"`
}

// Result is the outcome of an extraction: either day records or a single error
type Result struct {
	Days []*DayRecord
	Err  *ErrorRecord
}

// NewErrorResult creates a Result carrying only an error descriptor
func NewErrorResult(message string) Result {
	return Result{Err: &ErrorRecord{Error: message}}
}

// Failed reports whether the result is a structural error
func (r Result) Failed() bool {
	return r.Err != nil
}

// EventCount returns the total number of events across all days
func (r Result) EventCount() int {
	n := 0
	for _, day := range r.Days {
		n += len(day.Events)
	}
	return n
}

// MarshalJSON encodes the result as a JSON array of either one error
// descriptor or the day records
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return marshal([]*ErrorRecord{r.Err})
	}
	days := r.Days
	if days == nil {
		days = []*DayRecord{}
	}
	out := make([]DayRecord, len(days))
	for i, day := range days {
		out[i] = *day
		if out[i].Events == nil {
			out[i].Events = []*EventRecord{}
		}
	}
	return marshal(out)
}

// marshal encodes v without HTML escaping so venues like "Busboys & Poets" stay readable
func marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON accepts either array shape produced by MarshalJSON
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}

	*r = Result{Days: make([]*DayRecord, 0, len(raw))}
	for i, elem := range raw {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(elem, &keys); err != nil {
			return fmt.Errorf("decoding result element %d: %w", i, err)
		}

		if msg, ok := keys["error"]; ok {
			var e ErrorRecord
			if err := json.Unmarshal(msg, &e.Error); err != nil {
				return fmt.Errorf("decoding error descriptor: %w", err)
			}
			*r = Result{Err: &e}
			return nil
		}

		var day DayRecord
		if err := json.Unmarshal(elem, &day); err != nil {
			return fmt.Errorf("decoding day %d: %w", i, err)
		}
		if day.Events == nil {
			day.Events = []*EventRecord{}
		}
		r.Days = append(r.Days, &day)
	}
	return nil
}

// ID creates a deterministic identifier for an event listed under a day header
func ID(date string, e *EventRecord) string {
	url := ""
	if e.URL != nil {
		url = *e.URL
	}
	h := sha1.New()
	h.Write([]byte(date + "|" + e.Name + "|" + url))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// Value dereferences an optional field, returning "" when absent
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
