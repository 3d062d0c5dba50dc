package event

import (
	"time"
)

// Entry is one event as tracked across runs
type Entry struct {
	ID        string       `json:"id"`
	Date      string       `json:"date"`
	Event     *EventRecord `json:"event"`
	FirstSeen time.Time    `json:"first_seen"`
}

// Snapshot represents the events listed at a point in time
type Snapshot struct {
	Events    map[string]*Entry `json:"events"`     // keyed by Entry.ID
	UpdatedAt string            `json:"updated_at"` // RFC3339 timestamp
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Events: make(map[string]*Entry),
	}
}

// DiffResult contains the results of comparing a result against a snapshot
type DiffResult struct {
	NewEntries []*Entry
	Days       []*DayRecord // new events grouped by day header, in page order
}

// Entries flattens a result into entries in page order. Duplicate listings
// (same day, name and url) collapse into the first occurrence.
func Entries(result Result, seenAt time.Time) []*Entry {
	entries := make([]*Entry, 0, result.EventCount())
	seen := make(map[string]bool)
	for _, day := range result.Days {
		for _, evt := range day.Events {
			id := ID(day.Date, evt)
			if seen[id] {
				continue
			}
			seen[id] = true
			entries = append(entries, &Entry{
				ID:        id,
				Date:      day.Date,
				Event:     evt,
				FirstSeen: seenAt,
			})
		}
	}
	return entries
}

// Diff compares the current result against a previous snapshot and returns
// the events not present in it. New events stay grouped by the day group they
// were listed under, so repeated headers remain separate records.
func Diff(previous *Snapshot, current Result) *DiffResult {
	result := &DiffResult{
		NewEntries: make([]*Entry, 0),
		Days:       make([]*DayRecord, 0),
	}

	if previous == nil {
		previous = NewSnapshot()
	}

	seenAt := time.Now().UTC()
	seen := make(map[string]bool)
	for _, day := range current.Days {
		var fresh *DayRecord
		for _, evt := range day.Events {
			id := ID(day.Date, evt)
			if seen[id] {
				continue
			}
			seen[id] = true
			if _, exists := previous.Events[id]; exists {
				continue
			}

			result.NewEntries = append(result.NewEntries, &Entry{
				ID:        id,
				Date:      day.Date,
				Event:     evt,
				FirstSeen: seenAt,
			})

			if fresh == nil {
				fresh = &DayRecord{Date: day.Date, Events: make([]*EventRecord, 0)}
				result.Days = append(result.Days, fresh)
			}
			fresh.Events = append(fresh.Events, evt)
		}
	}

	return result
}

// CreateSnapshot creates a snapshot from a result. Entries already present in
// previous keep their original FirstSeen time.
func CreateSnapshot(previous *Snapshot, current Result, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = updatedAt

	for _, entry := range Entries(current, time.Now().UTC()) {
		if previous != nil {
			if old, ok := previous.Events[entry.ID]; ok {
				entry.FirstSeen = old.FirstSeen
			}
		}
		snap.Events[entry.ID] = entry
	}

	return snap
}
