// Package scraper fetches the City Cast events page and extracts its calendar.
//
// Load parses raw markup into a goquery document using the lenient HTML5 parser from
// golang.org/x/net/html, so malformed markup still yields a best-effort tree. Extract
// walks the #event-list container, one div.grid per day, and turns every list item's
// pipe-delimited text ("Name | 7:30 PM | $10 | Venue") into an event record.
// Extraction is a pure function of the document and may run concurrently on
// independent documents.
package scraper
