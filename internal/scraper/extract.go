package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/pfrederiksen/citycast-events/internal/event"
)

// FieldSeparator splits an event item's text into name, time, price and location
const FieldSeparator = "|"

var (
	eventListSelector = cascadia.MustCompile("#event-list")
	daySelector       = cascadia.MustCompile("div.grid")
	headerSelector    = cascadia.MustCompile("h3")
	listSelector      = cascadia.MustCompile("ul")
	itemSelector      = cascadia.MustCompile("li")
	linkSelector      = cascadia.MustCompile("a")
)

// Extract walks the event list of a loaded page and returns its day records.
// A page without an #event-list element yields an error result; day groups
// without a header are skipped.
func Extract(doc *goquery.Document) event.Result {
	eventList := doc.FindMatcher(eventListSelector).First()
	if eventList.Length() == 0 {
		return event.NewErrorResult(event.ErrEventListNotFound)
	}

	days := make([]*event.DayRecord, 0)
	eventList.FindMatcher(daySelector).Each(func(_ int, group *goquery.Selection) {
		if day, ok := extractDay(group); ok {
			days = append(days, day)
		}
	})

	return event.Result{Days: days}
}

// extractDay builds the record for one div.grid group
func extractDay(group *goquery.Selection) (*event.DayRecord, bool) {
	header := group.FindMatcher(headerSelector).First()
	if header.Length() == 0 {
		return nil, false
	}

	day := &event.DayRecord{
		Date:   strings.TrimSpace(header.Text()),
		Events: make([]*event.EventRecord, 0),
	}

	list := group.FindMatcher(listSelector).First()
	list.FindMatcher(itemSelector).Each(func(_ int, item *goquery.Selection) {
		day.Events = append(day.Events, extractItem(item))
	})

	return day, true
}

// extractItem builds an event record from a list item such as
// <li><a href="/jazz">Jazz Night</a> | 7:30 PM | $10 | The Hall</li>
func extractItem(item *goquery.Selection) *event.EventRecord {
	rec := &event.EventRecord{Name: event.NoName}

	link := item.FindMatcher(linkSelector).First()
	if link.Length() > 0 {
		rec.Name = strings.TrimSpace(link.Text())
		if href, ok := link.Attr("href"); ok {
			rec.URL = event.StringPtr(href)
		}
	}

	// parts[0] is the name region, already taken from the link
	parts := strings.Split(strings.TrimSpace(item.Text()), FieldSeparator)
	rec.Time = event.NormalizeTime(segment(parts, 1))
	rec.Price = segment(parts, 2)
	rec.Location = segment(parts, 3)

	return rec
}

// segment returns the trimmed i-th part, or nil when there are too few parts
func segment(parts []string, i int) *string {
	if i >= len(parts) {
		return nil
	}
	return event.StringPtr(strings.TrimSpace(parts[i]))
}
