package scraper

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/citycast-events/internal/event"
)

// ExtractAll extracts independent documents concurrently. Results are
// returned in the same order as docs.
func ExtractAll(docs []*goquery.Document) []event.Result {
	results := make([]event.Result, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc *goquery.Document) {
			defer wg.Done()
			results[i] = Extract(doc)
		}(i, doc)
	}
	wg.Wait()

	return results
}
