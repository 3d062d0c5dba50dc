package scraper

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Load parses markup into a queryable document. The HTML5 parsing algorithm
// recovers from malformed markup, so an error is only returned when the input
// cannot be read.
func Load(markup string) (*goquery.Document, error) {
	return LoadReader(strings.NewReader(markup))
}

// LoadReader parses markup read from r into a queryable document
func LoadReader(r io.Reader) (*goquery.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}
