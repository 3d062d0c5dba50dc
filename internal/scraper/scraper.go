package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pfrederiksen/citycast-events/internal/event"
	"github.com/pfrederiksen/citycast-events/internal/logger"
)

const (
	DefaultURL = "https://dc.citycast.fm/events"
	UserAgent  = "citycast-events-cli/1.0 (github.com/pfrederiksen/citycast-events)"
	Timeout    = 30 * time.Second

	// maxPageBytes bounds how much of a response body is read
	maxPageBytes = 10 << 20
)

// StatusError reports a non-200 response from the events page
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// Scraper handles fetching and parsing the events page
type Scraper struct {
	client    *http.Client
	url       string
	userAgent string
}

// Option configures a Scraper
type Option func(*Scraper)

// WithURL overrides the events page URL
func WithURL(url string) Option {
	return func(s *Scraper) {
		s.url = url
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(s *Scraper) {
		s.client.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header sent with requests
func WithUserAgent(userAgent string) Option {
	return func(s *Scraper) {
		s.userAgent = userAgent
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) {
		s.client = client
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		url:       DefaultURL,
		userAgent: UserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the page the scraper fetches
func (s *Scraper) URL() string {
	return s.url
}

// FetchHTML fetches the raw markup of the events page
func (s *Scraper) FetchHTML(ctx context.Context) (string, error) {
	start := time.Now()
	defer func() {
		logger.RecordTiming("fetch.duration", time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		logger.IncrCounter("fetch.errors")
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.IncrCounter("fetch.errors")
		return "", &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("reading page: %w", err)
	}

	logger.SetGauge("page.bytes", float64(len(body)))
	logger.Debug("Fetched events page", logger.Fields{
		"url":   s.url,
		"bytes": len(body),
	})

	return string(body), nil
}

// FetchEvents fetches the events page and extracts its calendar
func (s *Scraper) FetchEvents(ctx context.Context) (event.Result, error) {
	markup, err := s.FetchHTML(ctx)
	if err != nil {
		return event.Result{}, err
	}
	return Parse(markup)
}

// Parse loads markup and extracts its calendar
func Parse(markup string) (event.Result, error) {
	doc, err := Load(markup)
	if err != nil {
		return event.Result{}, err
	}

	result := Extract(doc)
	record(result)
	return result, nil
}

// record logs and counts what an extraction produced
func record(result event.Result) {
	if result.Failed() {
		logger.IncrCounter("extract.structural_errors")
		logger.Warn("Page structure not recognized", logger.Fields{
			"error": result.Err.Error,
		})
		return
	}

	missingTime := 0
	for _, day := range result.Days {
		for _, evt := range day.Events {
			if evt.Time == nil {
				missingTime++
			}
		}
	}

	logger.AddCounter("extract.days", int64(len(result.Days)))
	logger.AddCounter("extract.events", int64(result.EventCount()))
	logger.AddCounter("extract.time_missing", int64(missingTime))
	logger.Info("Extracted events", logger.Fields{
		"days":         len(result.Days),
		"events":       result.EventCount(),
		"time_missing": missingTime,
	})
}
