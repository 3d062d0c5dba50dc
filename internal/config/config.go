// Package config loads citycast-events settings from a YAML file.
//
// Every setting has a default so the CLI works without a file; flags given on the
// command line take precedence over values read here.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/pfrederiksen/citycast-events/internal/logger"
	"github.com/pfrederiksen/citycast-events/internal/scraper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultURL       = scraper.DefaultURL
	DefaultUserAgent = scraper.UserAgent
	DefaultTimeout   = scraper.Timeout
	DefaultDataDir   = "~/.local/share/citycast-events"
	DefaultFormat    = "json"
	DefaultLogLevel  = "warn"
)

// Config holds the runtime settings
type Config struct {
	URL       string        `yaml:"url"`        // events page to scrape
	UserAgent string        `yaml:"user_agent"` // sent with every request
	Timeout   time.Duration `yaml:"timeout"`    // e.g. 30s
	DataDir   string        `yaml:"data_dir"`   // snapshot directory for --new-only
	Format    string        `yaml:"format"`     // json | text | ics
	LogLevel  string        `yaml:"log_level"`  // debug | info | warn | error
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		URL:       DefaultURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		DataDir:   DefaultDataDir,
		Format:    DefaultFormat,
		LogLevel:  DefaultLogLevel,
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file
// keep their default value.
func Load(path string) (Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks that the settings are usable
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("url must not be empty")
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid url: %q", c.URL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Format {
	case "json", "text", "ics":
	default:
		return fmt.Errorf("invalid format: %s (must be 'json', 'text' or 'ics')", c.Format)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Source returns the host of the configured URL, used to key snapshots
func (c Config) Source() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return ""
	}
	return u.Host
}
