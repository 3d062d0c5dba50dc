package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/citycast-events/internal/calendar"
	"github.com/pfrederiksen/citycast-events/internal/config"
	"github.com/pfrederiksen/citycast-events/internal/event"
	"github.com/pfrederiksen/citycast-events/internal/logger"
	"github.com/pfrederiksen/citycast-events/internal/scraper"
	"github.com/pfrederiksen/citycast-events/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// SampleFixture is the page read in --test mode
const SampleFixture = "sample.html"

// Snapshot keys for results that were not fetched from a URL
const (
	fixtureSource = "fixture"
	inputSource   = "input"
)

// ErrStructure is returned after output when the page had no event list
var ErrStructure = errors.New("page structure not recognized")

type options struct {
	configPath string
	test       bool
	fixture    string
	input      string
	url        string
	format     string
	sortOrder  string
	dataDir    string
	newOnly    bool
	timezone   string
	verbose    bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "citycast-events",
		Short: "Extract the City Cast events calendar",
		Long: `A CLI tool that scrapes the City Cast events page and prints its calendar.
Each day header becomes a record with the events listed under it; event times are
normalized to ISO clock times where the page gives a time range.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().BoolVar(&opts.test, "test", false, "Run in test mode using "+SampleFixture)
	cmd.Flags().StringVar(&opts.fixture, "fixture", "", "Read the page from a saved HTML file instead of fetching it")
	cmd.Flags().StringVar(&opts.input, "input", "", "Re-render a JSON result saved from an earlier run")
	cmd.Flags().StringVar(&opts.url, "url", config.DefaultURL, "Events page URL")
	cmd.Flags().StringVar(&opts.format, "format", config.DefaultFormat, "Output format: json, text or ics")
	cmd.Flags().StringVar(&opts.sortOrder, "sort", string(SortByDocument), "Order of events within a day: document, name or time")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", config.DefaultDataDir, "Data directory for snapshots")
	cmd.Flags().BoolVar(&opts.newOnly, "new-only", false, "Only report events not seen on the previous run")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "America/New_York", "Time zone of listed times for ics output")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")

	cmd.MarkFlagsMutuallyExclusive("test", "fixture", "input")

	return cmd
}

// resolveConfig merges the config file with flags that were set explicitly
func resolveConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.URL = opts.url
	}
	if flags.Changed("format") {
		cfg.Format = strings.ToLower(opts.format)
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = opts.dataDir
	}
	if opts.verbose {
		cfg.LogLevel = string(logger.LevelDebug)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// run is the main command logic
func run(cmd *cobra.Command, opts *options) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	order, err := ParseSortOrder(opts.sortOrder)
	if err != nil {
		return err
	}

	loc := time.UTC
	if cfg.Format == string(FormatICS) {
		if loc, err = calendar.LoadLocation(opts.timezone); err != nil {
			return err
		}
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, source, err := loadResult(ctx, cfg, opts)
	if err != nil {
		return err
	}

	if opts.newOnly && !result.Failed() {
		result, err = newSince(cfg.DataDir, source, result)
		if err != nil {
			return err
		}
	}

	result = sortResult(result, order)

	err = WriteOutput(cmd.OutOrStdout(), result, OutputFormat(cfg.Format), OutputOptions{
		Verbose:  opts.verbose,
		Now:      time.Now(),
		Location: loc,
	})
	if result.Failed() {
		// The error descriptor has already been written for JSON and text output
		return fmt.Errorf("%w: %s", ErrStructure, result.Err.Error)
	}
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	logger.Debug("Run complete", logger.Fields{"metrics": logger.Snapshot()})
	return nil
}

// loadResult reads or fetches the calendar and returns the snapshot key of its source
func loadResult(ctx context.Context, cfg config.Config, opts *options) (event.Result, string, error) {
	if opts.input != "" {
		logger.Info("Reading saved result", logger.Fields{"path": opts.input})
		result, err := readInput(opts.input)
		if err != nil {
			return event.Result{}, "", err
		}
		return result, inputSource, nil
	}

	path := opts.fixture
	if opts.test {
		path = SampleFixture
	}

	if path != "" {
		logger.Info("Reading events page from file", logger.Fields{"path": path})
		markup, err := storage.LoadFixture(path)
		if err != nil {
			return event.Result{}, "", err
		}
		result, err := scraper.Parse(markup)
		if err != nil {
			return event.Result{}, "", fmt.Errorf("loading page: %w", err)
		}
		return result, fixtureSource, nil
	}

	sc := scraper.New(
		scraper.WithURL(cfg.URL),
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithTimeout(cfg.Timeout),
	)

	logger.Info("Fetching events page", logger.Fields{"url": sc.URL()})
	result, err := sc.FetchEvents(ctx)
	if err != nil {
		logger.Error("Fetch failed", logger.Fields{"url": sc.URL()}, err)
		return event.Result{}, "", fmt.Errorf("fetching events: %w", err)
	}
	return result, cfg.Source(), nil
}

// readInput decodes a result written by --format json, either a list of
// days or an error descriptor
func readInput(path string) (event.Result, error) {
	expanded, err := storage.ExpandHome(path)
	if err != nil {
		return event.Result{}, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return event.Result{}, fmt.Errorf("reading input: %w", err)
	}

	var result event.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return event.Result{}, fmt.Errorf("parsing input %s: %w", path, err)
	}
	return result, nil
}

// newSince narrows result to events missing from the stored snapshot and
// saves the current listing as the new snapshot
func newSince(dataDir, source string, result event.Result) (event.Result, error) {
	store, err := storage.New(dataDir)
	if err != nil {
		return event.Result{}, fmt.Errorf("initializing storage: %w", err)
	}

	previous, err := store.LoadSnapshot(source)
	if err != nil {
		return event.Result{}, fmt.Errorf("loading snapshot: %w", err)
	}

	diff := event.Diff(previous, result)

	if err := store.CreateSnapshotFromResult(previous, result, source); err != nil {
		return event.Result{}, fmt.Errorf("saving snapshot: %w", err)
	}

	logger.Info("Compared against previous snapshot", logger.Fields{
		"previous": len(previous.Events),
		"new":      len(diff.NewEntries),
		"data_dir": store.Dir(),
	})

	return event.Result{Days: diff.Days}, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
