// Package logger provides structured JSON logging and run metrics for citycast-events.
//
// Log entries are written as one JSON object per line. The default logger writes to
// stderr so that scraped results on stdout stay machine-readable.
//
// Example usage:
//
//	logger.Info("Fetched page", logger.Fields{
//	    "url":   scraper.DefaultURL,
//	    "bytes": len(html),
//	})
//
//	logger.AddCounter("extract.events", int64(result.EventCount()))
//	logger.RecordTiming("fetch.duration", time.Since(start))
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a log severity name as written in the JSON output
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel converts a level name such as "debug" or "WARN" into a Level
func ParseLevel(name string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := levelRank[level]; !ok {
		return "", fmt.Errorf("unknown log level: %q", name)
	}
	return level, nil
}

// Logger writes one JSON object per line to its output. Safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	minLevel Level
	output   io.Writer
}

// Fields are extra key/value pairs attached to an entry
type Fields map[string]interface{}

// LogEntry is the JSON shape of one line
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(LevelWarn, os.Stderr)
)

// New creates a logger that drops messages below level
func New(level Level, output io.Writer) *Logger {
	return &Logger{
		minLevel: level,
		output:   output,
	}
}

// SetDefault replaces the logger used by the package-level functions
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if !l.enabled(level) {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Fields:    fields,
	}

	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		data = []byte(fmt.Sprintf("[%s] %s: %s (marshal error: %v)",
			entry.Timestamp, entry.Level, entry.Message, marshalErr))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write(append(data, '\n'))
}

func (l *Logger) enabled(level Level) bool {
	return levelRank[level] >= levelRank[l.minLevel]
}

func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn is used for pages whose structure is not recognized
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level functions write to the default logger

func Debug(message string, fields Fields) {
	current().Debug(message, fields)
}

func Info(message string, fields Fields) {
	current().Info(message, fields)
}

func Warn(message string, fields Fields) {
	current().Warn(message, fields)
}

func Error(message string, fields Fields, err error) {
	current().Error(message, fields, err)
}

// Metrics collects counters, gauges and timings for one run. Safe for concurrent use.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string]*TimingStats
}

// TimingStats aggregates the durations recorded under one name
type TimingStats struct {
	Count   int           `json:"count"`
	Total   time.Duration `json:"total"`
	Average time.Duration `json:"average"`
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
}

func (s *TimingStats) add(d time.Duration) {
	if s.Count == 0 || d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	s.Count++
	s.Total += d
	s.Average = s.Total / time.Duration(s.Count)
}

// MetricsSnapshot is a point-in-time copy of a Metrics tracker
type MetricsSnapshot struct {
	Counters map[string]int64       `json:"counters"`
	Gauges   map[string]float64     `json:"gauges"`
	Timings  map[string]TimingStats `json:"timings"`
}

var defaultMetrics = NewMetrics()

func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string]*TimingStats),
	}
}

func (m *Metrics) IncrCounter(name string) {
	m.AddCounter(name, 1)
}

func (m *Metrics) AddCounter(name string, delta int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += delta
}

func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

func (m *Metrics) RecordTiming(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.timings[name]
	if !ok {
		stats = &TimingStats{}
		m.timings[name] = stats
	}
	stats.add(d)
}

// Snapshot copies the current values
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		Counters: make(map[string]int64, len(m.counters)),
		Gauges:   make(map[string]float64, len(m.gauges)),
		Timings:  make(map[string]TimingStats, len(m.timings)),
	}
	for k, v := range m.counters {
		snap.Counters[k] = v
	}
	for k, v := range m.gauges {
		snap.Gauges[k] = v
	}
	for k, v := range m.timings {
		snap.Timings[k] = *v
	}
	return snap
}

// Package-level metrics functions use the default tracker

func IncrCounter(name string) {
	defaultMetrics.IncrCounter(name)
}

func AddCounter(name string, delta int64) {
	defaultMetrics.AddCounter(name, delta)
}

func SetGauge(name string, value float64) {
	defaultMetrics.SetGauge(name, value)
}

func RecordTiming(name string, d time.Duration) {
	defaultMetrics.RecordTiming(name, d)
}

func Snapshot() MetricsSnapshot {
	return defaultMetrics.Snapshot()
}
