package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/citycast-events/internal/event"
)

// Storage handles persistence of event snapshots
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	dataDir, err := ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// ExpandHome expands a leading ~/ to the user's home directory
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// Dir returns the data directory
func (s *Storage) Dir() string {
	return s.dataDir
}

// getSnapshotPath returns the path to the snapshot file for a source
func (s *Storage) getSnapshotPath(source string) string {
	key := sanitize(source)
	if key == "" {
		return filepath.Join(s.dataDir, "snapshot.json")
	}
	return filepath.Join(s.dataDir, fmt.Sprintf("snapshot_%s.json", key))
}

// sanitize turns a source name such as a host into a file-name-safe key
func sanitize(source string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(source)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// LoadSnapshot loads a snapshot from disk. A missing file yields an empty snapshot.
func (s *Storage) LoadSnapshot(source string) (*event.Snapshot, error) {
	path := s.getSnapshotPath(source)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return event.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot event.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	// Ensure Events map is initialized
	if snapshot.Events == nil {
		snapshot.Events = make(map[string]*event.Entry)
	}

	return &snapshot, nil
}

// SaveSnapshot saves a snapshot to disk
func (s *Storage) SaveSnapshot(snapshot *event.Snapshot, source string) error {
	path := s.getSnapshotPath(source)

	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

// CreateSnapshotFromResult builds a snapshot from a result, carrying over
// FirstSeen times from previous, and saves it
func (s *Storage) CreateSnapshotFromResult(previous *event.Snapshot, result event.Result, source string) error {
	if result.Failed() {
		return fmt.Errorf("refusing to save snapshot of failed result: %s", result.Err.Error)
	}
	snapshot := event.CreateSnapshot(previous, result, time.Now().UTC().Format(time.RFC3339))
	return s.SaveSnapshot(snapshot, source)
}

// LoadFixture reads a locally saved copy of the events page
func LoadFixture(path string) (string, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading fixture: %w", err)
	}
	return string(data), nil
}
