package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultPath is where the signal lives when no path is configured.
var DefaultPath = filepath.Join(".guidepost", "tour-active.json")

// Store implements ports.SignalStore with a marker file.
// The file exists exactly while a tour is active.
type Store struct {
	Path string
	now  func() time.Time
}

type marker struct {
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a new Store at path. An empty path uses DefaultPath.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{Path: path, now: time.Now}
}

// Active reports whether the marker file exists and records an active tour.
func (s *Store) Active(ctx context.Context) (bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read signal file: %w", err)
	}

	var m marker
	if err := json.Unmarshal(data, &m); err != nil {
		return false, fmt.Errorf("failed to unmarshal signal file: %w", err)
	}
	return m.Active, nil
}

// SetActive writes the marker file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) SetActive(ctx context.Context) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure signal directory: %w", err)
	}

	data, err := json.Marshal(marker{Active: true, UpdatedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal signal: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-signal-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename fails on Windows if the destination exists.
	if _, err := os.Stat(s.Path); err == nil {
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("failed to remove existing signal file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("failed to rename temp file to signal file: %w", err)
	}
	return nil
}

// Clear removes the marker file.
func (s *Store) Clear(ctx context.Context) error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete signal file: %w", err)
	}
	return nil
}
