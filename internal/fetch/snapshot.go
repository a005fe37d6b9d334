package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SnapshotStore is the durable holding area for raw per-city snapshot
// files. Snapshots are immutable once written and retained indefinitely.
type SnapshotStore struct {
	dir string
}

func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir}
}

// Ensure creates the snapshot directory if needed.
func (s *SnapshotStore) Ensure() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory %s: %w", s.dir, err)
	}
	return nil
}

// Save writes one snapshot payload and returns its filename. The name
// encodes city and fetch time, which is the snapshot's identity.
func (s *SnapshotStore) Save(city string, payload []byte, fetchedAt time.Time) (string, error) {
	name := fmt.Sprintf("%s_%s.json", city, fetchedAt.Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(s.dir, name), payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to save snapshot for %s: %w", city, err)
	}
	return name, nil
}

// List returns the names of all stored snapshot files.
func (s *SnapshotStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory %s: %w", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Read returns the payload of one stored snapshot.
func (s *SnapshotStore) Read(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, name))
}
