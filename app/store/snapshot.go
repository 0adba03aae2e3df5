package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/lysyi3m/catalog-watch/app/catalog"
)

// SnapshotStore keeps the last observed catalog as an indented JSON array
// of product URLs in fetch order.
type SnapshotStore struct {
	path  string
	write writeFunc
	mu    sync.Mutex
}

func NewSnapshotStore(dataDir string) *SnapshotStore {
	return &SnapshotStore{
		path:  filepath.Join(dataDir, SnapshotFileName),
		write: writeFileAtomic,
	}
}

func (s *SnapshotStore) Path() string {
	return s.path
}

// Load returns the persisted catalog. A missing or unreadable snapshot yields
// an empty catalog, so every fetched product is reported as added.
func (s *SnapshotStore) Load() *catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, found, err := s.read()
	if err != nil {
		slog.Warn("Snapshot unreadable, treating as empty", "path", s.path, "error", err)
		return catalog.New()
	}
	if !found {
		slog.Warn("No snapshot found, treating as first run", "path", s.path)
		return catalog.New()
	}

	slog.Debug("Snapshot loaded", "path", s.path, "products", len(products))
	return catalog.New(products...)
}

// Save overwrites the snapshot with c unless the stored sequence is already
// identical. It reports whether the file was written.
func (s *SnapshotStore) Save(c *catalog.Catalog) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := c.Items()

	existing, found, err := s.read()
	if err == nil && found && slices.Equal(existing, products) {
		slog.Debug("Snapshot unchanged, skipping write", "path", s.path)
		return false, nil
	}

	data, err := encodeIndented(products)
	if err != nil {
		return false, &WriteError{Path: s.path, Err: err}
	}

	if err := s.write(s.path, data); err != nil {
		return false, &WriteError{Path: s.path, Err: err}
	}

	slog.Info("Snapshot updated", "path", s.path, "products", len(products))
	return true, nil
}

// Raw returns the snapshot file verbatim, or an empty JSON array when no
// snapshot exists yet.
func (s *SnapshotStore) Raw() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []byte("[]"), nil
	}
	if err != nil {
		return nil, &ReadError{Path: s.path, Err: err}
	}
	return data, nil
}

func (s *SnapshotStore) read() ([]string, bool, error) {
	var products []string
	found, err := readJSON(s.path, &products)
	if err != nil {
		return nil, found, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return products, found, nil
}
