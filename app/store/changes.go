package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChangeStore persists the append-only change history as one JSON array.
// Every append rewrites the whole file; prior records are never modified.
type ChangeStore struct {
	path  string
	write writeFunc
	now   func() time.Time
	newID func() uuid.UUID
	mu    sync.Mutex
}

func NewChangeStore(dataDir string) *ChangeStore {
	return &ChangeStore{
		path:  filepath.Join(dataDir, ChangesFileName),
		write: writeFileAtomic,
		now:   time.Now,
		newID: uuid.New,
	}
}

func (s *ChangeStore) Path() string {
	return s.path
}

// RecordChange appends a new record for the given change and returns it.
// An empty change returns nil without touching the history file.
//
// An unreadable history is replaced by a fresh one; the unreadable file is
// kept next to it with a ".corrupt-<unix>" suffix.
func (s *ChangeStore) RecordChange(added, removed []string) (*ChangeRecord, error) {
	if len(added) == 0 && len(removed) == 0 {
		slog.Info("No changes detected, skipping change history update")
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.read()
	if err != nil {
		slog.Warn("Change history unreadable, starting a new history", "path", s.path, "error", err)
		s.preserveCorrupt()
		history = nil
	}

	record := ChangeRecord{
		ID:        s.newID(),
		Timestamp: s.now(),
		Added:     slices.Clone(added),
		Removed:   slices.Clone(removed),
	}
	if record.Added == nil {
		record.Added = []string{}
	}
	if record.Removed == nil {
		record.Removed = []string{}
	}

	history = append(history, record)

	data, err := encodeIndented(history)
	if err != nil {
		return nil, &WriteError{Path: s.path, Err: err}
	}

	if err := s.write(s.path, data); err != nil {
		return nil, &WriteError{Path: s.path, Err: err}
	}

	slog.Info("Change history updated",
		"id", record.ID.String(),
		"added", len(record.Added),
		"removed", len(record.Removed),
		"records", len(history))

	return &record, nil
}

// List returns every record in insertion order.
func (s *ChangeStore) List() ([]ChangeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.read()
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []ChangeRecord{}
	}
	return history, nil
}

// Lookup returns the record with the given identifier. Malformed identifiers
// are reported as not found.
func (s *ChangeStore) Lookup(id string) (*ChangeRecord, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrChangeNotFound
	}

	history, err := s.List()
	if err != nil {
		return nil, err
	}

	for i := range history {
		if history[i].ID == parsed {
			return &history[i], nil
		}
	}
	return nil, ErrChangeNotFound
}

// Latest returns the most recently appended record.
func (s *ChangeStore) Latest() (*ChangeRecord, error) {
	history, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrChangeNotFound
	}
	return &history[len(history)-1], nil
}

func (s *ChangeStore) read() ([]ChangeRecord, error) {
	var history []ChangeRecord
	if _, err := readJSON(s.path, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *ChangeStore) preserveCorrupt() {
	target := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().Unix())
	if err := os.Rename(s.path, target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Error("Failed to preserve unreadable change history", "path", s.path, "error", err)
		}
		return
	}
	slog.Warn("Unreadable change history preserved", "path", target)
}
