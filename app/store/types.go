package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	SnapshotFileName = "products.json"
	ChangesFileName  = "changes.json"
)

var ErrChangeNotFound = errors.New("change record not found")

// ChangeRecord describes the products added and removed in one cycle.
// It is immutable once appended to the history.
type ChangeRecord struct {
	ID        uuid.UUID `json:"Id"`
	Timestamp time.Time `json:"Timestamp"`
	Added     []string  `json:"Added"`
	Removed   []string  `json:"Removed"`
}

// ReadError reports an unreadable or corrupt persisted file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError reports a failed file replacement. The previous file content is
// left in place.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
