package api

import (
	"time"

	"github.com/lysyi3m/catalog-watch/app/store"
	"github.com/lysyi3m/catalog-watch/app/tasks"
)

type ChangeReader interface {
	List() ([]store.ChangeRecord, error)
	Lookup(id string) (*store.ChangeRecord, error)
	Latest() (*store.ChangeRecord, error)
}

type SnapshotReader interface {
	Raw() ([]byte, error)
}

var (
	_ ChangeReader   = (*store.ChangeStore)(nil)
	_ SnapshotReader = (*store.SnapshotStore)(nil)
)

type Handler struct {
	changes   ChangeReader
	snapshots SnapshotReader
	scheduler tasks.TaskSchedulerInterface
	generator *Generator
	version   string
}

type productView struct {
	URL   string
	Label string
}

type changeView struct {
	ID        string
	Timestamp time.Time
	Added     []productView
	Removed   []productView
}
