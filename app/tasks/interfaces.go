package tasks

import (
	"context"

	"github.com/lysyi3m/catalog-watch/app/catalog"
	"github.com/lysyi3m/catalog-watch/app/store"
)

// TaskSchedulerInterface defines the interface for the periodic catalog loop.
// Used by the main application to start and stop background processing and
// by the web surface to report the loop's state.
// Example usage:
//
//	scheduler := NewScheduler(deps, time.Hour)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	Stats() Stats
}

type CatalogFetcher interface {
	Fetch(ctx context.Context) (*catalog.Catalog, error)
}

type SnapshotStore interface {
	Load() *catalog.Catalog
	Save(c *catalog.Catalog) (bool, error)
}

type ChangeStore interface {
	RecordChange(added, removed []string) (*store.ChangeRecord, error)
}

type Notifier interface {
	Notify(ctx context.Context, added, removed []string, changeID string) error
}

var (
	_ CatalogFetcher = (*catalog.Fetcher)(nil)
	_ SnapshotStore  = (*store.SnapshotStore)(nil)
	_ ChangeStore    = (*store.ChangeStore)(nil)
)
