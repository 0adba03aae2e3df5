package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/catalog-watch/app/catalog"
	"github.com/lysyi3m/catalog-watch/app/metrics"
	"github.com/lysyi3m/catalog-watch/app/store"
)

// CycleDeps holds the collaborators of one cycle. Notifier may be nil, in
// which case notification is skipped.
type CycleDeps struct {
	Fetcher   CatalogFetcher
	Snapshots SnapshotStore
	Changes   ChangeStore
	Notifier  Notifier
	Metrics   *metrics.Metrics
}

type ScrapeCatalogTask struct {
	Task
	deps CycleDeps

	// Change is set once a change record has been persisted.
	Change *store.ChangeRecord
}

func NewScrapeCatalogTask(deps CycleDeps) *ScrapeCatalogTask {
	return &ScrapeCatalogTask{
		Task: NewTask(TaskTypeScrapeCatalog),
		deps: deps,
	}
}

// Execute runs fetch, diff, record, notify and snapshot save in that order.
// A failed notification does not prevent the snapshot from being saved; it
// is returned after the snapshot step.
func (t *ScrapeCatalogTask) Execute(ctx context.Context) error {
	current, err := t.deps.Fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}
	t.deps.Metrics.SetCatalogSize(current.Len())

	previous := t.deps.Snapshots.Load()
	added, removed := catalog.Diff(previous, current)

	record, err := t.deps.Changes.RecordChange(added, removed)
	if err != nil {
		return fmt.Errorf("failed to record change: %w", err)
	}

	var notifyErr error
	if record != nil {
		t.Change = record
		t.deps.Metrics.ObserveChange(len(added), len(removed))
		notifyErr = t.notify(ctx, record)
	}

	written, err := t.deps.Snapshots.Save(current)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	if written {
		t.deps.Metrics.ObserveSnapshotWrite()
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"products", current.Len(),
		"added", len(added),
		"removed", len(removed),
		"snapshot_written", written)

	if notifyErr != nil {
		return fmt.Errorf("failed to notify: %w", notifyErr)
	}

	return nil
}

func (t *ScrapeCatalogTask) notify(ctx context.Context, record *store.ChangeRecord) error {
	if t.deps.Notifier == nil {
		slog.Debug("Notifier not configured, skipping notification", "change_id", record.ID.String())
		return nil
	}

	err := t.deps.Notifier.Notify(ctx, record.Added, record.Removed, record.ID.String())
	t.deps.Metrics.ObserveNotification(err)
	if err != nil {
		slog.Error("Failed to deliver notification", "change_id", record.ID.String(), "error", err)
		return err
	}

	slog.Info("Notification sent", "change_id", record.ID.String())
	return nil
}
