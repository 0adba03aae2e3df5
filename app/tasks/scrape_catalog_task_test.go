package tasks

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/lysyi3m/catalog-watch/app/catalog"
	"github.com/lysyi3m/catalog-watch/app/metrics"
	"github.com/lysyi3m/catalog-watch/app/notify"
	"github.com/lysyi3m/catalog-watch/app/store"
)

func newTestDeps(t *testing.T, fetcher *MockFetcher, snapshots *MockSnapshotStore, notifier *MockNotifier) (CycleDeps, *store.ChangeStore) {
	t.Helper()

	changes := store.NewChangeStore(t.TempDir())
	deps := CycleDeps{
		Fetcher:   fetcher,
		Snapshots: snapshots,
		Changes:   changes,
		Metrics:   metrics.New(),
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	return deps, changes
}

func TestScrapeCatalogTaskRecordsChange(t *testing.T) {
	fetcher := &MockFetcher{results: []mockFetchResult{{catalog: catalog.New("b", "c", "d")}}}
	snapshots := &MockSnapshotStore{current: catalog.New("a", "b", "c")}
	notifier := &MockNotifier{}
	deps, changes := newTestDeps(t, fetcher, snapshots, notifier)

	task := NewScrapeCatalogTask(deps)
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	history, err := changes.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 change record, got %d", len(history))
	}
	if !slices.Equal(history[0].Added, []string{"d"}) || !slices.Equal(history[0].Removed, []string{"a"}) {
		t.Errorf("Unexpected change record: %+v", history[0])
	}

	if task.Change == nil || task.Change.ID != history[0].ID {
		t.Error("Expected task to expose the persisted change")
	}

	if got := snapshots.current.Items(); !slices.Equal(got, []string{"b", "c", "d"}) {
		t.Errorf("Expected snapshot [b c d], got %v", got)
	}

	calls := notifier.Calls()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(calls))
	}
	if calls[0].changeID != history[0].ID.String() {
		t.Errorf("Expected notification for %s, got %s", history[0].ID, calls[0].changeID)
	}
}

func TestScrapeCatalogTaskNoChange(t *testing.T) {
	fetcher := &MockFetcher{results: []mockFetchResult{{catalog: catalog.New("x", "y")}}}
	snapshots := &MockSnapshotStore{current: catalog.New("x", "y")}
	notifier := &MockNotifier{}
	deps, changes := newTestDeps(t, fetcher, snapshots, notifier)

	task := NewScrapeCatalogTask(deps)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	history, err := changes.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Errorf("Expected no change records, got %d", len(history))
	}
	if snapshots.writes != 0 {
		t.Errorf("Expected no snapshot writes, got %d", snapshots.writes)
	}
	if len(notifier.Calls()) != 0 {
		t.Errorf("Expected no notifications, got %d", len(notifier.Calls()))
	}
	if task.Change != nil {
		t.Error("Expected no change on the task")
	}
}

func TestScrapeCatalogTaskFetchFailureAbortsCycle(t *testing.T) {
	fetchErr := &catalog.FetchError{URL: "https://shop.example/sitemap.xml", Attempts: 3, Err: errMock}
	fetcher := &MockFetcher{results: []mockFetchResult{{err: fetchErr}}}
	snapshots := &MockSnapshotStore{current: catalog.New("a")}
	notifier := &MockNotifier{}
	deps, changes := newTestDeps(t, fetcher, snapshots, notifier)

	err := NewScrapeCatalogTask(deps).Execute(context.Background())

	var target *catalog.FetchError
	if !errors.As(err, &target) {
		t.Fatalf("Expected *catalog.FetchError, got %v", err)
	}

	history, _ := changes.List()
	if len(history) != 0 {
		t.Errorf("Expected no change records, got %d", len(history))
	}
	if snapshots.writes != 0 {
		t.Errorf("Expected no snapshot writes, got %d", snapshots.writes)
	}
	if len(notifier.Calls()) != 0 {
		t.Error("Expected no notifications")
	}
}

func TestScrapeCatalogTaskDeliveryFailureKeepsState(t *testing.T) {
	fetcher := &MockFetcher{results: []mockFetchResult{{catalog: catalog.New("a", "b")}}}
	snapshots := &MockSnapshotStore{current: catalog.New("a")}
	notifier := &MockNotifier{err: &notify.DeliveryError{StatusCode: 500, Body: "boom"}}
	deps, changes := newTestDeps(t, fetcher, snapshots, notifier)

	err := NewScrapeCatalogTask(deps).Execute(context.Background())

	var deliveryErr *notify.DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("Expected *notify.DeliveryError, got %v", err)
	}

	history, _ := changes.List()
	if len(history) != 1 {
		t.Errorf("Expected change history to be updated, got %d records", len(history))
	}
	if got := snapshots.current.Items(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Expected snapshot to be updated, got %v", got)
	}

	// The next cycle sees no difference and records nothing new.
	notifier.err = nil
	if err := NewScrapeCatalogTask(deps).Execute(context.Background()); err != nil {
		t.Fatalf("Expected next cycle to succeed, got: %v", err)
	}
	history, _ = changes.List()
	if len(history) != 1 {
		t.Errorf("Expected no duplicate change record, got %d records", len(history))
	}
}

func TestScrapeCatalogTaskSnapshotWriteFailure(t *testing.T) {
	fetcher := &MockFetcher{results: []mockFetchResult{{catalog: catalog.New("a")}}}
	writeErr := &store.WriteError{Path: "products.json", Err: errMock}
	snapshots := &MockSnapshotStore{saveErr: writeErr}
	deps, _ := newTestDeps(t, fetcher, snapshots, &MockNotifier{})

	err := NewScrapeCatalogTask(deps).Execute(context.Background())

	var target *store.WriteError
	if !errors.As(err, &target) {
		t.Fatalf("Expected *store.WriteError, got %v", err)
	}
}

func TestScrapeCatalogTaskWithoutNotifier(t *testing.T) {
	fetcher := &MockFetcher{results: []mockFetchResult{{catalog: catalog.New("a")}}}
	snapshots := &MockSnapshotStore{}
	deps, changes := newTestDeps(t, fetcher, snapshots, nil)

	if err := NewScrapeCatalogTask(deps).Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	history, _ := changes.List()
	if len(history) != 1 || !slices.Equal(history[0].Added, []string{"a"}) {
		t.Errorf("Expected first run to record every product as added, got %+v", history)
	}
}
