package tasks

import (
	"context"
	"errors"
	"sync"

	"github.com/lysyi3m/catalog-watch/app/catalog"
)

// MockFetcher returns the queued results in order, repeating the last one.
type MockFetcher struct {
	mu      sync.Mutex
	results []mockFetchResult
	calls   int
	ctxErrs []error
}

type mockFetchResult struct {
	catalog *catalog.Catalog
	err     error
	panic   bool
	block   chan struct{}
}

var _ CatalogFetcher = (*MockFetcher)(nil)

func (m *MockFetcher) Fetch(ctx context.Context) (*catalog.Catalog, error) {
	m.mu.Lock()
	idx := min(m.calls, len(m.results)-1)
	m.calls++
	result := m.results[idx]
	m.mu.Unlock()

	if result.block != nil {
		<-result.block
	}

	m.mu.Lock()
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	m.mu.Unlock()

	if result.panic {
		panic("sitemap exploded")
	}
	return result.catalog, result.err
}

func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockNotifier records every delivery.
type MockNotifier struct {
	mu    sync.Mutex
	calls []mockNotification
	err   error
}

type mockNotification struct {
	added    []string
	removed  []string
	changeID string
}

var _ Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Notify(ctx context.Context, added, removed []string, changeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, mockNotification{added: added, removed: removed, changeID: changeID})
	return m.err
}

func (m *MockNotifier) Calls() []mockNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mockNotification(nil), m.calls...)
}

// MockSnapshotStore keeps the snapshot in memory and counts writes.
type MockSnapshotStore struct {
	current *catalog.Catalog
	writes  int
	saveErr error
}

var _ SnapshotStore = (*MockSnapshotStore)(nil)

func (m *MockSnapshotStore) Load() *catalog.Catalog {
	if m.current == nil {
		return catalog.New()
	}
	return catalog.New(m.current.Items()...)
}

func (m *MockSnapshotStore) Save(c *catalog.Catalog) (bool, error) {
	if m.saveErr != nil {
		return false, m.saveErr
	}
	if m.current != nil && m.current.Equal(c) {
		return false, nil
	}
	m.writes++
	m.current = catalog.New(c.Items()...)
	return true, nil
}

var errMock = errors.New("mock error")
