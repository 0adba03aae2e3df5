package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestFetcher(url string, attempts int) *Fetcher {
	return NewFetcher(FetcherSettings{
		URL:        url,
		Locale:     "en-us",
		UserAgent:  "Catalog Watch/test",
		Timeout:    5 * time.Second,
		Attempts:   attempts,
		RetryDelay: 0,
	}, nil, nil)
}

func TestFetcherFetch(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(testSitemap))
	}))
	defer server.Close()

	products, err := newTestFetcher(server.URL, 3).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if products.Len() != 3 {
		t.Errorf("Expected 3 products, got %d", products.Len())
	}
	if userAgent != "Catalog Watch/test" {
		t.Errorf("Expected user agent to be sent, got %q", userAgent)
	}
}

func TestFetcherRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(testSitemap))
	}))
	defer server.Close()

	products, err := newTestFetcher(server.URL, 3).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected third attempt to succeed, got: %v", err)
	}

	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}
	if products.Len() != 3 {
		t.Errorf("Expected products from the third attempt, got %d", products.Len())
	}
}

func TestFetcherGivesUpAfterAllAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL, 3).Fetch(context.Background())
	if err == nil {
		t.Fatal("Expected an error after exhausting attempts")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected *FetchError, got %T", err)
	}
	if fetchErr.Attempts != 3 {
		t.Errorf("Expected 3 attempts recorded, got %d", fetchErr.Attempts)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected exactly 3 requests, got %d", calls.Load())
	}
}

func TestFetcherParseFailureIsRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"><url>`))
			return
		}
		_, _ = w.Write([]byte(testSitemap))
	}))
	defer server.Close()

	if _, err := newTestFetcher(server.URL, 2).Fetch(context.Background()); err != nil {
		t.Fatalf("Expected second attempt to succeed, got: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 attempts, got %d", calls.Load())
	}
}

func TestNewFetcherDefaults(t *testing.T) {
	f := NewFetcher(FetcherSettings{URL: "https://shop.example/sitemap.xml", RetryDelay: -1}, nil, nil)

	if f.settings.Timeout != DefaultTimeout {
		t.Errorf("Expected default timeout %v, got %v", DefaultTimeout, f.settings.Timeout)
	}
	if f.settings.Attempts != DefaultAttempts {
		t.Errorf("Expected default attempts %d, got %d", DefaultAttempts, f.settings.Attempts)
	}
	if f.settings.RetryDelay != DefaultRetryDelay {
		t.Errorf("Expected default retry delay %v, got %v", DefaultRetryDelay, f.settings.RetryDelay)
	}
	if f.parser.locale != DefaultLocale {
		t.Errorf("Expected default locale %s, got %s", DefaultLocale, f.parser.locale)
	}
}
