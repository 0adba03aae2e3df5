package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/catalog-watch/app/metrics"
)

const (
	DefaultTimeout    = 10 * time.Minute
	DefaultAttempts   = 3
	DefaultRetryDelay = 2 * time.Second
)

type FetcherSettings struct {
	URL        string
	Locale     string
	UserAgent  string
	Timeout    time.Duration
	Attempts   int
	RetryDelay time.Duration
}

// Fetcher downloads the sitemap and turns it into a Catalog. It retries a
// failed download a fixed number of times with a fixed delay.
type Fetcher struct {
	settings   FetcherSettings
	httpClient *http.Client
	parser     *SitemapParser
	metrics    *metrics.Metrics
}

func NewFetcher(settings FetcherSettings, httpClient *http.Client, m *metrics.Metrics) *Fetcher {
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}
	if settings.Attempts <= 0 {
		settings.Attempts = DefaultAttempts
	}
	if settings.RetryDelay < 0 {
		settings.RetryDelay = DefaultRetryDelay
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Fetcher{
		settings:   settings,
		httpClient: httpClient,
		parser:     NewSitemapParser(settings.Locale),
		metrics:    m,
	}
}

// Fetch runs up to Attempts download attempts and returns the first
// successful catalog, or a *FetchError carrying the last failure.
func (f *Fetcher) Fetch(ctx context.Context) (*Catalog, error) {
	var lastErr error

	for attempt := 1; attempt <= f.settings.Attempts; attempt++ {
		products, err := f.fetchOnce(ctx)
		f.metrics.ObserveFetchAttempt(err)
		if err == nil {
			slog.Info("Catalog fetched", "url", f.settings.URL, "products", products.Len(), "attempt", attempt)
			return products, nil
		}

		lastErr = err
		if attempt == f.settings.Attempts {
			break
		}

		slog.Warn("Catalog fetch attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", f.settings.Attempts,
			"delay", f.settings.RetryDelay.String(),
			"error", err)

		if err := sleep(ctx, f.settings.RetryDelay); err != nil {
			lastErr = err
			break
		}
	}

	return nil, &FetchError{URL: f.settings.URL, Attempts: f.settings.Attempts, Err: lastErr}
}

func (f *Fetcher) fetchOnce(ctx context.Context) (*Catalog, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.settings.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, f.settings.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if f.settings.UserAgent != "" {
		req.Header.Set("User-Agent", f.settings.UserAgent)
	}

	slog.Debug("Downloading sitemap", "url", f.settings.URL)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return f.parser.Run(resp.Body)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
