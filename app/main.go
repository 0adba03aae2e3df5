package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/catalog-watch/app/api"
	"github.com/lysyi3m/catalog-watch/app/catalog"
	"github.com/lysyi3m/catalog-watch/app/cfg"
	"github.com/lysyi3m/catalog-watch/app/metrics"
	"github.com/lysyi3m/catalog-watch/app/notify"
	"github.com/lysyi3m/catalog-watch/app/store"
	"github.com/lysyi3m/catalog-watch/app/tasks"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting Catalog Watch",
		"version", appCfg.Version,
		"sitemap", appCfg.SitemapURL,
		"locale", appCfg.Locale,
		"data_dir", appCfg.DataDir)

	m := metrics.New()

	httpClient := &http.Client{}

	fetcher := catalog.NewFetcher(catalog.FetcherSettings{
		URL:        appCfg.SitemapURL,
		Locale:     appCfg.Locale,
		UserAgent:  appCfg.UserAgent,
		Timeout:    time.Duration(appCfg.FetchTimeout) * time.Second,
		Attempts:   appCfg.FetchAttempts,
		RetryDelay: time.Duration(appCfg.FetchRetryDelay) * time.Second,
	}, httpClient, m)

	snapshots := store.NewSnapshotStore(appCfg.DataDir)
	changes := store.NewChangeStore(appCfg.DataDir)

	deps := tasks.CycleDeps{
		Fetcher:   fetcher,
		Snapshots: snapshots,
		Changes:   changes,
		Metrics:   m,
	}

	if appCfg.WebhookURL != "" {
		webhookClient := &http.Client{Timeout: 30 * time.Second}
		deps.Notifier = notify.NewNotifier(appCfg.WebhookURL, appCfg.BaseUrl, appCfg.NotifyMaxItems, webhookClient)
		slog.Info("Notifications enabled", "max_items", appCfg.NotifyMaxItems)
	} else {
		slog.Warn("Notifications disabled (DISCORD_WEBHOOK_URL not set)")
	}

	scheduler := tasks.NewScheduler(deps, time.Duration(appCfg.SchedulerInterval)*time.Second)
	scheduler.Start()

	apiHandler := api.NewHandler(changes, snapshots, scheduler, appCfg.BaseUrl, appCfg.Version)
	server := api.NewServer(apiHandler, m.Handler())

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "base_url", appCfg.BaseUrl)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Waits for an in-flight cycle to complete.
	scheduler.Stop()
	slog.Info("Scheduler stopped")

	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
