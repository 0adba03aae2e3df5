package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Catalog source
	SitemapURL      string `long:"sitemap-url" env:"SITEMAP_URL" description:"URL of the sitemap listing the catalog"`
	Locale          string `long:"locale" env:"LOCALE" default:"en-us" description:"hreflang of the product links to track"`
	SourceFile      string `long:"source-file" env:"SOURCE_FILE" description:"Optional YAML file describing the catalog source"`
	FetchTimeout    int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"600" description:"Timeout of one fetch attempt in seconds"`
	FetchAttempts   int    `long:"fetch-attempts" env:"FETCH_ATTEMPTS" default:"3" description:"Fetch attempts per cycle"`
	FetchRetryDelay int    `long:"fetch-retry-delay" env:"FETCH_RETRY_DELAY" default:"2" description:"Delay between fetch attempts in seconds"`

	// Persistence and notifications
	DataDir        string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory holding the snapshot and change history"`
	WebhookURL     string `long:"webhook-url" env:"DISCORD_WEBHOOK_URL" description:"Discord webhook URL (notifications are disabled when empty)"`
	NotifyMaxItems int    `long:"notify-max-items" env:"NOTIFY_MAX_ITEMS" default:"10" description:"Products listed per section of a notification"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL used in notification links (e.g., https://watch.example.com)"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"3600" description:"Scheduler interval in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Catalog Watch/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses args and the environment. It returns nil, nil when help was
// requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		SitemapURL:        raw.SitemapURL,
		Locale:            raw.Locale,
		SourceFile:        raw.SourceFile,
		FetchTimeout:      raw.FetchTimeout,
		FetchAttempts:     raw.FetchAttempts,
		FetchRetryDelay:   raw.FetchRetryDelay,
		DataDir:           raw.DataDir,
		WebhookURL:        raw.WebhookURL,
		NotifyMaxItems:    raw.NotifyMaxItems,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		SchedulerInterval: raw.SchedulerInterval,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if cfg.SourceFile != "" {
		source, err := LoadSource(cfg.SourceFile)
		if err != nil {
			return nil, err
		}
		cfg.applySource(source)
	}

	if cfg.BaseUrl == "" {
		cfg.BaseUrl = "http://localhost:" + cfg.Port
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

func (c *Cfg) applySource(source *Source) {
	if source.URL != "" {
		c.SitemapURL = source.URL
	}
	if source.Locale != "" {
		c.Locale = source.Locale
	}
	if source.Settings.Timeout > 0 {
		c.FetchTimeout = source.Settings.Timeout
	}
	if source.Settings.Attempts > 0 {
		c.FetchAttempts = source.Settings.Attempts
	}
	if source.Settings.RetryDelay > 0 {
		c.FetchRetryDelay = source.Settings.RetryDelay
	}
}

func (c *Cfg) validate() error {
	if c.SitemapURL == "" {
		return fmt.Errorf("sitemap URL is required (--sitemap-url, SITEMAP_URL or source file)")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.SchedulerInterval <= 0 {
		return fmt.Errorf("scheduler interval must be positive")
	}
	if c.FetchTimeout < 0 || c.FetchAttempts < 0 || c.FetchRetryDelay < 0 {
		return fmt.Errorf("fetch settings must be non-negative")
	}
	if c.NotifyMaxItems < 0 {
		return fmt.Errorf("notify max items must be non-negative")
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			slog.Debug("Timezone configured", "timezone", timezone)
		}
	}
	return nil
}
