package cfg

type Cfg struct {
	// Catalog source
	SitemapURL      string
	Locale          string
	SourceFile      string
	FetchTimeout    int
	FetchAttempts   int
	FetchRetryDelay int

	// Persistence and notifications
	DataDir        string
	WebhookURL     string
	NotifyMaxItems int

	// Application configuration
	Port              string
	BaseUrl           string
	SchedulerInterval int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// Source describes the catalog source in an optional YAML file. Non-zero
// values take precedence over flags and environment.
type Source struct {
	URL      string         `yaml:"url"`
	Locale   string         `yaml:"locale"`
	Settings SourceSettings `yaml:"settings"`
}

type SourceSettings struct {
	Timeout    int `yaml:"timeout"`     // seconds
	Attempts   int `yaml:"attempts"`
	RetryDelay int `yaml:"retry_delay"` // seconds
}
