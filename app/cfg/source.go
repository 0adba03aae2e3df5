package cfg

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSource reads and validates a catalog source file.
func LoadSource(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	var source Source
	if err := yaml.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateSource(&source); err != nil {
		return nil, fmt.Errorf("invalid source file %s: %w", path, err)
	}

	return &source, nil
}

func validateSource(source *Source) error {
	if source.URL == "" {
		return fmt.Errorf("source URL is required")
	}
	u, err := url.Parse(source.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("source URL must be absolute: %q", source.URL)
	}

	if source.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if source.Settings.Attempts < 0 {
		return fmt.Errorf("attempts must be non-negative")
	}
	if source.Settings.RetryDelay < 0 {
		return fmt.Errorf("retry delay must be non-negative")
	}

	return nil
}
