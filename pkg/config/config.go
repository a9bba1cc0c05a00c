package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file. An empty path yields the
// defaults. Environment overrides apply in both cases.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and fills in derived defaults.
func Validate(cfg *Config) error {
	if cfg.OutputDir == "" {
		return errors.New("output_dir: must not be empty")
	}

	switch cfg.ReportFormat {
	case "text", "json":
	case "":
		cfg.ReportFormat = "text"
	default:
		return fmt.Errorf("report_format: invalid format %q (must be text or json)", cfg.ReportFormat)
	}

	if cfg.ProgressInterval < 0 {
		return errors.New("progress_interval: must be >= 0")
	}

	if cfg.Workers < 0 {
		return errors.New("workers: must be >= 0")
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	if cfg.BatchSize < 1 {
		return errors.New("batch_size: must be >= 1")
	}

	if cfg.BarWidth < 1 {
		return errors.New("bar_width: must be >= 1")
	}

	if err := validateTop(cfg); err != nil {
		return fmt.Errorf("top: %w", err)
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateTop(cfg *Config) error {
	limits := []struct {
		name  string
		value int
	}{
		{"status", cfg.Top.Status},
		{"methods", cfg.Top.Methods},
		{"addresses", cfg.Top.Addresses},
		{"paths", cfg.Top.Paths},
	}
	for _, l := range limits {
		if l.value < 1 {
			return fmt.Errorf("%s must be >= 1, got %d", l.name, l.value)
		}
	}
	return nil
}

func validateLogging(lc *LoggingConfig) error {
	switch strings.ToLower(lc.Level) {
	case "debug", "info", "warn", "error":
		lc.Level = strings.ToLower(lc.Level)
	case "":
		lc.Level = DefaultLogLevel
	default:
		return fmt.Errorf("invalid level %q (must be debug, info, warn, or error)", lc.Level)
	}

	if lc.MaxSize < 0 || lc.MaxBackups < 0 || lc.MaxAge < 0 {
		return errors.New("rotation settings must be >= 0")
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	// Validate URL format
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	// Validate trigger if specified
	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerOnSuccess, WebhookTriggerAlways, WebhookTriggerNever:
			// Valid
		default:
			return fmt.Errorf("invalid trigger %q (must be on_success, always, or never)", wh.Trigger)
		}
	} else {
		wh.Trigger = WebhookTriggerOnSuccess
	}

	// Default timeout
	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}

	// Handle $VAR format (no braces)
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		varName := s[1:]
		return os.Getenv(varName)
	}

	return s
}
