// Package config provides configuration loading and validation for hitlog.
package config

import (
	"time"

	"github.com/ccollicutt/hitlog/pkg/summary"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// OutputDir is where reports are written.
	OutputDir string `yaml:"output_dir"`

	// ReportFormat is text or json.
	ReportFormat string `yaml:"report_format"`

	// ProgressInterval is the number of lines between progress messages.
	// Zero disables progress.
	ProgressInterval int64 `yaml:"progress_interval"`

	// Workers is the number of aggregation workers. Zero uses one per CPU.
	Workers int `yaml:"workers"`

	// BatchSize is the number of lines per parallel batch.
	BatchSize int `yaml:"batch_size"`

	// BarWidth is the width of a full-scale report bar.
	BarWidth int `yaml:"bar_width"`

	// Top limits the rows of each ranked table.
	Top summary.TopN `yaml:"top"`

	// MetricsFile, when set, receives the run counters in Prometheus
	// text format.
	MetricsFile string `yaml:"metrics_file,omitempty"`

	Logging  LoggingConfig   `yaml:"logging"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Path is a log file. Empty logs to stderr.
	Path string `yaml:"path,omitempty"`

	// Rotation settings, used only with Path.
	MaxSize    int  `yaml:"max_size"` // megabytes
	MaxBackups int  `yaml:"max_backups"`
	MaxAge     int  `yaml:"max_age"` // days
	Compress   bool `yaml:"compress"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnSuccess fires after every completed analysis (default).
	WebhookTriggerOnSuccess WebhookTrigger = "on_success"
	// WebhookTriggerAlways fires after every analysis, including failed ones.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis results.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_success" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
