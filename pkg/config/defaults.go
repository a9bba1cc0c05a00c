package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ccollicutt/hitlog/pkg/analyzer"
	"github.com/ccollicutt/hitlog/pkg/output"
	"github.com/ccollicutt/hitlog/pkg/summary"
)

// Default values for configuration.
const (
	DefaultWebhookTimeout = 10 * time.Second
	DefaultLogLevel       = "warn"
	DefaultLogMaxSize     = 10
	DefaultLogMaxBackups  = 3
	DefaultLogMaxAge      = 28
)

// Environment variable names.
const (
	EnvOutputDir = "HITLOG_OUTPUT_DIR"
	EnvWorkers   = "HITLOG_WORKERS"
	EnvLogLevel  = "HITLOG_LOG_LEVEL"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:        output.DefaultOutputDir,
		ReportFormat:     "text",
		ProgressInterval: analyzer.DefaultProgressInterval,
		Workers:          1,
		BatchSize:        analyzer.DefaultBatchSize,
		BarWidth:         summary.BarWidth,
		Top:              summary.DefaultTopN(),
		Logging: LoggingConfig{
			Level:      DefaultLogLevel,
			MaxSize:    DefaultLogMaxSize,
			MaxBackups: DefaultLogMaxBackups,
			MaxAge:     DefaultLogMaxAge,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() error {
	if dir := os.Getenv(EnvOutputDir); dir != "" {
		c.OutputDir = dir
	}

	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid worker count %q", EnvWorkers, v)
		}
		c.Workers = n
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}

	return nil
}
