package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/hitlog/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a hitlog configuration file without running analysis.

Checks:
  - YAML syntax
  - Report format, worker and batch settings
  - Top-N limits and bar width
  - Logging level and rotation settings
  - Webhook URLs and triggers`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Output dir:    %s\n", cfg.OutputDir)
	fmt.Fprintf(w, "  Report format: %s\n", cfg.ReportFormat)
	fmt.Fprintf(w, "  Workers:       %d (batch size %d)\n", cfg.Workers, cfg.BatchSize)
	fmt.Fprintf(w, "  Progress:      every %d lines\n", cfg.ProgressInterval)
	fmt.Fprintf(w, "  Top N:         status %d, methods %d, addresses %d, paths %d\n",
		cfg.Top.Status, cfg.Top.Methods, cfg.Top.Addresses, cfg.Top.Paths)
	fmt.Fprintf(w, "  Log level:     %s\n", cfg.Logging.Level)
	if cfg.Logging.Path != "" {
		fmt.Fprintf(w, "  Log file:      %s\n", cfg.Logging.Path)
	}
	if cfg.MetricsFile != "" {
		fmt.Fprintf(w, "  Metrics file:  %s\n", cfg.MetricsFile)
	}

	if len(cfg.Webhooks) > 0 {
		fmt.Fprintf(w, "\nWebhooks:\n")
		for i, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}
			fmt.Fprintf(w, "  %d. %s [%s] timeout %s\n", i+1, name, wh.Trigger, wh.Timeout)
		}
	}

	return nil
}
