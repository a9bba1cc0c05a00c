package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/hitlog/internal/logger"
	"github.com/ccollicutt/hitlog/pkg/analyzer"
	"github.com/ccollicutt/hitlog/pkg/config"
	"github.com/ccollicutt/hitlog/pkg/metrics"
	"github.com/ccollicutt/hitlog/pkg/output"
	"github.com/ccollicutt/hitlog/pkg/parser"
	"github.com/ccollicutt/hitlog/pkg/summary"
	"github.com/ccollicutt/hitlog/pkg/webhook"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	OutputDir   string
	Format      string
	Stdout      bool
	Workers     int
	Quiet       bool
	Verbose     bool
	MetricsFile string

	TopStatus    int
	TopMethods   int
	TopAddresses int
	TopPaths     int

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <log-file|glob>...",
		Short: "Analyze web server access logs",
		Long: `Analyze Apache/Nginx access logs and write a summary report per file.

Each line is matched against the combined and common log formats and their
virtual-host variants. Lines that match none are counted as unparsed.
Files ending in .gz are decompressed on the fly. Arguments may be globs,
including ** for recursive matches; every file gets its own report.

The report lists total, parsed and unparsed lines, bytes sent, status
codes, HTTP methods, top client addresses and top requested paths. It is
written to <output-dir>/<name>_analysis.txt (or .json).

Exit codes:
  0   - Analysis completed
  2   - Configuration or runtime error
  130 - Cancelled (Ctrl+C); no report is written`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "d", "", "Directory for reports (default from config, Results)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Report format (text|json)")
	cmd.Flags().BoolVar(&opts.Stdout, "stdout", false, "Print the report instead of writing a file")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Aggregation workers (0 = one per CPU)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "No banner or progress output")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Include format breakdown and timing in the report")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")

	cmd.Flags().IntVar(&opts.TopStatus, "top-status", 0, "Status codes to list")
	cmd.Flags().IntVar(&opts.TopMethods, "top-methods", 0, "HTTP methods to list")
	cmd.Flags().IntVar(&opts.TopAddresses, "top-addresses", 0, "Client addresses to list")
	cmd.Flags().IntVar(&opts.TopPaths, "top-paths", 0, "Requested paths to list")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_success", "When to fire webhook (on_success|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, configPath(cmd))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := applyAnalyzeFlags(cmd, cfg, opts); err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get(ctx)

	formatter, err := output.NewFormatter(cfg.ReportFormat, output.FormatOptions{Verbose: opts.Verbose})
	if err != nil {
		return err
	}

	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding inputs: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	if !opts.Quiet {
		printBanner(stderr)
	}

	var exporter *metrics.Exporter
	if cfg.MetricsFile != "" {
		exporter = metrics.NewExporter()
	}

	run := &analyzeRun{
		cfg:       cfg,
		opts:      opts,
		formatter: formatter,
		exporter:  exporter,
		webhooks:  cfg.Webhooks,
		stdout:    cmd.OutOrStdout(),
		stderr:    stderr,
	}

	var errs []error
	for _, file := range files {
		report, err := run.analyzeFile(ctx, file)
		if errors.Is(err, analyzer.ErrCanceled) {
			log.Warnw("analysis cancelled", "source", file)
			return err
		}
		run.sendWebhooks(ctx, file, report, err)
		if err != nil {
			log.Errorw("analysis failed", "source", file, "error", err)
			errs = append(errs, err)
		}
	}

	if exporter != nil {
		if err := exporter.WriteFile(cfg.MetricsFile); err != nil {
			errs = append(errs, err)
		} else {
			log.Infow("metrics written", "path", cfg.MetricsFile)
		}
	}

	return errors.Join(errs...)
}

// applyAnalyzeFlags overrides config values with flags the user set.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config, opts *AnalyzeOptions) error {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir = opts.OutputDir
	}
	if flags.Changed("format") {
		cfg.ReportFormat = opts.Format
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.Workers
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = opts.MetricsFile
	}
	if flags.Changed("top-status") {
		cfg.Top.Status = opts.TopStatus
	}
	if flags.Changed("top-methods") {
		cfg.Top.Methods = opts.TopMethods
	}
	if flags.Changed("top-addresses") {
		cfg.Top.Addresses = opts.TopAddresses
	}
	if flags.Changed("top-paths") {
		cfg.Top.Paths = opts.TopPaths
	}
	cfg.Webhooks = collectWebhooks(cfg, opts)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// analyzeRun carries the shared state of one analyze invocation.
type analyzeRun struct {
	cfg       *config.Config
	opts      *AnalyzeOptions
	formatter output.Formatter
	exporter  *metrics.Exporter
	webhooks  []config.WebhookConfig
	stdout    io.Writer
	stderr    io.Writer
}

// analyzeFile runs one independent analysis and persists its report.
func (r *analyzeRun) analyzeFile(ctx context.Context, path string) (*output.Report, error) {
	log := logger.Get(ctx).With("source", path)

	if !r.opts.Quiet {
		printInfo(r.stderr, "Analyzing %s ...", path)
	}
	log.Infow("analysis started", "workers", r.cfg.Workers)

	source := parser.NewFileSource(path)
	defer source.Close()

	analyzerOpts := []analyzer.AnalyzerOption{
		analyzer.WithWorkers(r.cfg.Workers),
		analyzer.WithBatchSize(r.cfg.BatchSize),
	}
	if !r.opts.Quiet {
		analyzerOpts = append(analyzerOpts, analyzer.WithProgress(r.cfg.ProgressInterval, func(n int64) {
			printInfo(r.stderr, "... processed %s lines", groupDigits(n))
			log.Debugw("progress", "lines", n)
		}))
	}

	result, err := analyzer.NewAnalyzer(analyzerOpts...).Analyze(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", path, err)
	}

	report := output.NewReport(result, r.cfg.Top, summary.WithBarWidth(r.cfg.BarWidth))

	if r.opts.Stdout {
		if err := r.formatter.Format(ctx, report, r.stdout); err != nil {
			return nil, fmt.Errorf("formatting output: %w", err)
		}
		fmt.Fprintln(r.stdout)
	} else {
		written, err := output.WriteReport(ctx, r.formatter, report, r.cfg.OutputDir)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", analyzer.ErrCanceled, ctx.Err())
			}
			return nil, err
		}
		if !r.opts.Quiet {
			printSuccess(r.stderr, "Analysis complete. Report saved to: %s", written)
		}
		log.Infow("report written", "path", written)
	}

	log.Infow("analysis finished",
		"total", report.Summary.Total,
		"parsed", report.Summary.Parsed,
		"unparsed", report.Summary.Unparsed,
		"duration", report.Metadata.Duration,
	)

	if r.exporter != nil {
		r.exporter.Observe(report)
	}

	return report, nil
}

// sendWebhooks sends the outcome of one file to all configured webhooks.
// Errors are logged but don't fail the analysis.
func (r *analyzeRun) sendWebhooks(ctx context.Context, source string, report *output.Report, runErr error) {
	if len(r.webhooks) == 0 {
		return
	}

	log := logger.Get(ctx)
	client := webhook.NewClient()
	payload := webhook.NewPayload(source, report, runErr)

	for _, wh := range r.webhooks {
		if !shouldFireWebhook(wh.Trigger, runErr == nil) {
			continue
		}

		resp := client.Send(ctx, payload, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			log.Infow("webhook sent", "webhook", name, "status", resp.StatusCode, "duration", resp.Duration)
		} else {
			log.Warnw("webhook failed", "webhook", name, "error", resp.Error)
			if !r.opts.Quiet {
				printWarn(r.stderr, "Webhook %s: failed (%v)", name, resp.Error)
			}
		}
	}
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnSuccess
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire for a run outcome.
func shouldFireWebhook(trigger config.WebhookTrigger, succeeded bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return succeeded
	}
}

// configPath returns the value of the persistent --config flag.
func configPath(cmd *cobra.Command) string {
	if f := cmd.Flag("config"); f != nil {
		return f.Value.String()
	}
	return ""
}
