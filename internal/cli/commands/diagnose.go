package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/hitlog/pkg/config"
	"github.com/ccollicutt/hitlog/pkg/detector"
	"github.com/ccollicutt/hitlog/pkg/parser"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose    bool
	SampleSize int
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <log-file|glob>...",
		Short: "Check inputs and configuration before an analysis",
		Long: `Diagnose common problems before running an analysis.

Checks:
- Config file syntax and settings (with --config)
- Output directory is writable
- Input files exist, are readable, and gzip files decompress
- Sampled lines match a known access-log format
- Webhook settings (and connectivity with -v)

Example:
  hitlog diagnose /var/log/nginx/access.log
  hitlog --config hitlog.yaml diagnose -v '/var/log/apache2/**/*.gz'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), configPath(cmd), args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 20, "Lines to sample per file")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, cfgPath string, inputs []string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	cfg, result := checkConfig(ctx, cfgPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	results = append(results, checkOutputDir(cfg.OutputDir))
	results = append(results, checkInputs(ctx, inputs, opts)...)
	results = append(results, checkWebhooks(ctx, cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfig(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Configuration",
	}

	if path != "" {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			result.Status = "error"
			result.Message = fmt.Sprintf("Config file not found: %s", path)
			result.Suggests = []string{
				"Check the file path is correct",
				"Use 'hitlog detect <log-file> --write-config hitlog.yaml' to generate a starter config",
			}
			return nil, result
		}
		if err == nil && info.IsDir() {
			result.Status = "error"
			result.Message = "Path is a directory, not a file"
			return nil, result
		}
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	if path == "" {
		result.Message = "Using built-in defaults"
	} else {
		result.Message = fmt.Sprintf("Loaded %s", path)
	}
	result.Details = []string{
		fmt.Sprintf("Output dir: %s", cfg.OutputDir),
		fmt.Sprintf("Report format: %s", cfg.ReportFormat),
		fmt.Sprintf("Workers: %d", cfg.Workers),
	}
	return cfg, result
}

func checkOutputDir(dir string) DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Output Directory: %s", dir),
	}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		result.Status = "ok"
		result.Message = "Does not exist yet; it will be created"
		return result
	case err != nil:
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access directory: %v", err)
		return result
	case !info.IsDir():
		result.Status = "error"
		result.Message = "Path exists but is not a directory"
		result.Suggests = []string{"Choose another output_dir or remove the file"}
		return result
	}

	probe, err := os.CreateTemp(dir, ".hitlog-probe-*")
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Directory is not writable: %v", err)
		result.Suggests = []string{"Check directory permissions"}
		return result
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	result.Status = "ok"
	result.Message = "Writable"
	return result
}

func checkInputs(ctx context.Context, inputs []string, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	files, err := parser.ExpandGlobs(inputs)
	if err != nil {
		return append(results, DiagnosticResult{
			Check:   "Inputs",
			Status:  "error",
			Message: fmt.Sprintf("Invalid glob pattern: %v", err),
		})
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))
	readable := 0

	for _, file := range files {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Input: %s", file),
		}

		detected, err := d.DetectFromFile(ctx, file)
		switch {
		case errors.Is(err, parser.ErrInputNotFound):
			result.Status = "error"
			result.Message = "File does not exist"
			result.Suggests = []string{
				"Check if the log file path is correct",
				"Quote glob patterns so the shell does not expand them",
			}
		case err != nil:
			result.Status = "error"
			result.Message = fmt.Sprintf("Cannot read file: %v", err)
			if parser.IsGzip(file) {
				result.Suggests = []string{"The file ends in .gz but may not be gzip-compressed"}
			} else {
				result.Suggests = []string{"Check file permissions"}
			}
		case detected.SampledLines == 0:
			readable++
			result.Status = "warning"
			result.Message = "File is empty"
		case !detected.HasMatch():
			readable++
			result.Status = "error"
			result.Message = fmt.Sprintf("No access-log format matches any of %d sampled lines", detected.SampledLines)
			result.Details = []string{
				"Sample line that didn't match:",
				truncate(detected.UnparsedLine, 80),
			}
			result.Suggests = []string{
				"hitlog reads the common and combined formats, optionally prefixed by a virtual host",
			}
		default:
			readable++
			best := detected.BestMatch()
			result.Message = fmt.Sprintf("%s matches %d/%d sample lines",
				best.Format.Name, best.MatchCount, detected.SampledLines)
			result.Status = "ok"
			if detected.UnparsedShare() >= 0.5 {
				result.Status = "warning"
			}
			if detected.UnparsedLines > 0 {
				result.Details = []string{
					fmt.Sprintf("%d sampled line(s) will be counted as unparsed", detected.UnparsedLines),
					truncate(detected.UnparsedLine, 80),
				}
			}
			if detected.TimestampNote != "" {
				result.Details = append(result.Details, detected.TimestampNote)
			}
			if opts.Verbose {
				result.Details = append(result.Details, "Sample match:", truncate(best.SampleLine, 80))
			}
		}

		results = append(results, result)
	}

	if readable == 0 {
		results = append(results, DiagnosticResult{
			Check:   "Inputs Summary",
			Status:  "error",
			Message: "No readable log files found",
			Suggests: []string{
				"Ensure at least one log file exists and is readable",
			},
		})
	}

	return results
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== hitlog Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = styleSuccess.Render("PASS")
			okCount++
		case "warning":
			icon = styleWarn.Render("WARN")
			warnCount++
		case "error":
			icon = styleError.Render("FAIL")
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before running analysis.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nInputs are usable but have warnings.")
	} else {
		fmt.Fprintln(w, "\nEverything looks good!")
	}
}

func checkWebhooks(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check:   fmt.Sprintf("Webhook: %s", name),
			Status:  "ok",
			Message: fmt.Sprintf("Trigger: %s", wh.Trigger),
		}

		if wh.Token == "" && strings.Contains(wh.URL, "token") {
			result.Status = "warning"
			result.Details = []string{"URL mentions a token but no bearer token is set; an env var may be unset"}
		}
		if opts.Verbose {
			result.Details = append(result.Details,
				fmt.Sprintf("URL: %s", wh.URL),
				fmt.Sprintf("Timeout: %s", wh.Timeout),
			)
		}
		results = append(results, result)

		if opts.Verbose {
			conn := checkWebhookConnectivity(ctx, wh)
			conn.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, conn)
		}
	}

	return results
}

func checkWebhookConnectivity(ctx context.Context, wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Just do a HEAD request to check if the endpoint is reachable
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}
