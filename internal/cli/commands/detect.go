package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/hitlog/pkg/config"
	"github.com/ccollicutt/hitlog/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect the access-log format of a file",
		Long: `Sample the first lines of a log file and report which access-log
format they match.

Formats, in the order they are tried:
  - Combined with virtual host
  - Common with virtual host
  - Combined (Apache/Nginx)
  - Common Log Format

Reports per-format match counts, the best match and the share of lines no
format recognizes. Optionally writes a starter config with --write-config.

Example:
  hitlog detect /var/log/nginx/access.log
  hitlog detect --sample 500 /var/log/apache2/access.log.1.gz
  hitlog detect -w hitlog.yaml /var/log/nginx/access.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all detected formats, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	result, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	w := cmd.OutOrStdout()

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(w, result, logFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(w, result, logFile, opts)
	case "text", "":
		return outputDetectText(w, result, logFile, opts)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Access Log Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines recognized: %d\n", result.ParsedLines)
	fmt.Fprintf(w, "Unparsed share: %.1f%%\n", result.UnparsedShare()*100)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No access-log format detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: hitlog understands the common and combined formats, optionally")
		fmt.Fprintln(w, "prefixed with a virtual host. Check the first few lines manually.")
		if result.UnparsedLine != "" {
			fmt.Fprintf(w, "\nFirst unrecognized line:\n  %s\n", truncate(result.UnparsedLine, 120))
		}
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Format: %s (%s)\n", best.Format.Title, best.Format.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d lines matched)\n",
		best.Confidence*100, best.MatchCount, result.SampledLines)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", truncate(best.SampleLine, 120))
	if !best.ParsedTime.IsZero() {
		fmt.Fprintf(w, "Timestamp parsed as: %s\n", best.ParsedTime.Format("2006-01-02 15:04:05 -0700"))
	}
	fmt.Fprintln(w)

	if result.TimestampNote != "" {
		fmt.Fprintf(w, "Note: %s\n", result.TimestampNote)
		fmt.Fprintln(w)
	}

	if result.UnparsedLines > 0 && result.UnparsedLine != "" {
		fmt.Fprintf(w, "First unrecognized line:\n  %s\n\n", truncate(result.UnparsedLine, 120))
	}

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Other formats detected ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%d lines, %.1f%%)\n", i+2, m.Format.Name, m.MatchCount, m.Confidence*100)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a format match in JSON output.
type JSONMatch struct {
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	Pattern    string  `json:"pattern"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	BadTimes   int     `json:"bad_timestamps,omitempty"`
	SampleLine string  `json:"sample_line"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File          string      `json:"file"`
	Matches       []JSONMatch `json:"matches"`
	SampledLines  int         `json:"sampled_lines"`
	ParsedLines   int         `json:"parsed_lines"`
	UnparsedLines int         `json:"unparsed_lines"`
	UnparsedShare float64     `json:"unparsed_share"`
	TimestampNote string      `json:"timestamp_note,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	out := JSONOutput{
		File:          logFile,
		SampledLines:  result.SampledLines,
		ParsedLines:   result.ParsedLines,
		UnparsedLines: result.UnparsedLines,
		UnparsedShare: result.UnparsedShare(),
		TimestampNote: result.TimestampNote,
		Matches:       make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		out.Matches = append(out.Matches, JSONMatch{
			Name:       m.Format.Name,
			Title:      m.Format.Title,
			Pattern:    m.Format.PatternStr,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			BadTimes:   m.BadTimes,
			SampleLine: m.SampleLine,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeStarterConfig writes a config file holding the defaults.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, logFile, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	content, err := generateStarterConfig(logFile, result.BestMatch())
	if err != nil {
		return err
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig renders the default config with a header naming
// the detected format. match may be nil.
func generateStarterConfig(logFile string, match *detector.FormatMatch) ([]byte, error) {
	body, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}

	detected := "none"
	if match != nil {
		detected = fmt.Sprintf("%s (%.0f%% confidence)", match.Format.Name, match.Confidence*100)
	}

	header := fmt.Sprintf(`# hitlog configuration
# Generated by: hitlog detect %s
# Detected format: %s
#
# Usage: hitlog --config <this-file> analyze %s
#
# Webhooks (optional):
# webhooks:
#   - name: ops
#     url: https://example.com/hook
#     token: ${HITLOG_WEBHOOK_TOKEN}
#     trigger: on_success
#     timeout: 10s

`, logFile, detected, logFile)

	return append([]byte(header), body...), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
