// Package cli provides the command-line interface for hitlog.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/hitlog/internal/cli/commands"
	"github.com/ccollicutt/hitlog/pkg/analyzer"
)

// Exit codes returned by Execute.
const (
	ExitOK       = 0
	ExitError    = 2
	ExitCanceled = 130
)

// Execute runs the root command with the process arguments and returns the exit code.
// An interrupt or SIGTERM cancels the running analysis.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes the command line args against a fresh root command.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, analyzer.ErrCanceled):
		_, _ = fmt.Fprintln(stderr, commands.FormatCanceled())
		return ExitCanceled
	default:
		// SilenceErrors prevents Cobra from printing this itself
		_, _ = fmt.Fprintln(stderr, commands.FormatError(err))
		return ExitError
	}
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hitlog",
		Short: "Summarize Apache and Nginx access logs",
		Long: `hitlog is a batch analyzer for web server access logs.

It reads logs in the common and combined formats (optionally prefixed by a
virtual host), plain or gzip-compressed, and reports:
  - Total, parsed and unparsed lines
  - Bytes sent
  - Status code and HTTP method distributions
  - Top client addresses and requested paths

Each input file gets its own report in the output directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")

	// Add subcommands
	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
