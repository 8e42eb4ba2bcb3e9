package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerdash/ledgerdash/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬  ┌─┐┌┬┐┌─┐┌─┐┬─┐┌┬┐┌─┐┌─┐┬ ┬
  │  ├┤  ││├─┤├┤ ├┬┘ ││├─┤└─┐├─┤
  ┴─┘└─┘─┴┘└─┘└─┘┴└──┴┘┴ ┴└─┘┴ ┴
`

// noColor disables ANSI colours in CLI output.
var noColor bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "ledgerdash",
		Short: "Route table and dev server for the ledgerdash dashboard",
		Long: `ledgerdash serves the personal finance dashboard during development.

It resolves every page request against the dashboard's route table
and hands the matched view and parameters to the client. Features:

  • Dev server on port 1420 with strict port binding
  • Client environment from .env files filtered by prefix
  • Live reload over WebSocket
  • Prometheus metrics and OpenTelemetry tracing`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor || os.Getenv("NO_COLOR") != "" {
				noColor = true
				errors.DisableColors()
			}
			setupLogging(cmd.ErrOrStderr(), verbose)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	rootCmd.AddCommand(
		devCmd(),
		initCmd(),
		routesCmd(),
		resolveCmd(),
		pathCmd(),
		envCmd(),
		explainCmd(),
		versionCmd(),
	)

	return rootCmd
}

// setupLogging installs the default slog logger.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

func paint(code, text string) string {
	if noColor {
		return text
	}
	return "\033[" + code + "m" + text + "\033[0m"
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint("32", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint("33", "⚠"), fmt.Sprintf(format, args...))
}
