package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vijaygarry/doclava/internal/version"
)

// Exit statuses.
const (
	exitOK       = 0
	exitFindings = 1
	exitFailure  = 2
)

// errFindings marks a run that completed but reported error-level
// diagnostics. Its message is never printed.
var errFindings = errors.New("error-level diagnostics reported")

var rootCmd = &cobra.Command{
	Use:   "doclava",
	Short: "Java API surface model and compatibility checker",
	Long: `doclava builds a model of a Java API from snapshot XML or symbol dumps,
computes the set of classes that must stay visible, and reports binary and
source incompatibilities between API versions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(closureCmd)
	rootCmd.AddCommand(codesCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 0, "maximum number of diagnostics to show (0 = from config, else unlimited)")
	pf.String("config", "", "settings file (default: nearest doclava.toml)")
	pf.IntSlice("hide", nil, "hide diagnostic code N (repeatable)")
	pf.IntSlice("warning", nil, "report diagnostic code N as a warning (repeatable)")
	pf.IntSlice("error", nil, "report diagnostic code N as an error (repeatable)")
	pf.Bool("warnings-as-errors", false, "promote every warning to an error")
	pf.String("trace", "", "write a trace to file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept in ring mode")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")

	rootCmd.PersistentPreRunE = startProfiling
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stopProfiling()
	code := exitCode(err)
	stop()
	os.Exit(code)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errFindings):
		return exitFindings
	default:
		fmt.Fprintf(os.Stderr, "doclava: %v\n", err)
		return exitFailure
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
