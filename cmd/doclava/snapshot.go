package main

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/vijaygarry/doclava/internal/closure"
	"github.com/vijaygarry/doclava/internal/diag"
	"github.com/vijaygarry/doclava/internal/pipeline"
	"github.com/vijaygarry/doclava/internal/ui"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <input>",
	Short: "Write the visible API of an input as snapshot XML",
	Long: `Snapshot builds the input, closes its visible set and writes the result
in the snapshot XML layout that check reads. Diagnostics raised while
closing the set go to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	addOutputFlags(snapshotCmd)
	addClosureFlags(snapshotCmd)
	snapshotCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")
	snapshotCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

func addClosureFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("hidden-package", nil, "treat package as hidden (repeatable)")
	cmd.Flags().StringSlice("stub-package", nil, "only emit classes of this package (repeatable)")
	cmd.Flags().Bool("cache", false, "cache parsed inputs on disk")
}

// closureRun is the setup shared by snapshot and closure.
type closureRun struct {
	loader *pipeline.Loader
	reg    *diag.Registry
	out    outputOptions
	opts   closure.Options
}

func newClosureRun(cmd *cobra.Command) (*closureRun, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	out, err := readOutputOptions(cmd, s)
	if err != nil {
		return nil, err
	}
	newRegistry, err := s.registryFactory(cmd)
	if err != nil {
		return nil, err
	}
	useCache, err := boolFlagOr(cmd, "cache", s.cfg.Check.Cache)
	if err != nil {
		return nil, err
	}
	stubs, err := cmd.Flags().GetStringSlice("stub-package")
	if err != nil {
		return nil, fmt.Errorf("failed to get stub-package flag: %w", err)
	}
	if len(stubs) == 0 {
		stubs = slices.Clone(s.cfg.Closure.StubPackages)
	}
	loader, err := s.newLoader(cmd, loaderFlags{cache: useCache, timings: out.timings})
	if err != nil {
		return nil, err
	}
	return &closureRun{
		loader: loader,
		reg:    newRegistry(),
		out:    out,
		opts:   closure.Options{StubPackages: stubs},
	}, nil
}

func runSnapshot(cmd *cobra.Command, args []string) (err error) {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil && !errors.Is(err, errFindings)) }()

	run, err := newClosureRun(cmd)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	uiStr, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiStr)
	if err != nil {
		return err
	}
	// The progress view would interleave with XML on stdout.
	tui := shouldUseTUI(mode) && !run.out.quiet && output != "-" && output != ""

	ctx := cmd.Context()
	stdout := cmd.OutOrStdout()
	work := func(l *pipeline.Loader) (*closure.Set, error) {
		set, err := l.Closure(ctx, args[0], run.opts, run.reg)
		if err != nil {
			return nil, err
		}
		return set, l.WriteAPI(ctx, set, output, stdout)
	}
	if tui {
		_, err = ui.Run("doclava snapshot", []string{args[0]}, os.Stderr,
			func(sink pipeline.ProgressSink) (*closure.Set, error) {
				return work(run.loader.WithProgress(sink))
			})
	} else {
		_, err = work(run.loader)
	}
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if run.reg.Len() > 0 {
		if err := printReports(stderr, run.out, []labeled{{reg: run.reg}}); err != nil {
			return err
		}
	}
	printTimings(stderr, run.out.timings, run.loader.Timer())
	if run.reg.HadError() {
		return errFindings
	}
	return nil
}
