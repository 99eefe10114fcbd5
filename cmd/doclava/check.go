package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vijaygarry/doclava/internal/apixml"
	"github.com/vijaygarry/doclava/internal/diag"
	"github.com/vijaygarry/doclava/internal/diagfmt"
	"github.com/vijaygarry/doclava/internal/pipeline"
	"github.com/vijaygarry/doclava/internal/surfacediff"
	"github.com/vijaygarry/doclava/internal/symsrc"
	"github.com/vijaygarry/doclava/internal/ui"
	"github.com/vijaygarry/doclava/internal/watch"
)

var checkCmd = &cobra.Command{
	Use:   "check <old-api> <new-api>",
	Short: "Report incompatibilities between two API versions",
	Long: `Check compares two API snapshots and reports every binary or source
incompatibility. Inputs may be snapshot XML or YAML/JSON symbol dumps.

Exit status is 0 when only warnings were reported, 1 when an error-level
diagnostic was reported, and 2 when an input could not be read.`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	addOutputFlags(checkCmd)
	addPipelineFlags(checkCmd)
	checkCmd.Flags().Bool("watch", false, "re-run whenever either input changes")
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("jobs", 0, "package pairs compared in parallel (0 = config or 1)")
	cmd.Flags().Bool("show-diff", false, "print a unified diff of each changed class")
	cmd.Flags().Bool("cache", false, "cache parsed inputs on disk")
	cmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	cmd.Flags().StringSlice("hidden-package", nil, "treat package as hidden (repeatable)")
}

// checkRun carries everything one comparison needs, so --watch can repeat it.
type checkRun struct {
	cmd         *cobra.Command
	loader      *pipeline.Loader
	newRegistry func() *diag.Registry
	out         outputOptions
	jobs        int
	showDiff    bool
	tui         bool
}

func newCheckRun(cmd *cobra.Command) (*checkRun, error) {
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
	jobs, err := intFlagOr(cmd, "jobs", s.cfg.Check.Jobs)
	if err != nil {
		return nil, err
	}
	showDiff, err := boolFlagOr(cmd, "show-diff", s.cfg.Check.ShowDiff)
	if err != nil {
		return nil, err
	}
	useCache, err := boolFlagOr(cmd, "cache", s.cfg.Check.Cache)
	if err != nil {
		return nil, err
	}
	uiStr, err := cmd.Flags().GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiStr)
	if err != nil {
		return nil, err
	}
	loader, err := s.newLoader(cmd, loaderFlags{cache: useCache, timings: out.timings})
	if err != nil {
		return nil, err
	}
	return &checkRun{
		cmd:         cmd,
		loader:      loader,
		newRegistry: newRegistry,
		out:         out,
		jobs:        max(jobs, 1),
		showDiff:    showDiff && out.format == diagfmt.FormatPretty,
		tui:         shouldUseTUI(mode) && !out.quiet,
	}, nil
}

// once compares the two inputs and prints the findings.
func (r *checkRun) once(ctx context.Context, oldPath, newPath string) error {
	reg := r.newRegistry()
	req := pipeline.CheckRequest{Old: oldPath, New: newPath, Jobs: r.jobs, ShowDiff: r.showDiff, Reporter: reg}

	var res pipeline.CheckResult
	var err error
	if r.tui {
		res, err = ui.Run("doclava check", []string{oldPath, newPath}, os.Stderr,
			func(sink pipeline.ProgressSink) (pipeline.CheckResult, error) {
				return r.loader.WithProgress(sink).Check(ctx, req)
			})
	} else {
		res, err = r.loader.Check(ctx, req)
	}
	if err != nil {
		return err
	}

	stdout := r.cmd.OutOrStdout()
	label := res.Old.Name + " -> " + res.New.Name
	if err := printReports(stdout, r.out, []labeled{{label: label, reg: reg}}); err != nil {
		return err
	}
	if len(res.Patches) > 0 {
		if err := writePatches(stdout, res.Patches); err != nil {
			return err
		}
	}
	printTimings(r.cmd.ErrOrStderr(), r.out.timings, r.loader.Timer())
	if reg.HadError() {
		return errFindings
	}
	return nil
}

func writePatches(w io.Writer, patches []surfacediff.Patch) error {
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return surfacediff.Write(w, patches)
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil && !errors.Is(err, errFindings)) }()

	run, err := newCheckRun(cmd)
	if err != nil {
		return err
	}
	watching, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("failed to get watch flag: %w", err)
	}
	ctx := cmd.Context()
	err = run.once(ctx, args[0], args[1])
	if !watching {
		return err
	}

	// In watch mode findings and malformed inputs are reported and the
	// loop goes on; the inputs may be mid-edit.
	report := func(err error) error {
		switch {
		case err == nil, errors.Is(err, errFindings):
			return nil
		case apixml.IsParseError(err), symsrc.IsLoadError(err):
			fmt.Fprintf(cmd.ErrOrStderr(), "doclava: %v\n", err)
			return nil
		default:
			return err
		}
	}
	if err := report(err); err != nil {
		return err
	}
	if !run.out.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "watching %s and %s (interrupt to stop)\n", args[0], args[1])
	}
	return watch.Files(ctx, args, watch.DefaultDebounce, func() error {
		if !run.out.quiet {
			fmt.Fprintln(cmd.ErrOrStderr(), "change detected, re-checking")
		}
		return run.once(ctx, args[0], args[1])
	}, report)
}
