package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vijaygarry/doclava/internal/diagfmt"
	"github.com/vijaygarry/doclava/internal/pipeline"
	"github.com/vijaygarry/doclava/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history <v1> <v2> [more...]",
	Short: "Check each consecutive pair of API versions",
	Long: `History compares every version with the one before it, so the first
version that broke compatibility is easy to spot. Every input is parsed and
built once even when it takes part in two comparisons.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runHistory,
}

func init() {
	addOutputFlags(historyCmd)
	addPipelineFlags(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) (err error) {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil && !errors.Is(err, errFindings)) }()

	run, err := newCheckRun(cmd)
	if err != nil {
		return err
	}
	opts := pipeline.HistoryOptions{
		Jobs:        run.jobs,
		ShowDiff:    run.showDiff,
		NewRegistry: run.newRegistry,
	}
	ctx := cmd.Context()

	var steps []pipeline.Step
	if run.tui {
		steps, err = ui.Run("doclava history", args, os.Stderr,
			func(sink pipeline.ProgressSink) ([]pipeline.Step, error) {
				return run.loader.WithProgress(sink).History(ctx, args, opts)
			})
	} else {
		steps, err = run.loader.History(ctx, args, opts)
	}
	if err != nil {
		return err
	}

	reports := make([]labeled, 0, len(steps))
	for _, step := range steps {
		reports = append(reports, labeled{label: step.Label, reg: step.Registry})
	}
	stdout := cmd.OutOrStdout()
	if err := printReports(stdout, run.out, reports); err != nil {
		return err
	}
	if run.out.format == diagfmt.FormatPretty {
		for _, step := range steps {
			if len(step.Result.Patches) == 0 {
				continue
			}
			fmt.Fprintf(stdout, "\n== %s\n", step.Label)
			if err := writePatches(stdout, step.Result.Patches); err != nil {
				return err
			}
		}
	}
	printTimings(cmd.ErrOrStderr(), run.out.timings, run.loader.Timer())
	if anyErrors(reports) {
		return errFindings
	}
	return nil
}
