package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vijaygarry/doclava/internal/closure"
	"github.com/vijaygarry/doclava/internal/diagfmt"
)

var closureCmd = &cobra.Command{
	Use:   "closure <input>",
	Short: "List the classes that must stay visible",
	Long: `Closure prints every class of the visible set, one per line. Classes
whose hidden superclass was cut are marked. With --all, members of the set
that would not be written (hidden, external or outside the stub packages)
are listed too.`,
	Args: cobra.ExactArgs(1),
	RunE: runClosure,
}

func init() {
	addOutputFlags(closureCmd)
	addClosureFlags(closureCmd)
	closureCmd.Flags().Bool("all", false, "include members that are not emitted")
}

func runClosure(cmd *cobra.Command, args []string) (err error) {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil && !errors.Is(err, errFindings)) }()

	run, err := newClosureRun(cmd)
	if err != nil {
		return err
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("failed to get all flag: %w", err)
	}
	set, err := run.loader.Closure(cmd.Context(), args[0], run.opts, run.reg)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	if run.out.format == diagfmt.FormatPretty {
		if err := listClasses(stdout, set, all); err != nil {
			return err
		}
		if run.reg.Len() > 0 || !run.out.quiet {
			fmt.Fprintln(stdout)
		}
	}
	if err := printReports(stdout, run.out, []labeled{{reg: run.reg}}); err != nil {
		return err
	}
	printTimings(cmd.ErrOrStderr(), run.out.timings, run.loader.Timer())
	if run.reg.HadError() {
		return errFindings
	}
	return nil
}

func listClasses(w io.Writer, set *closure.Set, all bool) error {
	for _, c := range set.Classes() {
		emitted := set.Emitted(c)
		if !emitted && !all {
			continue
		}
		line := c.QualifiedName
		if !emitted {
			line += " (not emitted)"
		}
		if sup, ok := set.Repaired(c); ok {
			line += " (hidden superclass " + sup.QualifiedName + " removed)"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
