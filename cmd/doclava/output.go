package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vijaygarry/doclava/internal/diag"
	"github.com/vijaygarry/doclava/internal/diagfmt"
	"github.com/vijaygarry/doclava/internal/observ"
	"github.com/vijaygarry/doclava/internal/version"
)

// labeled is one registry plus the header it is printed under.
type labeled struct {
	label string
	reg   *diag.Registry
}

type outputOptions struct {
	format  diagfmt.Format
	quiet   bool
	pretty  diagfmt.PrettyOpts
	json    diagfmt.JSONOpts
	sarif   diagfmt.SarifRunMeta
	timings bool
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "diagnostics format (pretty|json|sarif)")
	cmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
}

func readOutputOptions(cmd *cobra.Command, s settings) (outputOptions, error) {
	var opts outputOptions
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	if opts.format, err = diagfmt.ParseFormat(formatStr); err != nil {
		return opts, err
	}
	pathStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return opts, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, err := diagfmt.ParsePathMode(pathStr)
	if err != nil {
		return opts, err
	}
	colorStr, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return opts, fmt.Errorf("failed to get color flag: %w", err)
	}
	cm, err := readColorMode(colorStr)
	if err != nil {
		return opts, err
	}
	if opts.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	maxDiags, err := s.maxDiagnostics(cmd)
	if err != nil {
		return opts, err
	}
	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = ""
	}

	opts.pretty = diagfmt.PrettyOpts{
		Color:    cm.enabled(os.Stdout),
		PathMode: pathMode,
		BaseDir:  baseDir,
		Max:      maxDiags,
		Summary:  !opts.quiet,
	}
	opts.json = diagfmt.JSONOpts{
		PathMode:    pathMode,
		BaseDir:     baseDir,
		Max:         maxDiags,
		ToolVersion: version.Version,
	}
	opts.sarif = diagfmt.SarifRunMeta{
		ToolName:       "doclava",
		ToolVersion:    version.Version,
		InvocationArgs: os.Args[1:],
	}
	return opts, nil
}

// printReports renders every registry to w. Pretty output puts a header
// above each registry when there is more than one; JSON writes one
// document with a report per registry; SARIF merges them into one run.
func printReports(w io.Writer, opts outputOptions, reports []labeled) error {
	switch opts.format {
	case diagfmt.FormatJSON:
		rs := make([]diagfmt.ReportJSON, 0, len(reports))
		for _, r := range reports {
			rs = append(rs, diagfmt.BuildReport(r.label, r.reg, opts.json))
		}
		return diagfmt.WriteJSON(w, diagfmt.NewOutput(opts.json, rs...))
	case diagfmt.FormatSarif:
		merged := diag.NewRegistry()
		for _, r := range reports {
			merged.Merge(r.reg)
		}
		return diagfmt.Sarif(w, merged, opts.sarif)
	default:
		for _, r := range reports {
			if len(reports) > 1 && r.label != "" {
				if _, err := fmt.Fprintf(w, "== %s\n", r.label); err != nil {
					return err
				}
			}
			if err := diagfmt.Pretty(w, r.reg, opts.pretty); err != nil {
				return err
			}
		}
		return nil
	}
}

func anyErrors(reports []labeled) bool {
	for _, r := range reports {
		if r.reg.HadError() {
			return true
		}
	}
	return false
}

func printTimings(w io.Writer, enabled bool, timer *observ.Timer) {
	if !enabled || timer == nil {
		return
	}
	fmt.Fprint(w, timer.Summary())
}
