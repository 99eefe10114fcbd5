package diagfmt

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/vijaygarry/doclava/internal/diag"
)

var (
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	posColor     = color.New(color.Bold)
	faintColor   = color.New(color.Faint)
)

func paint(c *color.Color, on bool, s string) string {
	if !on {
		return s
	}
	cc := *c
	cc.EnableColor()
	return cc.Sprint(s)
}

// Pretty writes warnings first, then errors, one per line:
//
//	<file>:<line>: warning <code>: <message>
//
// Without color the output is byte-identical to Registry.Print.
func Pretty(w io.Writer, reg *diag.Registry, opts PrettyOpts) error {
	shown, total := 0, 0
	for _, sev := range []diag.Severity{diag.SevWarning, diag.SevError} {
		for _, d := range reg.Filter(sev) {
			total++
			if opts.Max > 0 && shown >= opts.Max {
				continue
			}
			shown++
			if _, err := fmt.Fprintln(w, prettyLine(d, opts)); err != nil {
				return err
			}
		}
	}
	if total > shown {
		msg := fmt.Sprintf("... %d more diagnostics not shown", total-shown)
		if _, err := fmt.Fprintln(w, paint(faintColor, opts.Color, msg)); err != nil {
			return err
		}
	}
	if opts.Summary {
		if _, err := fmt.Fprintln(w, summaryLine(reg, opts.Color)); err != nil {
			return err
		}
	}
	return nil
}

func prettyLine(d diag.Diagnostic, opts PrettyOpts) string {
	pos := d.Position
	pos.File = formatPath(pos.File, opts.PathMode, opts.BaseDir)
	d.Position = pos
	if !opts.Color {
		return d.String()
	}
	sevColor := warningColor
	if d.Severity == diag.SevError {
		sevColor = errorColor
	}
	return paint(posColor, true, pos.String()+":") + " " +
		paint(sevColor, true, d.Severity.String()+" "+strconv.Itoa(int(d.Code))) + ": " + d.Text() +
		" " + paint(faintColor, true, "["+d.Code.Name()+"]")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func summaryLine(reg *diag.Registry, on bool) string {
	warnings := reg.Count(diag.SevWarning)
	errors := reg.Count(diag.SevError)
	line := plural(warnings, "warning") + ", " + plural(errors, "error")
	if hidden := reg.HiddenCount(); hidden > 0 {
		line += " (" + strconv.Itoa(hidden) + " hidden)"
	}
	switch {
	case errors > 0:
		return paint(errorColor, on, line)
	case warnings > 0:
		return paint(warningColor, on, line)
	}
	return line
}
