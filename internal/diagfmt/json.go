package diagfmt

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"github.com/vijaygarry/doclava/internal/diag"
)

// LocationJSON is a diagnostic position.
type LocationJSON struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

// DiagnosticJSON is one finding.
type DiagnosticJSON struct {
	Code     int          `json:"code"`
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Severity string       `json:"severity"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// SummaryJSON counts findings by severity.
type SummaryJSON struct {
	Warnings int  `json:"warnings"`
	Errors   int  `json:"errors"`
	Hidden   int  `json:"hidden"`
	Shown    int  `json:"shown"`
	Failed   bool `json:"failed"`
}

// ReportJSON is the diagnostics of one comparison or closure run.
type ReportJSON struct {
	Label       string           `json:"label,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Summary     SummaryJSON      `json:"summary"`
}

// OutputJSON is the document root.
type OutputJSON struct {
	RunID   string       `json:"run_id"`
	Tool    string       `json:"tool"`
	Version string       `json:"version,omitempty"`
	Reports []ReportJSON `json:"reports"`
}

// BuildReport converts reg without serializing. Warnings come before errors,
// matching the pretty output.
func BuildReport(label string, reg *diag.Registry, opts JSONOpts) ReportJSON {
	rep := ReportJSON{Label: label, Diagnostics: make([]DiagnosticJSON, 0, reg.Len())}
	for _, sev := range []diag.Severity{diag.SevWarning, diag.SevError} {
		for _, d := range reg.Filter(sev) {
			if opts.Max > 0 && len(rep.Diagnostics) >= opts.Max {
				break
			}
			rep.Diagnostics = append(rep.Diagnostics, DiagnosticJSON{
				Code:     int(d.Code),
				ID:       d.Code.ID(),
				Name:     d.Code.Name(),
				Severity: d.Severity.String(),
				Message:  d.Text(),
				Location: LocationJSON{
					File: formatPath(d.Position.File, opts.PathMode, opts.BaseDir),
					Line: d.Position.Line,
				},
			})
		}
	}
	rep.Summary = SummaryJSON{
		Warnings: reg.Count(diag.SevWarning),
		Errors:   reg.Count(diag.SevError),
		Hidden:   reg.HiddenCount(),
		Shown:    len(rep.Diagnostics),
		Failed:   reg.HadError(),
	}
	return rep
}

// NewOutput wraps reports in a document stamped with a run id.
func NewOutput(opts JSONOpts, reports ...ReportJSON) OutputJSON {
	id := opts.RunID
	if id == "" {
		id = uuid.NewString()
	}
	if reports == nil {
		reports = []ReportJSON{}
	}
	return OutputJSON{RunID: id, Tool: "doclava", Version: opts.ToolVersion, Reports: reports}
}

// WriteJSON encodes out with two-space indentation.
func WriteJSON(w io.Writer, out OutputJSON) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// JSON writes a single-report document for reg.
func JSON(w io.Writer, label string, reg *diag.Registry, opts JSONOpts) error {
	return WriteJSON(w, NewOutput(opts, BuildReport(label, reg, opts)))
}
