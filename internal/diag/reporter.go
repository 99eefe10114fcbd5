package diag

import "github.com/vijaygarry/doclava/internal/source"

// Reporter is the minimal contract producers use to submit findings.
// Implementations: *Registry, NopReporter, MultiReporter.
type Reporter interface {
	Report(code Code, pos source.Position, msg string)
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, source.Position, string) {}

// MultiReporter fans a submission out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(code Code, pos source.Position, msg string) {
	for _, r := range m {
		if r != nil {
			r.Report(code, pos, msg)
		}
	}
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(code Code, pos source.Position, msg string)

func (f ReporterFunc) Report(code Code, pos source.Position, msg string) {
	f(code, pos, msg)
}
