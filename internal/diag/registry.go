package diag

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/vijaygarry/doclava/internal/source"
)

// Registry collects the diagnostics of one run.
// It is safe for concurrent use.
type Registry struct {
	mu               sync.Mutex
	levels           map[Code]Severity
	warningsAsErrors bool
	items            map[dedupKey]Diagnostic
	hadError         bool
	hidden           int
}

// NewRegistry returns an empty registry using the default level table.
func NewRegistry() *Registry {
	return &Registry{
		levels: make(map[Code]Severity),
		items:  make(map[dedupKey]Diagnostic),
	}
}

// SetLevel overrides the severity a code resolves to.
func (r *Registry) SetLevel(code Code, sev Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels[code] = sev
}

// Level returns the configured severity of code, before warnings-as-errors.
func (r *Registry) Level(code Code) Severity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.levelLocked(code)
}

func (r *Registry) levelLocked(code Code) Severity {
	if sev, ok := r.levels[code]; ok {
		return sev
	}
	return code.DefaultLevel()
}

// SetWarningsAsErrors upgrades every warning-level submission to an error.
func (r *Registry) SetWarningsAsErrors(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warningsAsErrors = on
}

// Report resolves the severity of code and records the diagnostic.
// Hidden codes are counted but not stored. A submission whose (position,
// message) is already present is merged into the existing entry; the entry
// keeps the higher severity so the outcome does not depend on arrival order.
func (r *Registry) Report(code Code, pos source.Position, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sev := r.levelLocked(code)
	if sev == SevHidden {
		r.hidden++
		return
	}
	if sev == SevWarning && r.warningsAsErrors {
		sev = SevError
	}
	if sev == SevError {
		r.hadError = true
	}

	d := New(sev, code, pos, msg)
	key := d.key()
	if prev, ok := r.items[key]; ok {
		if prev.Severity > d.Severity || (prev.Severity == d.Severity && prev.Code <= d.Code) {
			return
		}
	}
	r.items[key] = d
}

// HadError reports whether any submission resolved to error severity.
func (r *Registry) HadError() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hadError
}

// Len returns the number of stored diagnostics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// HiddenCount returns how many submissions were dropped as hidden.
func (r *Registry) HiddenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hidden
}

// Items returns every stored diagnostic sorted by position, then message.
func (r *Registry) Items() []Diagnostic {
	r.mu.Lock()
	out := make([]Diagnostic, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, d)
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b Diagnostic) int {
		if c := a.Compare(b); c != 0 {
			return c
		}
		return int(a.Code) - int(b.Code)
	})
	return out
}

// Filter returns the sorted diagnostics of one severity.
func (r *Registry) Filter(sev Severity) []Diagnostic {
	all := r.Items()
	out := all[:0:0]
	for _, d := range all {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// Count returns how many stored diagnostics have severity sev.
func (r *Registry) Count(sev Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.items {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// Codes returns the stored diagnostics with the given code, sorted.
func (r *Registry) Codes(code Code) []Diagnostic {
	all := r.Items()
	out := all[:0:0]
	for _, d := range all {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Merge copies every diagnostic of other into r, keeping other's resolved
// severities.
func (r *Registry) Merge(other *Registry) {
	if other == nil || other == r {
		return
	}
	items := other.Items()
	hadError := other.HadError()
	hidden := other.HiddenCount()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range items {
		key := d.key()
		if prev, ok := r.items[key]; ok && prev.Severity >= d.Severity {
			continue
		}
		r.items[key] = d
	}
	r.hadError = r.hadError || hadError
	r.hidden += hidden
}

// Print writes all warnings, then all errors, one per line.
func (r *Registry) Print(w io.Writer) error {
	for _, sev := range []Severity{SevWarning, SevError} {
		for _, d := range r.Filter(sev) {
			if _, err := fmt.Fprintln(w, d.String()); err != nil {
				return err
			}
		}
	}
	return nil
}
