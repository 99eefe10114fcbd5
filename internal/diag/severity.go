package diag

import (
	"fmt"
	"strings"
)

// Severity defines how a diagnostic affects the run.
type Severity uint8

const (
	// SevHidden diagnostics are tracked by code but never surfaced.
	SevHidden Severity = iota
	// SevWarning diagnostics are printed and do not fail the run.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevHidden:
		return "hidden"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// ParseSeverity accepts hidden|warning|error (and "suppressed" for hidden).
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hidden", "hide", "suppressed":
		return SevHidden, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error":
		return SevError, nil
	default:
		return SevHidden, fmt.Errorf("invalid severity %q (expected hidden|warning|error)", s)
	}
}
