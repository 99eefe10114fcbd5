package diag

import (
	"strconv"
	"strings"

	"github.com/vijaygarry/doclava/internal/source"
)

// Diagnostic is one reported finding.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Position source.Position
	Message  string
}

// New builds a diagnostic with an explicit severity.
func New(sev Severity, code Code, pos source.Position, msg string) Diagnostic {
	return Diagnostic{Code: code, Severity: sev, Position: pos, Message: msg}
}

// String renders the diagnostic as `position: warning 33: message`.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Position.String())
	b.WriteString(": ")
	b.WriteString(d.Severity.String())
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(int(d.Code)))
	b.WriteString(": ")
	b.WriteString(sanitizeMessage(d.Message))
	return b.String()
}

// Text is the message folded onto one line.
func (d Diagnostic) Text() string { return sanitizeMessage(d.Message) }

// Compare orders diagnostics by position, then message.
func (d Diagnostic) Compare(other Diagnostic) int {
	if c := d.Position.Compare(other.Position); c != 0 {
		return c
	}
	return strings.Compare(d.Message, other.Message)
}

// dedupKey is the identity used for deduplication. It intentionally omits the code.
type dedupKey struct {
	pos source.Position
	msg string
}

func (d Diagnostic) key() dedupKey {
	return dedupKey{pos: d.Position, msg: d.Message}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
