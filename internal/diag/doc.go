// Package diag defines the diagnostic model shared by the closure and
// compatibility engines.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Code – stable numeric identifier (see codes.go) with a default level.
//   - Severity – Hidden, Warning or Error, resolved by the Registry at
//     submission time from the per-code level table.
//   - Position – source.Position of the declaration, or unknown.
//   - Message – single-line human text.
//
// # Registry
//
// Registry is the aggregation point of a run. Producers submit through the
// Reporter interface; the registry resolves severity, drops hidden codes,
// deduplicates on (position, message) and keeps a sticky HadError flag.
// Deduplication deliberately ignores the code: two codes rendering the same
// text at the same position collapse into one entry.
//
// Registry is safe for concurrent use so package pairs may be diffed in
// parallel; output order never depends on submission order.
//
// Package diag does no terminal formatting beyond the plain text form used
// by Print. Colour and JSON rendering live in internal/diagfmt.
package diag
