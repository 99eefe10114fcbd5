// Package trace records the phases of a doclava run: snapshot loading,
// building, closure and per-package comparison.
//
// Tracers travel through the call chain in a context.Context:
//
//	ctx = trace.WithTracer(ctx, tr)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "build", 0)
//	defer span.End("")
//
// Scopes go from coarse to fine: driver (one CLI command), pass (one
// build, closure or check), package (one package pair in a check) and class.
// The level decides which scopes are written; phase keeps driver and pass
// spans, detail adds packages, debug adds classes.
//
// Output is either streamed as text or NDJSON, kept in a ring buffer and
// dumped when the run fails, or both.
package trace
