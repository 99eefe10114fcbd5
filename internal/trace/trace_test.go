package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestStreamTracer_LevelFiltersScopes(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, pass := Start(ctx, ScopePass, "check")
	_, pkg := Start(ctx, ScopePackage, "package:p")
	pkg.End("")
	pass.WithExtra("packages", "1").End("done")

	out := buf.String()
	if !strings.Contains(out, "> check") || !strings.Contains(out, "< check (done) {packages=1}") {
		t.Fatalf("missing pass span:\n%s", out)
	}
	if strings.Contains(out, "package:p") {
		t.Fatalf("package span must be filtered at phase level:\n%s", out)
	}
}

func TestRingTracer_KeepsNewest(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeClass, Name: name})
	}
	evs := r.Events()
	if len(evs) != 2 || evs[0].Name != "b" || evs[1].Name != "c" {
		t.Fatalf("Events() = %+v", evs)
	}
}

func TestNew_ErrorLevelUsesRing(t *testing.T) {
	tr, err := New(Config{Level: LevelError, Mode: ModeStream})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := Ring(tr); !ok {
		t.Fatalf("LevelError must record into a ring")
	}
	off, _ := New(Config{Level: LevelOff})
	if off.Enabled() {
		t.Fatalf("LevelOff must be disabled")
	}
}

func TestFormatNDJSON(t *testing.T) {
	line := FormatEvent(&Event{Kind: KindSpanEnd, Scope: ScopePass, Name: "build", Seq: 7}, FormatNDJSON)
	if !bytes.HasSuffix(line, []byte("\n")) || !bytes.Contains(line, []byte(`"name":"build"`)) {
		t.Fatalf("line = %s", line)
	}
}
