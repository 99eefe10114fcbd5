package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/vijaygarry/doclava/internal/pipeline"
)

func TestProgressModel_AppliesEvents(t *testing.T) {
	files := []string{"api/v1.xml", "api/v2.xml", "api/v1.xml"}
	m := NewProgressModel("checking", files, nil).(*progressModel)
	if len(m.items) != 2 {
		t.Fatalf("duplicate files not collapsed: %+v", m.items)
	}

	m.applyEvent(pipeline.Event{File: "api/v1.xml", Stage: pipeline.StageBuild, Status: pipeline.StatusWorking})
	m.applyEvent(pipeline.Event{File: "api/v2.xml", Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: errors.New("boom")})
	m.applyEvent(pipeline.Event{File: "other.xml", Stage: pipeline.StageLoad, Status: pipeline.StatusWorking})

	if got := m.items[0].status; got != "building" {
		t.Errorf("v1 status = %q, want building", got)
	}
	if got := m.items[1].status; got != "error" || !m.items[1].final {
		t.Errorf("v2 = %+v, want a final error", m.items[1])
	}
	if p := m.percent(); p <= 0.5 || p >= 1.0 {
		t.Errorf("percent = %v", p)
	}

	m.applyEvent(pipeline.Event{Stage: pipeline.StageCheck, Status: pipeline.StatusWorking})
	if m.stageLabel != "checking" {
		t.Errorf("stage label = %q", m.stageLabel)
	}
	m.applyEvent(pipeline.Event{Stage: pipeline.StageCheck, Status: pipeline.StatusDone})
	if m.percent() != 1.0 {
		t.Errorf("finished run percent = %v", m.percent())
	}

	view := m.View()
	for _, want := range []string{"checking", "api/v1.xml", "api/v2.xml", "building", "error"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.xml", 20, "short.xml"},
		{"a/very/long/path/current.xml", 10, "a/very/..."},
		{"日本語.xml", 5, "日..."},
		{"abcdef", 3, "abc"},
		{"abcdef", 0, "abcdef"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
