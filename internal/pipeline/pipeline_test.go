package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/vijaygarry/doclava/internal/apixml"
	"github.com/vijaygarry/doclava/internal/cache"
	"github.com/vijaygarry/doclava/internal/closure"
	"github.com/vijaygarry/doclava/internal/diag"
	"github.com/vijaygarry/doclava/internal/observ"
	"github.com/vijaygarry/doclava/internal/symsrc"
)

const v1XML = `<api>
<package name="pkg"
>
<class name="Foo"
 extends="java.lang.Object"
 visibility="public"
>
<method name="bar"
 return="int"
 visibility="public"
>
</method>
</class>
</package>
</api>
`

const v2Dump = `name: v2
classes:
  - name: Foo
    package: pkg
    visibility: public
    methods:
      - name: bar
        visibility: public
        return: long
`

const v3Dump = `name: v3
classes:
  - name: Foo
    package: pkg
    visibility: public
    methods:
      - name: bar
        visibility: public
        return: long
      - name: baz
        visibility: public
        return: void
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) OnEvent(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) count(file string, stage Stage, status Status) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, ev := range l.events {
		if ev.File == file && ev.Stage == stage && ev.Status == status {
			n++
		}
	}
	return n
}

func newLoader(t *testing.T, opts LoaderOptions) *Loader {
	t.Helper()
	l, err := NewLoader(opts)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	return l
}

func TestLoader_CheckAcrossFormats(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "v1.xml", v1XML)
	newPath := writeFile(t, dir, "v2.yaml", v2Dump)

	events := &eventLog{}
	timer := observ.NewTimer()
	l := newLoader(t, LoaderOptions{Progress: events, Timer: timer})
	reg := diag.NewRegistry()
	res, err := l.Check(context.Background(), CheckRequest{Old: oldPath, New: newPath, ShowDiff: true, Reporter: reg})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Old.Name != "v1" || res.New.Name != "v2" {
		t.Fatalf("snapshot names = %q, %q", res.Old.Name, res.New.Name)
	}
	got := reg.Codes(diag.ChangedType)
	if len(got) != 1 || got[0].Message != "Method pkg.Foo.bar has changed return type from int to long" {
		t.Fatalf("CHANGED_TYPE findings = %+v", got)
	}
	if got[0].Position.File != newPath {
		t.Errorf("finding position = %s, want a position in %s", got[0].Position, newPath)
	}
	if len(res.Patches) != 1 || !strings.Contains(res.Patches[0].Text, "+  method public long bar();") {
		t.Errorf("patches = %+v", res.Patches)
	}

	for _, path := range []string{oldPath, newPath} {
		if events.count(path, StageLoad, StatusQueued) != 1 || events.count(path, StageBuild, StatusDone) != 1 {
			t.Errorf("missing progress events for %s: %+v", path, events.events)
		}
	}
	if events.count("", StageCheck, StatusDone) != 1 {
		t.Errorf("missing check completion event")
	}
	if len(timer.Report().Phases) < 5 {
		t.Errorf("timer phases = %+v", timer.Report().Phases)
	}
}

func TestLoader_SnapshotIsReused(t *testing.T) {
	path := writeFile(t, t.TempDir(), "v1.xml", v1XML)
	events := &eventLog{}
	l := newLoader(t, LoaderOptions{Progress: events})

	first, err := l.Snapshot(context.Background(), path)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	second, err := l.Snapshot(context.Background(), path)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if first != second {
		t.Fatalf("second load rebuilt the snapshot")
	}
	if n := events.count(path, StageBuild, StatusWorking); n != 1 {
		t.Fatalf("build started %d times, want 1", n)
	}
}

func TestLoader_DiskCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "v2.yaml", v2Dump)
	dc, err := cache.OpenDir(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}

	if _, _, err := newLoader(t, LoaderOptions{Cache: dc}).Source(context.Background(), path); err != nil {
		t.Fatalf("Source: %v", err)
	}
	payload, hit, err := dc.Get(inputDigest(path, []byte(v2Dump)))
	if err != nil || !hit {
		t.Fatalf("cache entry missing: hit=%v err=%v", hit, err)
	}
	if payload.Source != path || len(payload.Classes) != 1 {
		t.Fatalf("payload = %+v", payload)
	}

	set, _, err := newLoader(t, LoaderOptions{Cache: dc}).Source(context.Background(), path)
	if err != nil {
		t.Fatalf("cached Source: %v", err)
	}
	if _, ok := set.Lookup("pkg.Foo"); !ok || set.Name != "v2" {
		t.Fatalf("cached set = %q (%d classes)", set.Name, set.Len())
	}
}

func TestLoader_History(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "v1.xml", v1XML),
		writeFile(t, dir, "v2.yaml", v2Dump),
		writeFile(t, dir, "v3.yaml", v3Dump),
	}
	events := &eventLog{}
	l := newLoader(t, LoaderOptions{Progress: events})
	steps, err := l.History(context.Background(), paths, HistoryOptions{Jobs: 3})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(steps) != 2 || steps[0].Label != "v1 -> v2" || steps[1].Label != "v2 -> v3" {
		t.Fatalf("steps = %+v", steps)
	}
	if steps[0].Result.New != steps[1].Result.Old {
		t.Errorf("v2 was built twice")
	}
	if n := len(steps[0].Registry.Codes(diag.ChangedType)); n != 1 {
		t.Errorf("v1 -> v2 CHANGED_TYPE = %d, want 1", n)
	}
	added := steps[1].Registry.Codes(diag.AddedMethod)
	if len(added) != 1 || added[0].Message != "Added public method pkg.Foo.baz" {
		t.Errorf("v2 -> v3 ADDED_METHOD = %+v", added)
	}
	if n := len(steps[1].Registry.Codes(diag.ChangedType)); n != 0 {
		t.Errorf("v2 -> v3 repeated an earlier finding")
	}

	if _, err := l.History(context.Background(), paths[:1], HistoryOptions{}); err == nil {
		t.Fatalf("History with one snapshot must fail")
	}
}

func TestLoader_ClosureAndWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "v3.yaml", v3Dump)
	l := newLoader(t, LoaderOptions{})

	set, err := l.Closure(context.Background(), path, closure.Options{}, nil)
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	out := filepath.Join(dir, "out", "current.xml")
	if err := l.WriteAPI(context.Background(), set, out, nil); err != nil {
		t.Fatalf("WriteAPI: %v", err)
	}
	written, err := apixml.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	foo, ok := written.Lookup("pkg.Foo")
	if !ok || len(foo.Methods) != 2 {
		t.Fatalf("written API = %+v", foo)
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, "out", ".api-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temporary files left behind: %v", leftovers)
	}

	var stdout bytes.Buffer
	if err := l.WriteAPI(context.Background(), set, "-", &stdout); err != nil {
		t.Fatalf("WriteAPI(-): %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "<api>\n<package name=\"pkg\"\n>\n") {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestLoader_MalformedInput(t *testing.T) {
	dir := t.TempDir()
	badXML := writeFile(t, dir, "bad.xml", "<api>\n<package name=\"p\">\n<class name=\"A\" final=\"maybe\">\n")
	badDump := writeFile(t, dir, "bad.yaml", "classes:\n  - name: A\n    bogus: 1\n")
	l := newLoader(t, LoaderOptions{})

	if _, err := l.Snapshot(context.Background(), badXML); !apixml.IsParseError(err) {
		t.Errorf("bad XML error = %v, want a parse error", err)
	}
	if _, err := l.Snapshot(context.Background(), badDump); !symsrc.IsLoadError(err) {
		t.Errorf("bad dump error = %v, want a load error", err)
	}
	if _, err := l.Snapshot(context.Background(), filepath.Join(dir, "missing.xml")); err == nil {
		t.Errorf("missing file must fail")
	}
}

func TestLoader_Canceled(t *testing.T) {
	path := writeFile(t, t.TempDir(), "v1.xml", v1XML)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newLoader(t, LoaderOptions{}).Snapshot(ctx, path); err == nil {
		t.Fatalf("canceled load must fail")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		data string
		want InputFormat
	}{
		{"api/current.xml", "", FormatXML},
		{"dump.yml", "<not xml>", FormatDump},
		{"dump.json", "{}", FormatDump},
		{"current.txt", "  \n<api>", FormatXML},
		{"current.txt", "classes: []", FormatDump},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectFormat(tt.path, []byte(tt.data)); got != tt.want {
				t.Fatalf("DetectFormat(%q) = %d, want %d", tt.path, got, tt.want)
			}
		})
	}
}
