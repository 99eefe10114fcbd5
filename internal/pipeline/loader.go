package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vijaygarry/doclava/internal/apixml"
	"github.com/vijaygarry/doclava/internal/builder"
	"github.com/vijaygarry/doclava/internal/cache"
	"github.com/vijaygarry/doclava/internal/model"
	"github.com/vijaygarry/doclava/internal/observ"
	"github.com/vijaygarry/doclava/internal/source"
	"github.com/vijaygarry/doclava/internal/symsrc"
	"github.com/vijaygarry/doclava/internal/trace"
)

const defaultMaxSnapshots = 16

// InputFormat is the encoding of an input file.
type InputFormat uint8

const (
	// FormatXML is the API snapshot XML layout.
	FormatXML InputFormat = iota
	// FormatDump is a YAML or JSON symbol dump.
	FormatDump
)

// DetectFormat picks the decoder for path: by extension, falling back to
// sniffing the first non-blank byte.
func DetectFormat(path string, data []byte) InputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML
	case ".yaml", ".yml", ".json":
		return FormatDump
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '<' {
		return FormatXML
	}
	return FormatDump
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// Cache stores parsed declarations across runs; nil disables it.
	Cache *cache.DiskCache
	// HiddenPackages are passed to every build.
	HiddenPackages []string
	// MaxSnapshots bounds the in-memory snapshot cache.
	MaxSnapshots int
	Timer        *observ.Timer
	Progress     ProgressSink
}

// Loader turns input files into snapshots. Built snapshots are kept in a
// bounded in-memory cache keyed by file content, so a version that takes
// part in two comparisons is built once. A Loader is safe for concurrent
// use.
type Loader struct {
	opts   LoaderOptions
	builds *lru.Cache[cache.Digest, *model.Snapshot]
}

// NewLoader creates a loader.
func NewLoader(opts LoaderOptions) (*Loader, error) {
	size := opts.MaxSnapshots
	if size <= 0 {
		size = defaultMaxSnapshots
	}
	builds, err := lru.New[cache.Digest, *model.Snapshot](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot cache: %w", err)
	}
	return &Loader{opts: opts, builds: builds}, nil
}

// WithProgress returns a loader that reports to sink and shares l's
// snapshot cache.
func (l *Loader) WithProgress(sink ProgressSink) *Loader {
	opts := l.opts
	opts.Progress = sink
	return &Loader{opts: opts, builds: l.builds}
}

// Timer returns the timer the loader records phases on; may be nil.
func (l *Loader) Timer() *observ.Timer { return l.opts.Timer }

// Source reads and decodes path. The returned digest identifies the file
// by name and content.
func (l *Loader) Source(ctx context.Context, path string) (*symsrc.Set, cache.Digest, error) {
	if err := ctx.Err(); err != nil {
		return nil, cache.Digest{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, cache.Digest{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	data := source.NewDocument(path, raw).Content
	key := inputDigest(path, data)

	payload, hit, err := l.opts.Cache.Get(key)
	if err != nil {
		trace.Point(ctx, trace.ScopePass, "cache", "get "+path+": "+err.Error())
	}
	if hit {
		set, setErr := payload.Set()
		if setErr == nil {
			trace.Point(ctx, trace.ScopePass, "cache", "hit "+path)
			return set, key, nil
		}
		trace.Point(ctx, trace.ScopePass, "cache", setErr.Error())
	}

	var set *symsrc.Set
	switch DetectFormat(path, data) {
	case FormatXML:
		set, err = apixml.Read(path, bytes.NewReader(data))
	default:
		set, err = symsrc.Load(path, data)
	}
	if err != nil {
		return nil, key, err
	}
	if putErr := l.opts.Cache.Put(key, cache.FromSet(set, path)); putErr != nil {
		trace.Point(ctx, trace.ScopePass, "cache", "put "+path+": "+putErr.Error())
	}
	return set, key, nil
}

// Snapshot loads and builds path, reusing an earlier build of the same
// content.
func (l *Loader) Snapshot(ctx context.Context, path string) (*model.Snapshot, error) {
	sink := l.opts.Progress
	start := time.Now()
	emit(sink, path, StageLoad, StatusWorking, nil, 0)

	idx := l.opts.Timer.Begin("load " + filepath.Base(path))
	set, key, err := l.Source(ctx, path)
	l.opts.Timer.End(idx, "")
	if err != nil {
		emit(sink, path, StageLoad, StatusError, err, time.Since(start))
		return nil, err
	}
	if snap, ok := l.builds.Get(key); ok {
		emit(sink, path, StageBuild, StatusDone, nil, time.Since(start))
		return snap, nil
	}

	emit(sink, path, StageBuild, StatusWorking, nil, time.Since(start))
	idx = l.opts.Timer.Begin("build " + filepath.Base(path))
	snap, err := builder.Build(ctx, set, builder.Options{
		Name:           SnapshotName(path),
		HiddenPackages: l.opts.HiddenPackages,
	})
	l.opts.Timer.End(idx, fmt.Sprintf("%d classes", set.Len()))
	if err != nil {
		emit(sink, path, StageBuild, StatusError, err, time.Since(start))
		return nil, err
	}
	l.builds.Add(key, snap)
	emit(sink, path, StageBuild, StatusDone, nil, time.Since(start))
	return snap, nil
}

// SnapshotName labels a snapshot by its file name without extension.
func SnapshotName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func inputDigest(path string, data []byte) cache.Digest {
	buf := make([]byte, 0, len(path)+1+len(data))
	buf = append(buf, path...)
	buf = append(buf, 0)
	buf = append(buf, data...)
	return cache.DigestOf(buf)
}
