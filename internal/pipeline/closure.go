package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vijaygarry/doclava/internal/apixml"
	"github.com/vijaygarry/doclava/internal/closure"
	"github.com/vijaygarry/doclava/internal/diag"
	"github.com/vijaygarry/doclava/internal/trace"
)

// Closure loads path and computes its visible set. Findings go to r.
func (l *Loader) Closure(ctx context.Context, path string, opts closure.Options, r diag.Reporter) (*closure.Set, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "pipeline.closure")
	defer span.End(filepath.Base(path))

	emitQueued(l.opts.Progress, []string{path})
	snap, err := l.Snapshot(ctx, path)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	emit(l.opts.Progress, path, StageClosure, StatusWorking, nil, 0)
	idx := l.opts.Timer.Begin("closure " + snap.Name)
	set := closure.Compute(ctx, snap, opts, r)
	l.opts.Timer.End(idx, fmt.Sprintf("%d classes", set.Len()))
	emit(l.opts.Progress, path, StageClosure, StatusDone, nil, time.Since(start))
	return set, nil
}

// WriteAPI serializes set as snapshot XML to path, or to stdout when path
// is "-". A file is replaced only once the whole document is written.
func (l *Loader) WriteAPI(ctx context.Context, set *closure.Set, path string, stdout io.Writer) (err error) {
	_, span := trace.Start(ctx, trace.ScopePass, "write")
	defer span.End(path)
	start := time.Now()
	emit(l.opts.Progress, path, StageWrite, StatusWorking, nil, 0)
	defer func() {
		status := StatusDone
		if err != nil {
			status = StatusError
		}
		emit(l.opts.Progress, path, StageWrite, status, err, time.Since(start))
	}()
	idx := l.opts.Timer.Begin("write " + filepath.Base(path))
	defer l.opts.Timer.End(idx, "")

	if path == "" || path == "-" {
		return apixml.Write(stdout, set)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.CreateTemp(dir, ".api-*.xml")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()
	if err := apixml.Write(f, set); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
