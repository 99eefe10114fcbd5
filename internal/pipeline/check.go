package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vijaygarry/doclava/internal/apicheck"
	"github.com/vijaygarry/doclava/internal/diag"
	"github.com/vijaygarry/doclava/internal/model"
	"github.com/vijaygarry/doclava/internal/surfacediff"
	"github.com/vijaygarry/doclava/internal/trace"
)

// CheckRequest configures one comparison.
type CheckRequest struct {
	Old, New string
	Jobs     int
	// ShowDiff also renders unified patches of the changed classes.
	ShowDiff bool
	Reporter diag.Reporter
}

// CheckResult captures the artefacts of a comparison.
type CheckResult struct {
	Old, New *model.Snapshot
	Stats    apicheck.Stats
	Patches  []surfacediff.Patch
}

// Check loads both inputs concurrently and compares them.
func (l *Loader) Check(ctx context.Context, req CheckRequest) (CheckResult, error) {
	var result CheckResult
	if req.Old == "" || req.New == "" {
		return result, fmt.Errorf("missing snapshot path")
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "pipeline.check")
	defer span.End(filepath.Base(req.Old) + " -> " + filepath.Base(req.New))

	snaps, err := l.loadAll(ctx, []string{req.Old, req.New}, 2)
	if err != nil {
		return result, err
	}
	result.Old, result.New = snaps[0], snaps[1]
	return l.compare(ctx, result, req)
}

func (l *Loader) compare(ctx context.Context, result CheckResult, req CheckRequest) (CheckResult, error) {
	sink := l.opts.Progress
	start := time.Now()
	emit(sink, "", StageCheck, StatusWorking, nil, 0)
	idx := l.opts.Timer.Begin("check " + result.Old.Name + " -> " + result.New.Name)
	stats, err := apicheck.Check(ctx, result.Old, result.New, req.Reporter, apicheck.Options{Jobs: req.Jobs})
	l.opts.Timer.End(idx, fmt.Sprintf("%d findings", stats.Findings))
	result.Stats = stats
	if err != nil {
		emit(sink, "", StageCheck, StatusError, err, time.Since(start))
		return result, err
	}
	if req.ShowDiff {
		err = l.opts.Timer.Measure("surface diff", func() error {
			patches, diffErr := surfacediff.Diff(result.Old, result.New, surfacediff.Options{})
			result.Patches = patches
			return diffErr
		})
		if err != nil {
			emit(sink, "", StageCheck, StatusError, err, time.Since(start))
			return result, err
		}
	}
	emit(sink, "", StageCheck, StatusDone, nil, time.Since(start))
	return result, nil
}

// loadAll builds every path with at most jobs loads in flight. Results keep
// the order of paths.
func (l *Loader) loadAll(ctx context.Context, paths []string, jobs int) ([]*model.Snapshot, error) {
	emitQueued(l.opts.Progress, paths)
	snaps := make([]*model.Snapshot, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, path := range paths {
		g.Go(func() error {
			snap, err := l.Snapshot(gctx, path)
			if err != nil {
				return err
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snaps, nil
}

// HistoryOptions configures a chain of comparisons.
type HistoryOptions struct {
	Jobs     int
	ShowDiff bool
	// NewRegistry supplies the registry of each step, so every pair is
	// reported separately; diag.NewRegistry when nil.
	NewRegistry func() *diag.Registry
}

// Step is one comparison of a history run.
type Step struct {
	Label    string
	Registry *diag.Registry
	Result   CheckResult
}

// History compares each consecutive pair of paths. All inputs are loaded
// up front, concurrently; each snapshot is built once even though the inner
// ones take part in two comparisons.
func (l *Loader) History(ctx context.Context, paths []string, opts HistoryOptions) ([]Step, error) {
	if len(paths) < 2 {
		return nil, fmt.Errorf("history needs at least two snapshots, got %d", len(paths))
	}
	newRegistry := opts.NewRegistry
	if newRegistry == nil {
		newRegistry = diag.NewRegistry
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "pipeline.history")
	defer span.End(fmt.Sprintf("%d snapshots", len(paths)))

	snaps, err := l.loadAll(ctx, paths, opts.Jobs)
	if err != nil {
		return nil, err
	}
	steps := make([]Step, 0, len(paths)-1)
	for i := 1; i < len(snaps); i++ {
		reg := newRegistry()
		res, err := l.compare(ctx, CheckResult{Old: snaps[i-1], New: snaps[i]}, CheckRequest{
			Jobs:     opts.Jobs,
			ShowDiff: opts.ShowDiff,
			Reporter: reg,
		})
		if err != nil {
			return steps, err
		}
		steps = append(steps, Step{
			Label:    snaps[i-1].Name + " -> " + snaps[i].Name,
			Registry: reg,
			Result:   res,
		})
	}
	return steps, nil
}
