// Package apicheck compares two snapshots of an API and reports every
// binary or source incompatibility as a diagnostic.
//
// Entities are matched by name: packages by name, classes by
// package-relative name, methods and constructors by hashable name and
// fields by name. Only declarations accepted by the visibility predicate
// take part, so private and hidden members of a symbol dump never show up
// as API changes. Findings are never fatal; the caller decides the outcome
// from the severities the registry assigns.
package apicheck

import (
	"context"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/vijaygarry/doclava/internal/closure"
	"github.com/vijaygarry/doclava/internal/diag"
	"github.com/vijaygarry/doclava/internal/model"
	"github.com/vijaygarry/doclava/internal/source"
	"github.com/vijaygarry/doclava/internal/trace"
)

// Options configures a comparison.
type Options struct {
	// Jobs bounds how many package pairs are compared at once; values
	// below 1 mean one.
	Jobs int
	// Predicate selects the API surface on both sides;
	// closure.DefaultPredicate when nil.
	Predicate closure.Predicate
}

// Stats summarizes what a comparison looked at.
type Stats struct {
	PackagesCompared int
	PackagesAdded    int
	PackagesRemoved  int
	ClassesCompared  int
	Findings         int
}

type report struct {
	code diag.Code
	pos  source.Position
	msg  string
}

// buffer collects the findings of one package pair so they can be replayed
// into the caller's reporter in a fixed order.
type buffer struct {
	items   []report
	classes int
}

func (b *buffer) Report(code diag.Code, pos source.Position, msg string) {
	b.items = append(b.items, report{code: code, pos: pos, msg: msg})
}

// Check compares oldSnap against newSnap and submits every finding to r. Package
// pairs run concurrently; r receives findings from the calling goroutine
// only, grouped by package name. The error is non-nil only when ctx is
// canceled.
func Check(ctx context.Context, oldSnap, newSnap *model.Snapshot, r diag.Reporter, opts Options) (Stats, error) {
	ctx, span := trace.Start(ctx, trace.ScopePass, "check")
	var stats Stats
	if r == nil {
		r = diag.NopReporter{}
	}
	pred := opts.Predicate
	if pred == nil {
		pred = closure.DefaultPredicate{}
	}

	oldPkgs := packagesByName(oldSnap, pred)
	newPkgs := packagesByName(newSnap, pred)
	names := make([]string, 0, len(oldPkgs)+len(newPkgs))
	for name := range oldPkgs {
		names = append(names, name)
	}
	for name := range newPkgs {
		if _, ok := oldPkgs[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	buffers := make([]*buffer, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Jobs, 1))
	for i, name := range names {
		op, inOld := oldPkgs[name]
		np, inNew := newPkgs[name]
		buf := &buffer{}
		buffers[i] = buf
		switch {
		case inOld && !inNew:
			stats.PackagesRemoved++
			buf.Report(diag.RemovedPackage, packagePos(op), "Removed package "+op.DisplayName())
		case !inOld && inNew:
			stats.PackagesAdded++
			buf.Report(diag.AddedPackage, packagePos(np), "Added package "+np.DisplayName())
		default:
			stats.PackagesCompared++
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				_, pspan := trace.Start(gctx, trace.ScopePackage, "package:"+op.DisplayName())
				comparePackage(op, np, buf, pred)
				pspan.WithExtra("findings", strconv.Itoa(len(buf.items))).End("")
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		span.End("canceled")
		return stats, err
	}

	for _, buf := range buffers {
		stats.ClassesCompared += buf.classes
		stats.Findings += len(buf.items)
		for _, it := range buf.items {
			r.Report(it.code, it.pos, it.msg)
		}
	}
	span.WithExtra("packages", strconv.Itoa(stats.PackagesCompared)).
		WithExtra("findings", strconv.Itoa(stats.Findings)).
		End(oldSnap.Name + " -> " + newSnap.Name)
	return stats, nil
}

// packagesByName indexes the packages that hold at least one visible class.
func packagesByName(s *model.Snapshot, pred closure.Predicate) map[string]*model.Package {
	out := make(map[string]*model.Package)
	for _, p := range s.Packages() {
		if slices.ContainsFunc(p.Classes(), pred.ClassVisible) {
			out[p.Name] = p
		}
	}
	return out
}

func visibleClass(p *model.Package, name string, pred closure.Predicate) (*model.Class, bool) {
	c, ok := p.Class(name)
	if !ok || !pred.ClassVisible(c) {
		return nil, false
	}
	return c, true
}

// packagePos is the package's own position, or that of its first class.
func packagePos(p *model.Package) source.Position {
	if p.Pos.IsKnown() {
		return p.Pos
	}
	for _, c := range p.Classes() {
		if c.Pos.IsKnown() {
			return c.Pos
		}
	}
	return source.Unknown
}

func comparePackage(op, np *model.Package, r *buffer, pred closure.Predicate) {
	for _, oc := range op.Classes() {
		if !pred.ClassVisible(oc) {
			continue
		}
		nc, ok := visibleClass(np, oc.Name, pred)
		if !ok {
			r.Report(diag.RemovedClass, oc.Pos, "Removed public class "+oc.QualifiedName)
			continue
		}
		r.classes++
		compareClass(oc, nc, r, pred)
	}
	for _, nc := range np.Classes() {
		if !pred.ClassVisible(nc) {
			continue
		}
		if _, ok := visibleClass(op, nc.Name, pred); !ok {
			r.Report(diag.AddedClass, nc.Pos, "Added class "+nc.Name+" to package "+np.DisplayName())
		}
	}
}

func superclassForCompare(c *model.Class) string {
	if name := c.SuperclassName(); name != "" {
		return name
	}
	if c.IsInterface() || c.QualifiedName == model.RootClassName {
		return ""
	}
	return model.RootClassName
}

func nullable(s string) string {
	if s == "" {
		return "null"
	}
	return s
}

func compareClass(oc, nc *model.Class, r diag.Reporter, pred closure.Predicate) {
	if oc.IsInterface() != nc.IsInterface() {
		r.Report(diag.ChangedClass, nc.Pos, "Class "+nc.QualifiedName+" changed class/interface declaration")
	}
	for _, iface := range oc.Interfaces {
		if !nc.ImplementsInterface(iface.QualifiedName) {
			r.Report(diag.RemovedInterface, nc.Pos, "Class "+oc.QualifiedName+" no longer implements "+iface.QualifiedName)
		}
	}
	for _, iface := range nc.Interfaces {
		if !oc.ImplementsInterface(iface.QualifiedName) {
			r.Report(diag.AddedInterface, nc.Pos, "Added interface "+iface.QualifiedName+" to class "+oc.QualifiedName)
		}
	}

	compareMethods(oc, nc, r, pred)
	compareConstructors(oc, nc, r, pred)
	compareFields(oc, nc, r, pred)

	if oc.Mods.IsAbstract() != nc.Mods.IsAbstract() {
		r.Report(diag.ChangedAbstract, nc.Pos, "Class "+nc.QualifiedName+" changed abstract qualifier")
	}
	if oc.Mods.IsFinal() != nc.Mods.IsFinal() {
		r.Report(diag.ChangedFinal, nc.Pos, "Class "+nc.QualifiedName+" changed final qualifier")
	}
	if oc.Mods.IsStatic() != nc.Mods.IsStatic() {
		r.Report(diag.ChangedStatic, nc.Pos, "Class "+nc.QualifiedName+" changed static qualifier")
	}
	if oc.Mods.Scope != nc.Mods.Scope {
		r.Report(diag.ChangedScope, nc.Pos,
			"Class "+nc.QualifiedName+" scope changed from "+oc.Mods.Scope.String()+" to "+nc.Mods.Scope.String())
	}
	if oc.IsDeprecated() != nc.IsDeprecated() {
		r.Report(diag.ChangedDeprecated, nc.Pos, "Class "+nc.QualifiedName+" has changed deprecation state")
	}
	if superclassForCompare(oc) != superclassForCompare(nc) {
		r.Report(diag.ChangedSuperclass, nc.Pos,
			"Class "+oc.QualifiedName+" superclass changed from "+nullable(oc.SuperclassName())+" to "+nullable(nc.SuperclassName()))
	}
}
