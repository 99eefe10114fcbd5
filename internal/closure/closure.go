// Package closure computes the set of classes that must stay visible for a
// snapshot's public surface to be well formed.
//
// The set starts from the nominally visible classes and grows along every
// edge a visible declaration exposes: field types, method signatures,
// thrown exceptions, type parameter bounds, enclosing classes, superclasses
// and interfaces. A hidden superclass is the one edge that is cut instead of
// followed; the class is reported and its effective superclass becomes none.
package closure

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/vijaygarry/doclava/internal/diag"
	"github.com/vijaygarry/doclava/internal/model"
	"github.com/vijaygarry/doclava/internal/trace"
)

// Predicate decides nominal visibility.
type Predicate interface {
	ClassVisible(c *model.Class) bool
	MethodVisible(m *model.Method) bool
	FieldVisible(f *model.Field) bool
}

// DefaultPredicate accepts public or protected declarations that are not
// hidden. Classes must also be declared in the snapshot.
type DefaultPredicate struct{}

func (DefaultPredicate) ClassVisible(c *model.Class) bool {
	return c.IsLocal() && c.Mods.CheckLevel() && !c.IsHidden()
}

func (DefaultPredicate) MethodVisible(m *model.Method) bool {
	return m.Mods.CheckLevel() && !m.IsHidden()
}

func (DefaultPredicate) FieldVisible(f *model.Field) bool {
	return f.Mods.CheckLevel() && !f.IsHidden()
}

// Options configures a closure run.
type Options struct {
	// Predicate defaults to DefaultPredicate.
	Predicate Predicate
	// StubPackages restricts which packages Emitted accepts. The closure
	// itself always spans the whole snapshot.
	StubPackages []string
}

type engine struct {
	pred  Predicate
	r     diag.Reporter
	set   *Set
	stack []*model.Class
}

// Compute walks snap and returns the closed visible set. Findings go to r.
func Compute(ctx context.Context, snap *model.Snapshot, opts Options, r diag.Reporter) *Set {
	_, span := trace.Start(ctx, trace.ScopePass, "closure")
	if opts.Predicate == nil {
		opts.Predicate = DefaultPredicate{}
	}
	if r == nil {
		r = diag.NopReporter{}
	}
	e := &engine{
		pred: opts.Predicate,
		r:    r,
		set:  newSet(opts.Predicate, opts.StubPackages),
	}

	seeds := 0
	for _, c := range snap.LocalClasses() {
		if e.pred.ClassVisible(c) {
			seeds++
			e.add(c)
		}
	}
	for len(e.stack) > 0 {
		n := len(e.stack) - 1
		c := e.stack[n]
		e.stack = e.stack[:n]
		e.expand(c)
	}
	for _, c := range snap.LocalClasses() {
		if e.pred.ClassVisible(c) {
			e.checkClass(c)
		}
	}
	e.set.seal()

	span.WithExtra("seeds", strconv.Itoa(seeds)).
		WithExtra("classes", strconv.Itoa(e.set.Len())).
		End(snap.Name)
	return e.set
}

func (e *engine) add(c *model.Class) {
	if c == nil || e.set.members[c] {
		return
	}
	e.set.members[c] = true
	e.stack = append(e.stack, c)
}

func (e *engine) addType(t *model.TypeInfo) {
	if t == nil {
		return
	}
	for _, c := range t.ReferencedClasses() {
		e.add(c)
	}
	for _, b := range t.Bounds {
		e.addType(b)
	}
}

// expand follows every outgoing edge of a class already in the set.
func (e *engine) expand(c *model.Class) {
	for _, f := range c.AllFields() {
		if e.pred.FieldVisible(f) {
			e.addType(f.Type)
		}
	}
	for _, tp := range c.TypeParams {
		e.addType(tp)
	}
	for _, list := range [][]*model.Method{c.Constructors, c.Methods, c.AnnotationElements} {
		for _, m := range list {
			if !e.pred.MethodVisible(m) {
				continue
			}
			for _, tp := range m.TypeParams {
				e.addType(tp)
			}
			for _, p := range m.Params {
				e.addType(p.Type)
			}
			for _, t := range m.Throws {
				e.add(t)
			}
			e.addType(m.Return)
		}
	}

	e.add(c.Containing)
	for _, iface := range c.Interfaces {
		e.add(iface)
	}

	sup := c.Superclass
	if sup == nil {
		return
	}
	if sup.IsHidden() && !c.IsHidden() {
		e.set.repaired[c] = sup
		e.r.Report(diag.HiddenSuperclass, c.Pos,
			"Public class "+c.QualifiedName+" stripped of unavailable superclass "+sup.QualifiedName)
		return
	}
	e.add(sup)
	if c.SuperType != nil {
		for _, a := range c.SuperType.Args {
			e.addType(a)
		}
	}
}

// checkClass reports the per-declaration findings of a visible class.
func (e *engine) checkClass(c *model.Class) {
	if c.Doc.Deprecated != c.AnnotationDeprecated() {
		e.r.Report(diag.DeprecationMismatch, c.Pos,
			"Class "+c.QualifiedName+": @Deprecated annotation and @deprecated comment do not match")
	}
	if c.IsDeprecated() {
		e.r.Report(diag.Deprecated, c.Pos, "Class "+c.QualifiedName+" is deprecated")
	}

	for _, list := range [][]*model.Method{c.Constructors, c.Methods} {
		for _, m := range list {
			if !e.pred.MethodVisible(m) {
				continue
			}
			e.checkMethod(c, m)
		}
	}
	for _, f := range c.AllFields() {
		if e.pred.FieldVisible(f) && f.Doc.Deprecated != f.AnnotationDeprecated() {
			e.r.Report(diag.DeprecationMismatch, f.Pos,
				"Field "+f.QualifiedName()+": @Deprecated annotation and @deprecated comment do not match")
		}
	}
}

func (e *engine) checkMethod(c *model.Class, m *model.Method) {
	kind := "Method"
	if m.Constructor {
		kind = "Constructor"
	}
	if m.Doc.Deprecated != m.AnnotationDeprecated() {
		e.r.Report(diag.DeprecationMismatch, m.Pos,
			kind+" "+m.QualifiedName()+": @Deprecated annotation and @deprecated comment do not match")
	}
	if m.IsDeprecated() && !c.IsDeprecated() {
		e.r.Report(diag.Deprecated, m.Pos, kind+" "+m.QualifiedName()+" is deprecated")
	}
	if rt := m.Return; rt != nil && rt.Class != nil && !e.set.available(rt.Class) {
		e.r.Report(diag.UnavailableSymbol, m.Pos,
			"Method "+m.QualifiedName()+" returns unavailable type "+rt.Class.QualifiedName)
	}
	for _, p := range m.Params {
		if p.Type == nil {
			continue
		}
		for _, pc := range p.Type.ReferencedClasses() {
			if !e.set.available(pc) {
				e.r.Report(diag.UnavailableSymbol, m.Pos,
					"Parameter of hidden type "+p.Type.String()+" in "+c.QualifiedName+"."+m.Name+"()")
				break
			}
		}
	}
}

// Set is the result of a closure run.
type Set struct {
	pred     Predicate
	members  map[*model.Class]bool
	repaired map[*model.Class]*model.Class
	stubs    map[string]bool
	sorted   []*model.Class
}

func newSet(pred Predicate, stubPackages []string) *Set {
	s := &Set{
		pred:     pred,
		members:  make(map[*model.Class]bool),
		repaired: make(map[*model.Class]*model.Class),
	}
	if len(stubPackages) > 0 {
		s.stubs = make(map[string]bool, len(stubPackages))
		for _, p := range stubPackages {
			s.stubs[p] = true
		}
	}
	return s
}

// Predicate returns the visibility rule the set was computed with.
func (s *Set) Predicate() Predicate { return s.pred }

// Contains reports membership.
func (s *Set) Contains(c *model.Class) bool { return c != nil && s.members[c] }

// Len returns the number of classes in the set, local or not.
func (s *Set) Len() int { return len(s.members) }

// available reports whether a referenced class can be exposed: it is kept
// and not hidden.
func (s *Set) available(c *model.Class) bool {
	return s.Contains(c) && !c.IsHidden()
}

func (s *Set) seal() {
	out := make([]*model.Class, 0, len(s.members))
	for c := range s.members {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *model.Class) int { return strings.Compare(a.QualifiedName, b.QualifiedName) })
	s.sorted = out
}

// Classes returns the members sorted by qualified name.
func (s *Set) Classes() []*model.Class { return s.sorted }

// EffectiveSuperclass is the superclass to expose for c: none when the
// declared one was hidden.
func (s *Set) EffectiveSuperclass(c *model.Class) *model.Class {
	if _, ok := s.repaired[c]; ok {
		return nil
	}
	return c.Superclass
}

// Repaired reports whether c lost a hidden superclass, and which.
func (s *Set) Repaired(c *model.Class) (*model.Class, bool) {
	sup, ok := s.repaired[c]
	return sup, ok
}

// Emitted reports whether c belongs in written output: a local, non-hidden
// member of the set whose package passes the stub filter.
func (s *Set) Emitted(c *model.Class) bool {
	if !s.Contains(c) || !c.IsLocal() || c.IsHidden() {
		return false
	}
	if s.stubs == nil {
		return true
	}
	return c.Package != nil && s.stubs[c.Package.Name]
}

// Packages returns the names of packages holding emitted classes, sorted.
func (s *Set) Packages() []string {
	seen := make(map[string]bool)
	for _, c := range s.sorted {
		if s.Emitted(c) && c.Package != nil {
			seen[c.Package.Name] = true
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// EmittedIn returns the emitted classes of one package sorted by
// package-relative name.
func (s *Set) EmittedIn(pkg string) []*model.Class {
	var out []*model.Class
	for _, c := range s.Classes() {
		if c.Package != nil && c.Package.Name == pkg && s.Emitted(c) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b *model.Class) int { return strings.Compare(a.Name, b.Name) })
	return out
}
