// Package builder turns symbol declarations into a linked, frozen
// model.Snapshot.
//
// Construction runs in two phases. Requesting a class the first time
// creates a shell, registers it by qualified name and pushes it on a work
// stack; repeated or cyclic requests return the registered shell. The stack
// is then drained iteratively and each shell is filled with its supertypes,
// members and annotations, which may request further classes. Names that a
// declaration references but the source does not declare become non-local
// shells without members.
package builder

import (
	"context"
	"strconv"
	"strings"

	"github.com/vijaygarry/doclava/internal/model"
	"github.com/vijaygarry/doclava/internal/symsrc"
	"github.com/vijaygarry/doclava/internal/trace"
)

// Options configures a build.
type Options struct {
	// Name labels the snapshot, typically the API version.
	Name string
	// HiddenPackages are treated as if their package comment said @hide.
	HiddenPackages []string
}

type pending struct {
	cls  *model.Class
	decl *symsrc.ClassDecl
}

type builder struct {
	src    symsrc.Source
	snap   *model.Snapshot
	stack  []pending
	hidden map[string]bool
	filled int
}

// Build constructs the snapshot for src. It fails only when ctx is done.
func Build(ctx context.Context, src symsrc.Source, opts Options) (*model.Snapshot, error) {
	ctx, span := trace.Start(ctx, trace.ScopePass, "build")
	b := &builder{
		src:    src,
		snap:   model.NewSnapshot(opts.Name),
		hidden: make(map[string]bool, len(opts.HiddenPackages)),
	}
	for _, p := range opts.HiddenPackages {
		b.hidden[p] = true
	}
	b.initPackages()

	for i, d := range src.Classes() {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				span.End("canceled")
				return nil, err
			}
		}
		b.obtainClass(d.QualifiedName())
		b.drain()
	}
	b.snap.Freeze()

	span.WithExtra("classes", strconv.Itoa(b.snap.Len())).
		WithExtra("local", strconv.Itoa(b.filled)).
		WithExtra("types", strconv.Itoa(b.snap.Types().Len())).
		End(opts.Name)
	return b.snap, nil
}

func (b *builder) initPackages() {
	for _, pd := range b.src.Packages() {
		p := b.snap.EnsurePackage(pd.Name)
		p.Doc = model.ParseDoc(pd.Comment)
		p.Pos = pd.Pos
		p.Hidden = p.Doc.Hidden || b.hidden[pd.Name]
	}
}

func (b *builder) ensurePackage(name string) *model.Package {
	if p, ok := b.snap.Package(name); ok {
		return p
	}
	p := b.snap.EnsurePackage(name)
	p.Hidden = b.hidden[name]
	return p
}

// validClassName rejects names that cannot denote a class: empty, with
// whitespace or generic syntax, or with empty dotted segments.
func validClassName(qname string) bool {
	if qname == "" || strings.ContainsAny(qname, " \t\n<>[]?,&") {
		return false
	}
	for _, seg := range strings.Split(qname, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}

// obtainClass returns the unique node for qname, creating a shell on first
// request. Malformed names resolve to nil.
func (b *builder) obtainClass(qname string) *model.Class {
	qname = strings.TrimSpace(qname)
	if !validClassName(qname) {
		return nil
	}
	if c, ok := b.snap.Lookup(qname); ok {
		return c
	}
	decl, local := b.src.Lookup(qname)
	c, _ := b.snap.NewClass(qname, local)
	if !local {
		pkg, name := model.SplitQualifiedName(qname)
		c.Name = name
		c.SimpleName = model.SimpleNameOf(name)
		c.Package = b.ensurePackage(pkg)
		return c
	}

	c.Name = decl.Name
	c.SimpleName = model.SimpleNameOf(decl.Name)
	c.Kind = model.ParseKind(decl.Kind)
	c.Mods = decl.Modifiers.Model()
	c.Pos = decl.Pos
	b.ensurePackage(decl.Package).AddClass(c)
	b.stack = append(b.stack, pending{cls: c, decl: decl})
	return c
}

func (b *builder) drain() {
	for len(b.stack) > 0 {
		n := len(b.stack) - 1
		p := b.stack[n]
		b.stack = b.stack[:n]
		b.fill(p.cls, p.decl)
		b.filled++
	}
}

func (b *builder) fill(c *model.Class, d *symsrc.ClassDecl) {
	c.Doc = model.ParseDoc(d.Comment)
	c.Annotations = b.annotations(d.Annotations, d.Deprecated)
	if d.Deprecated {
		c.Doc.Deprecated = true
	}

	if d.Containing != "" {
		if outer := b.obtainClass(d.Containing); outer != nil && outer != c {
			c.Containing = outer
			outer.Inner = append(outer.Inner, c)
		}
	}

	scope := typeScope{}
	for _, tp := range d.TypeParams {
		scope[tp.Name] = true
	}
	for _, tp := range d.TypeParams {
		c.TypeParams = append(c.TypeParams, b.typeInfo(tp, scope))
	}

	switch {
	case d.Extends != nil:
		c.SuperType = b.typeInfo(*d.Extends, scope)
		c.Superclass = c.SuperType.Class
	case !c.IsInterface() && c.QualifiedName != model.RootClassName:
		c.SuperType = b.typeInfo(symsrc.TypeRef{Name: model.RootClassName}, scope)
		c.Superclass = c.SuperType.Class
	}
	for _, ref := range d.Implements {
		t := b.typeInfo(ref, scope)
		c.InterfaceTypes = append(c.InterfaceTypes, t)
		if t.Class != nil {
			c.Interfaces = append(c.Interfaces, t.Class)
		}
	}

	for i := range d.Constructors {
		m := b.method(c, &d.Constructors[i], scope)
		m.Constructor = true
		if m.Name == "" {
			m.Name = c.SimpleName
		}
		c.Constructors = append(c.Constructors, m)
	}
	for i := range d.Methods {
		c.Methods = append(c.Methods, b.method(c, &d.Methods[i], scope))
	}
	for i := range d.AnnotationElements {
		m := b.method(c, &d.AnnotationElements[i], scope)
		m.AnnotationElement = true
		c.AnnotationElements = append(c.AnnotationElements, m)
	}
	for i := range d.Fields {
		c.Fields = append(c.Fields, b.field(c, &d.Fields[i], scope))
	}
	for i := range d.EnumConstants {
		f := b.field(c, &d.EnumConstants[i], scope)
		f.EnumConstant = true
		c.EnumConstants = append(c.EnumConstants, f)
	}
}

func (b *builder) method(c *model.Class, d *symsrc.MethodDecl, outer typeScope) *model.Method {
	scope := outer
	if len(d.TypeParams) > 0 {
		scope = outer.with(d.TypeParams)
	}
	m := &model.Method{
		Name:        d.Name,
		Class:       c,
		Mods:        d.Modifiers.Model(),
		VarArgs:     d.VarArgs,
		Default:     d.Default,
		Annotations: b.annotations(d.Annotations, d.Deprecated),
		Doc:         model.ParseDoc(d.Comment),
		Pos:         d.Pos,
	}
	if d.Deprecated {
		m.Doc.Deprecated = true
	}
	for _, tp := range d.TypeParams {
		m.TypeParams = append(m.TypeParams, b.typeInfo(tp, scope))
	}
	if d.Return != nil {
		m.Return = b.typeInfo(*d.Return, scope)
	}
	for i, p := range d.Params {
		m.Params = append(m.Params, &model.Param{
			Name:  p.Name,
			Type:  b.typeInfo(p.Type, scope),
			Index: i,
			Pos:   d.Pos,
		})
	}
	for _, name := range d.Throws {
		if t := b.obtainClass(name); t != nil {
			m.Throws = append(m.Throws, t)
		}
	}
	return m
}

func (b *builder) field(c *model.Class, d *symsrc.FieldDecl, scope typeScope) *model.Field {
	f := &model.Field{
		Name:        d.Name,
		Class:       c,
		Mods:        d.Modifiers.Model(),
		Type:        b.typeInfo(d.Type, scope),
		Annotations: b.annotations(d.Annotations, d.Deprecated),
		Doc:         model.ParseDoc(d.Comment),
		Pos:         d.Pos,
	}
	if d.Value != nil {
		f.Value = *d.Value
		f.HasValue = true
	}
	if d.Deprecated {
		f.Doc.Deprecated = true
	}
	return f
}

// annotations resolves applied annotations. An explicit deprecated flag is
// recorded as the deprecation annotation so both deprecation sources agree.
func (b *builder) annotations(decls []symsrc.AnnotationDecl, deprecated bool) []*model.Annotation {
	if len(decls) == 0 && !deprecated {
		return nil
	}
	out := make([]*model.Annotation, 0, len(decls)+1)
	seenDeprecated := false
	for _, a := range decls {
		if a.Name == model.DeprecatedAnnotation {
			seenDeprecated = true
		}
		out = append(out, &model.Annotation{Name: a.Name, Type: b.obtainClass(a.Name), Values: a.Values})
	}
	if deprecated && !seenDeprecated {
		out = append(out, &model.Annotation{
			Name: model.DeprecatedAnnotation,
			Type: b.obtainClass(model.DeprecatedAnnotation),
		})
	}
	return out
}
