package apixml

import (
	"bufio"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/vijaygarry/doclava/internal/closure"
	"github.com/vijaygarry/doclava/internal/model"
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escape(s string) string { return attrEscaper.Replace(s) }

type writer struct {
	w    *bufio.Writer
	set  *closure.Set
	pred closure.Predicate
}

// Write serializes every emitted class of set. Packages and classes come out
// sorted by name; members are filtered by the set's predicate, and methods
// that merely override a visible concrete superclass implementation are
// left out. Classes in the unnamed package are never written.
func Write(w io.Writer, set *closure.Set) error {
	x := &writer{w: bufio.NewWriter(w), set: set, pred: set.Predicate()}
	if x.pred == nil {
		x.pred = closure.DefaultPredicate{}
	}
	x.line("<api>")
	for _, pkg := range set.Packages() {
		if pkg == "" {
			continue
		}
		x.line(`<package name="` + escape(pkg) + `"`)
		x.line(">")
		for _, c := range set.EmittedIn(pkg) {
			x.class(c)
		}
		x.line("</package>")
	}
	x.line("</api>")
	return x.w.Flush()
}

// bufio.Writer keeps the first error; Flush reports it.
func (x *writer) line(s string) {
	x.w.WriteString(s)
	x.w.WriteByte('\n')
}

func (x *writer) attr(name, value string) {
	x.line(" " + name + `="` + escape(value) + `"`)
}

func (x *writer) flag(name string, on bool) {
	x.attr(name, strconv.FormatBool(on))
}

func deprecation(on bool) string {
	if on {
		return "deprecated"
	}
	return "not deprecated"
}

func (x *writer) class(c *model.Class) {
	decl := "class"
	if c.IsInterface() {
		decl = "interface"
	}
	x.line("<" + decl + ` name="` + escape(c.Name) + `"`)
	if !c.IsInterface() && c.QualifiedName != model.RootClassName {
		ext := model.RootClassName
		if sup := x.set.EffectiveSuperclass(c); sup != nil {
			ext = sup.QualifiedName
		}
		x.attr("extends", ext)
	}
	x.flag("abstract", c.Mods.IsAbstract())
	x.flag("static", c.Mods.IsStatic())
	x.flag("final", c.Mods.IsFinal())
	x.attr("deprecated", deprecation(c.IsDeprecated()))
	x.attr("visibility", c.Mods.Scope.String())
	x.line(">")

	ifaces := make([]*model.Class, 0, len(c.Interfaces))
	for _, iface := range c.Interfaces {
		if x.set.Contains(iface) && !iface.IsHidden() {
			ifaces = append(ifaces, iface)
		}
	}
	slices.SortFunc(ifaces, func(a, b *model.Class) int { return strings.Compare(a.QualifiedName, b.QualifiedName) })
	for _, iface := range ifaces {
		x.line(`<implements name="` + escape(iface.QualifiedName) + `">`)
		x.line("</implements>")
	}

	for _, m := range sortedMethods(c.Constructors) {
		if x.pred.MethodVisible(m) {
			x.constructor(m)
		}
	}
	for _, m := range sortedMethods(c.Methods) {
		if x.pred.MethodVisible(m) && !x.isOverride(m) {
			x.method(m)
		}
	}
	fields := slices.Clone(c.AllFields())
	slices.SortStableFunc(fields, func(a, b *model.Field) int { return strings.Compare(a.Name, b.Name) })
	for _, f := range fields {
		if x.pred.FieldVisible(f) {
			x.field(f)
		}
	}
	x.line("</" + decl + ">")
}

func sortedMethods(list []*model.Method) []*model.Method {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b *model.Method) int {
		return strings.Compare(a.HashableName(), b.HashableName())
	})
	return out
}

// isOverride reports a method that re-implements a concrete, equally
// visible method of a kept superclass. Such a method adds nothing to the
// surface. Abstract, static and final methods are always listed.
func (x *writer) isOverride(m *model.Method) bool {
	if m.Mods.IsAbstract() || m.Mods.IsStatic() || m.Mods.IsFinal() {
		return false
	}
	key := m.HashableName()
	seen := map[*model.Class]bool{m.Class: true}
	for sup := x.set.EffectiveSuperclass(m.Class); sup != nil && !seen[sup]; sup = x.set.EffectiveSuperclass(sup) {
		seen[sup] = true
		if !x.set.Contains(sup) {
			return false
		}
		om, ok := sup.Method(key)
		if !ok {
			continue
		}
		return om.Mods.Scope == m.Mods.Scope && !om.Mods.IsAbstract() && !om.IsHidden()
	}
	return false
}

func (x *writer) constructor(m *model.Method) {
	x.line(`<constructor name="` + escape(m.Name) + `"`)
	x.attr("type", m.Class.QualifiedName)
	x.flag("static", m.Mods.IsStatic())
	x.flag("final", m.Mods.IsFinal())
	x.attr("deprecated", deprecation(m.IsDeprecated()))
	x.attr("visibility", m.Mods.Scope.String())
	x.line(">")
	x.signature(m)
	x.line("</constructor>")
}

func (x *writer) method(m *model.Method) {
	x.line(`<method name="` + escape(m.Name) + `"`)
	ret := "void"
	if m.Return != nil {
		ret = m.Return.String()
	}
	x.attr("return", ret)
	x.flag("abstract", m.Mods.IsAbstract())
	x.flag("native", m.Mods.IsNative())
	x.flag("synchronized", m.Mods.IsSynchronized())
	x.flag("static", m.Mods.IsStatic())
	x.flag("final", m.Mods.IsFinal())
	x.attr("deprecated", deprecation(m.IsDeprecated()))
	x.attr("visibility", m.Mods.Scope.String())
	x.line(">")
	x.signature(m)
	x.line("</method>")
}

// signature writes parameters in declaration order and exceptions sorted.
func (x *writer) signature(m *model.Method) {
	for i, p := range m.Params {
		typ := p.Type.String()
		if m.VarArgs && i == len(m.Params)-1 && !p.Type.IsVarArgs() {
			typ = strings.TrimSuffix(typ, "[]") + "..."
		}
		x.line(`<parameter name="` + escape(p.Name) + `" type="` + escape(typ) + `">`)
		x.line("</parameter>")
	}
	throws := slices.Clone(m.Throws)
	slices.SortFunc(throws, func(a, b *model.Class) int { return strings.Compare(a.QualifiedName, b.QualifiedName) })
	for _, ex := range throws {
		x.line(`<exception name="` + escape(ex.Name) + `" type="` + escape(ex.QualifiedName) + `">`)
		x.line("</exception>")
	}
}

// fieldInitialized mirrors when a value attribute is written: constants,
// arrays and interface fields always carry one, "null" when unknown.
func fieldInitialized(f *model.Field) bool {
	if f.HasValue {
		return true
	}
	if f.Type != nil && f.Type.Dimension != "" {
		return true
	}
	return f.Class != nil && f.Class.IsInterface()
}

func (x *writer) field(f *model.Field) {
	x.line(`<field name="` + escape(f.Name) + `"`)
	x.attr("type", f.Type.String())
	x.flag("transient", f.Mods.IsTransient())
	x.flag("volatile", f.Mods.IsVolatile())
	if fieldInitialized(f) {
		v := "null"
		if f.HasValue {
			v = f.Value
		}
		x.attr("value", v)
	}
	x.flag("static", f.Mods.IsStatic())
	x.flag("final", f.Mods.IsFinal())
	x.attr("deprecated", deprecation(f.IsDeprecated()))
	x.attr("visibility", f.Mods.Scope.String())
	x.line(">")
	x.line("</field>")
}
