// Package surfacediff renders the visible API of a class as text, one
// declaration per line, and produces unified patches between two snapshots.
// It complements the structured findings of apicheck with something a
// reviewer can read top to bottom.
package surfacediff

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"github.com/vijaygarry/doclava/internal/closure"
	"github.com/vijaygarry/doclava/internal/model"
)

const devNull = "/dev/null"

// Options controls patch generation.
type Options struct {
	// Predicate selects the classes and members that are rendered;
	// closure.DefaultPredicate when nil.
	Predicate closure.Predicate
	// Context is the number of context lines per hunk; 3 when zero.
	Context int
}

// Patch is the unified diff of one class.
type Patch struct {
	Class string
	Text  string
}

// Render prints c in signature-file form:
//
//	public class p.Foo extends java.lang.Object implements java.lang.Runnable {
//	  ctor public Foo();
//	  method public int bar();
//	  field public static final int MAX = 10;
//	}
func Render(c *model.Class, pred closure.Predicate) string {
	if pred == nil {
		pred = closure.DefaultPredicate{}
	}
	var b strings.Builder
	b.WriteString(classHeader(c))
	b.WriteString(" {\n")

	ctors := visibleMethods(c.Constructors, pred)
	for _, m := range ctors {
		fmt.Fprintf(&b, "  ctor %s;\n", joinWords(m.Mods.String(), m.Name+m.Signature()))
	}
	for _, m := range visibleMethods(c.Methods, pred) {
		fmt.Fprintf(&b, "  method %s;\n", joinWords(m.Mods.String(), m.Return.String(), m.Name+m.Signature(), throwsClause(m)))
	}
	for _, f := range visibleFields(c.EnumConstants, pred) {
		fmt.Fprintf(&b, "  enum_constant %s;\n", joinWords(f.Mods.String(), f.Type.String(), f.Name))
	}
	for _, f := range visibleFields(c.Fields, pred) {
		line := joinWords(f.Mods.String(), f.Type.String(), f.Name)
		if f.HasValue {
			line += " = " + f.Value
		}
		fmt.Fprintf(&b, "  field %s;\n", line)
	}
	b.WriteString("}\n")
	return b.String()
}

func classHeader(c *model.Class) string {
	kind := "class"
	switch c.Kind {
	case model.KindInterface:
		kind = "interface"
	case model.KindEnum:
		kind = "enum"
	case model.KindAnnotation:
		kind = "@interface"
	}
	mods := c.Mods
	if c.IsInterface() {
		mods.Flags &^= model.FlagAbstract
	}
	words := []string{mods.String()}
	if c.IsDeprecated() {
		words = append(words, "deprecated")
	}
	words = append(words, kind, c.QualifiedName)
	if super := c.SuperclassName(); super != "" && !c.IsInterface() && !c.IsEnum() {
		words = append(words, "extends", super)
	}
	if len(c.Interfaces) > 0 {
		names := make([]string, 0, len(c.Interfaces))
		for _, i := range c.Interfaces {
			names = append(names, i.QualifiedName)
		}
		slices.Sort(names)
		keyword := "implements"
		if c.IsInterface() {
			keyword = "extends"
		}
		words = append(words, keyword, strings.Join(names, " "))
	}
	return joinWords(words...)
}

func throwsClause(m *model.Method) string {
	if len(m.Throws) == 0 {
		return ""
	}
	names := make([]string, 0, len(m.Throws))
	for _, t := range m.Throws {
		names = append(names, t.QualifiedName)
	}
	slices.Sort(names)
	return "throws " + strings.Join(names, ", ")
}

func visibleMethods(list []*model.Method, pred closure.Predicate) []*model.Method {
	out := make([]*model.Method, 0, len(list))
	for _, m := range list {
		if pred.MethodVisible(m) {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b *model.Method) int {
		return cmp.Compare(a.HashableName(), b.HashableName())
	})
	return out
}

func visibleFields(list []*model.Field, pred closure.Predicate) []*model.Field {
	out := make([]*model.Field, 0, len(list))
	for _, f := range list {
		if pred.FieldVisible(f) {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b *model.Field) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func joinWords(words ...string) string {
	kept := words[:0:0]
	for _, w := range words {
		if w != "" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// Diff renders every visible class of both snapshots and returns a patch for
// each class whose text differs, sorted by qualified name. Added and removed
// classes diff against /dev/null.
func Diff(oldSnap, newSnap *model.Snapshot, opts Options) ([]Patch, error) {
	pred := opts.Predicate
	if pred == nil {
		pred = closure.DefaultPredicate{}
	}
	context := opts.Context
	if context <= 0 {
		context = 3
	}
	oldText := renderAll(oldSnap, pred)
	newText := renderAll(newSnap, pred)

	names := make([]string, 0, len(oldText)+len(newText))
	for name := range oldText {
		names = append(names, name)
	}
	for name := range newText {
		if _, ok := oldText[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	var patches []Patch
	for _, name := range names {
		a, inOld := oldText[name]
		b, inNew := newText[name]
		if inOld && inNew && a == b {
			continue
		}
		from, to := "a/"+name, "b/"+name
		if !inOld {
			from = devNull
		}
		if !inNew {
			to = devNull
		}
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        splitLines(a),
			B:        splitLines(b),
			FromFile: from,
			ToFile:   to,
			Context:  context,
		})
		if err != nil {
			return nil, fmt.Errorf("diff %s: %w", name, err)
		}
		patches = append(patches, Patch{Class: name, Text: text})
	}
	return patches, nil
}

func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func renderAll(snap *model.Snapshot, pred closure.Predicate) map[string]string {
	out := make(map[string]string)
	if snap == nil {
		return out
	}
	for _, c := range snap.LocalClasses() {
		if pred.ClassVisible(c) {
			out[c.QualifiedName] = Render(c, pred)
		}
	}
	return out
}

// Write prints patches back to back.
func Write(w io.Writer, patches []Patch) error {
	for _, p := range patches {
		if _, err := io.WriteString(w, p.Text); err != nil {
			return err
		}
	}
	return nil
}
