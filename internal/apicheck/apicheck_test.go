package apicheck

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/vijaygarry/doclava/internal/builder"
	"github.com/vijaygarry/doclava/internal/diag"
	"github.com/vijaygarry/doclava/internal/model"
	"github.com/vijaygarry/doclava/internal/source"
	"github.com/vijaygarry/doclava/internal/symsrc"
)

var public = symsrc.Modifiers{Visibility: "public"}

func ref(s string) symsrc.TypeRef { return symsrc.MustParseTypeRef(s) }

func refp(s string) *symsrc.TypeRef {
	r := ref(s)
	return &r
}

func strp(s string) *string { return &s }

func snapshot(t *testing.T, name string, decls ...*symsrc.ClassDecl) *model.Snapshot {
	t.Helper()
	snap, err := builder.Build(context.Background(), symsrc.NewSet(name).MustAdd(decls...), builder.Options{Name: name})
	if err != nil {
		t.Fatalf("Build(%s): %v", name, err)
	}
	return snap
}

type finding struct {
	code diag.Code
	pos  source.Position
	msg  string
}

type recorder struct{ got []finding }

func (r *recorder) Report(code diag.Code, pos source.Position, msg string) {
	r.got = append(r.got, finding{code: code, pos: pos, msg: msg})
}

func (r *recorder) has(code diag.Code, msg string) bool {
	for _, f := range r.got {
		if f.code == code && f.msg == msg {
			return true
		}
	}
	return false
}

func (r *recorder) count(code diag.Code) int {
	n := 0
	for _, f := range r.got {
		if f.code == code {
			n++
		}
	}
	return n
}

func (r *recorder) String() string {
	out := ""
	for _, f := range r.got {
		out += fmt.Sprintf("\n  %s %s", f.code.Name(), f.msg)
	}
	return out
}

func check(t *testing.T, oldSnap, newSnap *model.Snapshot) *recorder {
	t.Helper()
	rec := &recorder{}
	if _, err := Check(context.Background(), oldSnap, newSnap, rec, Options{}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	return rec
}

func fooDecl(mutate func(d *symsrc.ClassDecl)) *symsrc.ClassDecl {
	d := &symsrc.ClassDecl{
		Name: "Foo", Package: "pkg", Modifiers: public,
		Implements: []symsrc.TypeRef{ref("java.lang.Runnable")},
		Constructors: []symsrc.MethodDecl{{Modifiers: public}},
		Methods: []symsrc.MethodDecl{
			{Name: "bar", Modifiers: public, Return: refp("int")},
			{Name: "run", Modifiers: public, Return: refp("void")},
		},
		Fields: []symsrc.FieldDecl{{
			Name: "MAX", Modifiers: symsrc.Modifiers{Visibility: "public", Static: true, Final: true},
			Type: ref("int"), Value: strp("10"),
		}},
		Pos: source.At("Foo.java", 1),
	}
	if mutate != nil {
		mutate(d)
	}
	return d
}

func TestCheck_IdenticalSnapshotsAreClean(t *testing.T) {
	a := snapshot(t, "a", fooDecl(nil))
	b := snapshot(t, "b", fooDecl(nil))
	if rec := check(t, a, b); len(rec.got) != 0 {
		t.Fatalf("expected no findings, got:%s", rec)
	}
	if rec := check(t, a, a); len(rec.got) != 0 {
		t.Fatalf("self comparison must be clean, got:%s", rec)
	}
}

func TestCheck_ReturnTypeChange(t *testing.T) {
	oldSnap := snapshot(t, "old", fooDecl(nil))
	newSnap := snapshot(t, "new", fooDecl(func(d *symsrc.ClassDecl) {
		d.Methods[0].Return = refp("long")
	}))
	rec := check(t, oldSnap, newSnap)
	if len(rec.got) != 1 || !rec.has(diag.ChangedType, "Method pkg.Foo.bar has changed return type from int to long") {
		t.Fatalf("unexpected findings:%s", rec)
	}
}

func TestCheck_RemovedInterface(t *testing.T) {
	oldSnap := snapshot(t, "old", fooDecl(nil))
	newSnap := snapshot(t, "new", fooDecl(func(d *symsrc.ClassDecl) {
		d.Implements = nil
	}))
	rec := check(t, oldSnap, newSnap)
	if !rec.has(diag.RemovedInterface, "Class pkg.Foo no longer implements java.lang.Runnable") {
		t.Fatalf("missing REMOVED_INTERFACE:%s", rec)
	}
	if rec.got[0].pos.String() != "Foo.java:1" {
		t.Fatalf("position = %s", rec.got[0].pos)
	}
}

func TestCheck_AddRemoveSymmetry(t *testing.T) {
	withCtor := snapshot(t, "with", fooDecl(func(d *symsrc.ClassDecl) {
		d.Constructors = append(d.Constructors, symsrc.MethodDecl{
			Modifiers: public, Params: []symsrc.ParamDecl{{Name: "n", Type: ref("int")}},
		})
		d.Methods = append(d.Methods, symsrc.MethodDecl{Name: "baz", Modifiers: public, Return: refp("void")})
		d.Fields = append(d.Fields, symsrc.FieldDecl{Name: "count", Modifiers: public, Type: ref("long")})
	}))
	without := snapshot(t, "without", fooDecl(nil))

	added := check(t, without, withCtor)
	for _, want := range []struct {
		code diag.Code
		msg  string
	}{
		{diag.AddedMethod, "Added public constructor pkg.Foo.Foo(int)"},
		{diag.AddedMethod, "Added public method pkg.Foo.baz"},
		{diag.AddedField, "Added public field pkg.Foo.count"},
	} {
		if !added.has(want.code, want.msg) {
			t.Errorf("missing %s %q:%s", want.code.Name(), want.msg, added)
		}
	}

	removed := check(t, withCtor, without)
	for _, want := range []struct {
		code diag.Code
		msg  string
	}{
		{diag.RemovedMethod, "Removed public constructor pkg.Foo.Foo(int)"},
		{diag.RemovedMethod, "Removed public method pkg.Foo.baz"},
		{diag.RemovedField, "Removed field pkg.Foo.count"},
	} {
		if !removed.has(want.code, want.msg) {
			t.Errorf("missing %s %q:%s", want.code.Name(), want.msg, removed)
		}
	}
	if len(added.got) != len(removed.got) {
		t.Fatalf("added %d findings, removed %d", len(added.got), len(removed.got))
	}
}

func TestCheck_PackagesAndClasses(t *testing.T) {
	oldSnap := snapshot(t, "old",
		fooDecl(nil),
		&symsrc.ClassDecl{Name: "Gone", Package: "pkg", Modifiers: public, Pos: source.At("Gone.java", 2)},
		&symsrc.ClassDecl{Name: "Legacy", Package: "old.pkg", Modifiers: public},
	)
	newSnap := snapshot(t, "new",
		fooDecl(nil),
		&symsrc.ClassDecl{Name: "Fresh", Package: "pkg", Modifiers: public},
		&symsrc.ClassDecl{Name: "Shiny", Package: "new.pkg", Modifiers: public},
	)
	rec := &recorder{}
	stats, err := Check(context.Background(), oldSnap, newSnap, rec, Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	for _, want := range []struct {
		code diag.Code
		msg  string
	}{
		{diag.RemovedPackage, "Removed package old.pkg"},
		{diag.AddedPackage, "Added package new.pkg"},
		{diag.RemovedClass, "Removed public class pkg.Gone"},
		{diag.AddedClass, "Added class Fresh to package pkg"},
	} {
		if !rec.has(want.code, want.msg) {
			t.Errorf("missing %s %q:%s", want.code.Name(), want.msg, rec)
		}
	}
	if stats.PackagesCompared != 1 || stats.PackagesAdded != 1 || stats.PackagesRemoved != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.ClassesCompared != 1 || stats.Findings != len(rec.got) {
		t.Fatalf("stats = %+v, findings %d", stats, len(rec.got))
	}
	for _, f := range rec.got {
		if f.code == diag.RemovedClass && f.pos.String() != "Gone.java:2" {
			t.Fatalf("REMOVED_CLASS must point at the old declaration, got %s", f.pos)
		}
	}
}

func TestCheck_IgnoresNonAPIDeclarations(t *testing.T) {
	private := symsrc.Modifiers{Visibility: "private"}
	oldSnap := snapshot(t, "old",
		fooDecl(func(d *symsrc.ClassDecl) {
			d.Methods = append(d.Methods, symsrc.MethodDecl{Name: "helper", Modifiers: private, Return: refp("void")})
			d.Fields = append(d.Fields, symsrc.FieldDecl{Name: "cache", Modifiers: private, Type: ref("java.lang.Object")})
		}),
		&symsrc.ClassDecl{Name: "Impl", Package: "pkg"},
		&symsrc.ClassDecl{Name: "Secret", Package: "pkg", Modifiers: public, Comment: "/** @hide */"},
		&symsrc.ClassDecl{Name: "Worker", Package: "pkg.internal"},
	)
	newSnap := snapshot(t, "new", fooDecl(nil))

	if rec := check(t, oldSnap, newSnap); len(rec.got) != 0 {
		t.Fatalf("non-API declarations must not be compared, got:%s", rec)
	}
	if rec := check(t, newSnap, oldSnap); len(rec.got) != 0 {
		t.Fatalf("non-API declarations must not be compared, got:%s", rec)
	}

	// Narrowing a public method to private takes it out of the API.
	narrowed := snapshot(t, "narrowed", fooDecl(func(d *symsrc.ClassDecl) {
		d.Methods[0].Modifiers = private
	}))
	rec := check(t, newSnap, narrowed)
	if len(rec.got) != 1 || !rec.has(diag.RemovedMethod, "Removed public method pkg.Foo.bar") {
		t.Fatalf("unexpected findings:%s", rec)
	}
}

func TestCheck_ReorderingIsNotAChange(t *testing.T) {
	barDecl := func() *symsrc.ClassDecl {
		return &symsrc.ClassDecl{
			Name: "Bar", Package: "pkg", Modifiers: public,
			Methods: []symsrc.MethodDecl{{Name: "get", Modifiers: public, Return: refp("java.lang.String")}},
		}
	}
	withMin := func(d *symsrc.ClassDecl) {
		d.Fields = append(d.Fields, symsrc.FieldDecl{
			Name: "MIN", Modifiers: symsrc.Modifiers{Visibility: "public", Static: true, Final: true},
			Type: ref("int"), Value: strp("0"),
		})
	}
	oldSnap := snapshot(t, "old", fooDecl(withMin), barDecl())
	newSnap := snapshot(t, "new", barDecl(), fooDecl(func(d *symsrc.ClassDecl) {
		withMin(d)
		slices.Reverse(d.Methods)
		slices.Reverse(d.Fields)
	}))
	if rec := check(t, oldSnap, newSnap); len(rec.got) != 0 {
		t.Fatalf("reordering must not be reported, got:%s", rec)
	}
}

func TestCheck_InheritedRemovalIsNotReported(t *testing.T) {
	base := &symsrc.ClassDecl{
		Name: "Base", Package: "p", Modifiers: public,
		Methods: []symsrc.MethodDecl{{Name: "run", Modifiers: public, Return: refp("void")}},
	}
	oldSnap := snapshot(t, "old", base, &symsrc.ClassDecl{
		Name: "Child", Package: "p", Modifiers: public, Extends: refp("p.Base"),
		Methods: []symsrc.MethodDecl{{Name: "run", Modifiers: public, Return: refp("void")}},
	})
	newSnap := snapshot(t, "new", base, &symsrc.ClassDecl{
		Name: "Child", Package: "p", Modifiers: public, Extends: refp("p.Base"),
	})
	if rec := check(t, oldSnap, newSnap); rec.count(diag.RemovedMethod) != 0 {
		t.Fatalf("inherited method must not count as removed:%s", rec)
	}
	// The reverse is an override of an inherited method, not an addition.
	if rec := check(t, newSnap, oldSnap); rec.count(diag.AddedMethod) != 0 {
		t.Fatalf("override of inherited method must not count as added:%s", rec)
	}
}

func TestCheck_InterfaceMethodMovedToSuperinterface(t *testing.T) {
	parent := &symsrc.ClassDecl{
		Name: "Parent", Package: "p", Kind: "interface", Modifiers: public,
		Methods: []symsrc.MethodDecl{{Name: "size", Modifiers: symsrc.Modifiers{Visibility: "public", Abstract: true}, Return: refp("int")}},
	}
	oldSnap := snapshot(t, "old", parent, &symsrc.ClassDecl{
		Name: "Sized", Package: "p", Kind: "interface", Modifiers: public,
		Implements: []symsrc.TypeRef{ref("p.Parent")},
		Methods:    []symsrc.MethodDecl{{Name: "size", Modifiers: symsrc.Modifiers{Visibility: "public", Abstract: true}, Return: refp("int")}},
	})
	newSnap := snapshot(t, "new", parent, &symsrc.ClassDecl{
		Name: "Sized", Package: "p", Kind: "interface", Modifiers: public,
		Implements: []symsrc.TypeRef{ref("p.Parent")},
	})
	if rec := check(t, oldSnap, newSnap); rec.count(diag.RemovedMethod) != 0 {
		t.Fatalf("method still reachable through an interface:%s", rec)
	}
}

func TestCheck_FinalExemptions(t *testing.T) {
	cases := []struct {
		name       string
		classFinal bool
		static     bool
		want       int
	}{
		{"instance method of open class", false, false, 1},
		{"instance method of final class", true, false, 0},
		{"static method of open class", false, true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decl := func(final bool) *symsrc.ClassDecl {
				return &symsrc.ClassDecl{
					Name: "C", Package: "p",
					Modifiers: symsrc.Modifiers{Visibility: "public", Final: tc.classFinal},
					Methods: []symsrc.MethodDecl{{
						Name: "m", Return: refp("void"),
						Modifiers: symsrc.Modifiers{Visibility: "public", Static: tc.static, Final: final},
					}},
				}
			}
			rec := check(t, snapshot(t, "old", decl(false)), snapshot(t, "new", decl(true)))
			if got := rec.count(diag.ChangedFinal); got != tc.want {
				t.Fatalf("CHANGED_FINAL reported %d times, want %d:%s", got, tc.want, rec)
			}
		})
	}
}

func TestCheck_FinalizeThrowsExempt(t *testing.T) {
	decl := func(throws []string) *symsrc.ClassDecl {
		return &symsrc.ClassDecl{
			Name: "R", Package: "p", Modifiers: public,
			Methods: []symsrc.MethodDecl{
				{Name: "finalize", Modifiers: symsrc.Modifiers{Visibility: "protected"}, Return: refp("void"), Throws: throws},
				{Name: "close", Modifiers: public, Return: refp("void"), Throws: throws},
			},
		}
	}
	rec := check(t, snapshot(t, "old", decl([]string{"java.lang.Throwable"})), snapshot(t, "new", decl(nil)))
	if got := rec.count(diag.ChangedThrows); got != 1 {
		t.Fatalf("CHANGED_THROWS reported %d times, want 1:%s", got, rec)
	}
	if !rec.has(diag.ChangedThrows, "Method p.R.close no longer throws exception java.lang.Throwable") {
		t.Fatalf("missing close finding:%s", rec)
	}
}

func TestCheck_SynchronizedChangeIsAnError(t *testing.T) {
	decl := func(sync bool) *symsrc.ClassDecl {
		return &symsrc.ClassDecl{
			Name: "A", Package: "p", Modifiers: public,
			Methods: []symsrc.MethodDecl{{
				Name: "n", Return: refp("void"),
				Modifiers: symsrc.Modifiers{Visibility: "public", Synchronized: sync},
			}},
		}
	}
	reg := diag.NewRegistry()
	if _, err := Check(context.Background(), snapshot(t, "old", decl(false)), snapshot(t, "new", decl(true)), reg, Options{}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	got := reg.Codes(diag.ChangedSynchronized)
	if len(got) != 1 || got[0].Message != "Method p.A.n has changed 'synchronized' qualifier from false to true" {
		t.Fatalf("CHANGED_SYNCHRONIZED = %v", got)
	}
	if !reg.HadError() {
		t.Fatalf("synchronized change must fail the run")
	}
}

func TestCheck_SuperclassChange(t *testing.T) {
	oldSnap := snapshot(t, "old",
		&symsrc.ClassDecl{Name: "W", Package: "p", Modifiers: public, Extends: refp("p.Base")},
		&symsrc.ClassDecl{Name: "Base", Package: "p", Modifiers: public},
	)
	newSnap := snapshot(t, "new",
		&symsrc.ClassDecl{Name: "W", Package: "p", Modifiers: public},
		&symsrc.ClassDecl{Name: "Base", Package: "p", Modifiers: public},
	)
	rec := check(t, oldSnap, newSnap)
	if !rec.has(diag.ChangedSuperclass, "Class p.W superclass changed from p.Base to java.lang.Object") {
		t.Fatalf("missing CHANGED_SUPERCLASS:%s", rec)
	}

	// An interface has no superclass on either side.
	iface := func() *symsrc.ClassDecl {
		return &symsrc.ClassDecl{Name: "I", Package: "p", Kind: "interface", Modifiers: public}
	}
	if rec := check(t, snapshot(t, "a", iface()), snapshot(t, "b", iface())); len(rec.got) != 0 {
		t.Fatalf("interfaces must compare clean:%s", rec)
	}
}

func TestCheck_FieldChanges(t *testing.T) {
	oldSnap := snapshot(t, "old", fooDecl(nil))
	newSnap := snapshot(t, "new", fooDecl(func(d *symsrc.ClassDecl) {
		d.Fields[0].Value = strp("20")
		d.Fields[0].Type = ref("long")
		d.Fields[0].Volatile = true
	}))
	rec := check(t, oldSnap, newSnap)
	for _, want := range []struct {
		code diag.Code
		msg  string
	}{
		{diag.ChangedType, "Field pkg.Foo.MAX has changed type from int to long"},
		{diag.ChangedValue, "Field pkg.Foo.MAX has changed value from 10 to 20"},
		{diag.ChangedVolatile, "Field pkg.Foo.MAX has changed 'volatile' qualifier"},
	} {
		if !rec.has(want.code, want.msg) {
			t.Errorf("missing %s %q:%s", want.code.Name(), want.msg, rec)
		}
	}
}

func TestCheck_ClassQualifiers(t *testing.T) {
	oldSnap := snapshot(t, "old", fooDecl(nil))
	newSnap := snapshot(t, "new", fooDecl(func(d *symsrc.ClassDecl) {
		d.Kind = "interface"
		d.Abstract = true
		d.Visibility = "protected"
		d.Deprecated = true
	}))
	rec := check(t, oldSnap, newSnap)
	for _, want := range []struct {
		code diag.Code
		msg  string
	}{
		{diag.ChangedClass, "Class pkg.Foo changed class/interface declaration"},
		{diag.ChangedAbstract, "Class pkg.Foo changed abstract qualifier"},
		{diag.ChangedScope, "Class pkg.Foo scope changed from public to protected"},
		{diag.ChangedDeprecated, "Class pkg.Foo has changed deprecation state"},
	} {
		if !rec.has(want.code, want.msg) {
			t.Errorf("missing %s %q:%s", want.code.Name(), want.msg, rec)
		}
	}
}

func TestCheck_ParallelOutputIsDeterministic(t *testing.T) {
	var oldDecls, newDecls []*symsrc.ClassDecl
	for i := range 12 {
		pkg := fmt.Sprintf("p%02d", i)
		oldDecls = append(oldDecls, &symsrc.ClassDecl{
			Name: "K", Package: pkg, Modifiers: public,
			Methods: []symsrc.MethodDecl{{Name: "a", Modifiers: public, Return: refp("int")}},
		})
		newDecls = append(newDecls, &symsrc.ClassDecl{
			Name: "K", Package: pkg, Modifiers: public,
			Methods: []symsrc.MethodDecl{{Name: "b", Modifiers: public, Return: refp("int")}},
		})
	}
	oldSnap := snapshot(t, "old", oldDecls...)
	newSnap := snapshot(t, "new", newDecls...)

	run := func(jobs int) []finding {
		rec := &recorder{}
		if _, err := Check(context.Background(), oldSnap, newSnap, rec, Options{Jobs: jobs}); err != nil {
			t.Fatalf("Check: %v", err)
		}
		return rec.got
	}
	serial := run(1)
	if len(serial) != 24 {
		t.Fatalf("got %d findings, want 24", len(serial))
	}
	for range 5 {
		if got := run(8); !slices.Equal(got, serial) {
			t.Fatalf("parallel order differs from serial order")
		}
	}
}

func TestCheck_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := snapshot(t, "a", fooDecl(nil))
	if _, err := Check(ctx, a, a, nil, Options{}); err == nil {
		t.Fatalf("Check must fail on a canceled context")
	}
}
