package closure

import (
	"context"
	"testing"

	"github.com/vijaygarry/doclava/internal/builder"
	"github.com/vijaygarry/doclava/internal/diag"
	"github.com/vijaygarry/doclava/internal/model"
	"github.com/vijaygarry/doclava/internal/source"
	"github.com/vijaygarry/doclava/internal/symsrc"
)

var (
	public  = symsrc.Modifiers{Visibility: "public"}
	private = symsrc.Modifiers{Visibility: "private"}
)

func ref(s string) symsrc.TypeRef { return symsrc.MustParseTypeRef(s) }

func refp(s string) *symsrc.TypeRef {
	r := ref(s)
	return &r
}

func snapshot(t *testing.T, decls ...*symsrc.ClassDecl) *model.Snapshot {
	t.Helper()
	snap, err := builder.Build(context.Background(), symsrc.NewSet("t").MustAdd(decls...), builder.Options{Name: "t"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return snap
}

func class(t *testing.T, s *model.Snapshot, qname string) *model.Class {
	t.Helper()
	c, ok := s.Lookup(qname)
	if !ok {
		t.Fatalf("%s missing", qname)
	}
	return c
}

func TestCompute_FollowsExposedEdges(t *testing.T) {
	snap := snapshot(t,
		&symsrc.ClassDecl{
			Name: "Api", Package: "p", Modifiers: public,
			Methods: []symsrc.MethodDecl{{
				Name: "get", Modifiers: public, Return: refp("java.util.List<p.Item>"),
				Params: []symsrc.ParamDecl{{Name: "k", Type: ref("p.Key")}},
				Throws: []string{"p.Failure"},
			}},
			Fields: []symsrc.FieldDecl{{Name: "secret", Modifiers: private, Type: ref("p.Secret")}},
		},
		&symsrc.ClassDecl{Name: "Item", Package: "p"},
		&symsrc.ClassDecl{Name: "Key", Package: "p"},
		&symsrc.ClassDecl{Name: "Failure", Package: "p", Extends: refp("java.lang.Exception")},
		&symsrc.ClassDecl{Name: "Secret", Package: "p"},
		&symsrc.ClassDecl{Name: "Unrelated", Package: "p"},
	)
	set := Compute(context.Background(), snap, Options{}, nil)

	for _, q := range []string{"p.Api", "p.Item", "p.Key", "p.Failure", "java.util.List", "java.lang.Exception"} {
		if !set.Contains(class(t, snap, q)) {
			t.Errorf("%s must be in the closure", q)
		}
	}
	for _, q := range []string{"p.Secret", "p.Unrelated"} {
		if set.Contains(class(t, snap, q)) {
			t.Errorf("%s must not be in the closure", q)
		}
	}
}

func TestCompute_CycleTerminates(t *testing.T) {
	snap := snapshot(t,
		&symsrc.ClassDecl{
			Name: "A", Package: "p", Modifiers: public,
			Fields: []symsrc.FieldDecl{{Name: "b", Modifiers: public, Type: ref("p.B")}},
		},
		&symsrc.ClassDecl{
			Name: "B", Package: "p",
			Methods: []symsrc.MethodDecl{{Name: "a", Modifiers: public, Return: refp("p.A")}},
		},
	)
	set := Compute(context.Background(), snap, Options{}, nil)
	if !set.Contains(class(t, snap, "p.A")) || !set.Contains(class(t, snap, "p.B")) {
		t.Fatalf("both cycle members must be in the closure")
	}
}

func TestCompute_HiddenSuperclassRepairedOnce(t *testing.T) {
	snap := snapshot(t,
		&symsrc.ClassDecl{Name: "Base", Package: "p", Modifiers: public, Comment: "/** @hide */"},
		&symsrc.ClassDecl{Name: "Child", Package: "p", Modifiers: public, Extends: refp("p.Base"),
			Pos: source.At("Child.java", 3)},
		&symsrc.ClassDecl{Name: "User", Package: "p", Modifiers: public,
			Fields: []symsrc.FieldDecl{{Name: "c", Modifiers: public, Type: ref("p.Child")}}},
	)
	reg := diag.NewRegistry()
	set := Compute(context.Background(), snap, Options{}, reg)

	child := class(t, snap, "p.Child")
	if set.EffectiveSuperclass(child) != nil {
		t.Fatalf("effective superclass must be none")
	}
	if set.Contains(class(t, snap, "p.Base")) {
		t.Fatalf("hidden superclass must not be added")
	}
	got := reg.Codes(diag.HiddenSuperclass)
	if len(got) != 1 {
		t.Fatalf("HIDDEN_SUPERCLASS reported %d times, want 1", len(got))
	}
	if want := "Public class p.Child stripped of unavailable superclass p.Base"; got[0].Message != want {
		t.Fatalf("message = %q", got[0].Message)
	}
	if got[0].Position.String() != "Child.java:3" {
		t.Fatalf("position = %s", got[0].Position)
	}
}

func TestCompute_UnavailableSymbols(t *testing.T) {
	snap := snapshot(t,
		&symsrc.ClassDecl{Name: "Impl", Package: "p", Modifiers: public, Comment: "/** @hide */"},
		&symsrc.ClassDecl{
			Name: "Api", Package: "p", Modifiers: public,
			Methods: []symsrc.MethodDecl{
				{Name: "make", Modifiers: public, Return: refp("p.Impl")},
				{Name: "take", Modifiers: public, Return: refp("void"),
					Params: []symsrc.ParamDecl{{Name: "i", Type: ref("p.Impl")}}},
			},
		},
	)
	reg := diag.NewRegistry()
	Compute(context.Background(), snap, Options{}, reg)

	msgs := map[string]bool{}
	for _, d := range reg.Codes(diag.UnavailableSymbol) {
		msgs[d.Message] = true
	}
	for _, want := range []string{
		"Method p.Api.make returns unavailable type p.Impl",
		"Parameter of hidden type p.Impl in p.Api.take()",
	} {
		if !msgs[want] {
			t.Errorf("missing %q in %v", want, msgs)
		}
	}
	if !reg.HadError() {
		t.Fatalf("UNAVAILABLE_SYMBOL defaults to error")
	}
}

func TestCompute_DeprecationFindings(t *testing.T) {
	snap := snapshot(t,
		&symsrc.ClassDecl{Name: "Old", Package: "p", Modifiers: public, Comment: "/** @deprecated */"},
		&symsrc.ClassDecl{Name: "Gone", Package: "p", Modifiers: public, Deprecated: true},
	)
	reg := diag.NewRegistry()
	reg.SetLevel(diag.Deprecated, diag.SevWarning)
	Compute(context.Background(), snap, Options{}, reg)

	mismatch := reg.Codes(diag.DeprecationMismatch)
	if len(mismatch) != 1 || mismatch[0].Message != "Class p.Old: @Deprecated annotation and @deprecated comment do not match" {
		t.Fatalf("DEPRECATION_MISMATCH = %v", mismatch)
	}
	if got := len(reg.Codes(diag.Deprecated)); got != 2 {
		t.Fatalf("DEPRECATED reported %d times, want 2", got)
	}
}

func TestSet_StubPackagesFilterEmission(t *testing.T) {
	snap := snapshot(t,
		&symsrc.ClassDecl{Name: "A", Package: "p", Modifiers: public},
		&symsrc.ClassDecl{Name: "B", Package: "q", Modifiers: public},
	)
	set := Compute(context.Background(), snap, Options{StubPackages: []string{"q"}}, nil)
	a, b := class(t, snap, "p.A"), class(t, snap, "q.B")
	if !set.Contains(a) || set.Emitted(a) {
		t.Fatalf("p.A must be in the closure but not emitted")
	}
	if !set.Emitted(b) {
		t.Fatalf("q.B must be emitted")
	}
	if pkgs := set.Packages(); len(pkgs) != 1 || pkgs[0] != "q" {
		t.Fatalf("Packages() = %v", pkgs)
	}
}
