package model

import "testing"

func newTestClass(s *Snapshot, qname string) *Class {
	c, _ := s.NewClass(qname, true)
	pkg, name := SplitQualifiedName(qname)
	c.Name = name
	c.SimpleName = SimpleNameOf(name)
	s.EnsurePackage(pkg).AddClass(c)
	return c
}

func TestTypeTable_InternSharesStructurallyEqualTypes(t *testing.T) {
	tt := NewTypeTable()
	str := func() *TypeInfo { return &TypeInfo{QualifiedName: "java.lang.String", SimpleName: "String"} }
	integer := &TypeInfo{QualifiedName: "java.lang.Integer", SimpleName: "Integer"}

	a := tt.Intern(&TypeInfo{QualifiedName: "java.util.List", SimpleName: "List", Args: []*TypeInfo{str()}})
	b := tt.Intern(&TypeInfo{QualifiedName: "java.util.List", SimpleName: "List", Args: []*TypeInfo{str()}})
	c := tt.Intern(&TypeInfo{QualifiedName: "java.util.List", SimpleName: "List", Args: []*TypeInfo{integer}})

	if a != b {
		t.Fatalf("List<String> interned twice gave different nodes")
	}
	if a == c {
		t.Fatalf("List<String> and List<Integer> must differ")
	}
	if got := a.String(); got != "java.util.List<java.lang.String>" {
		t.Fatalf("String() = %q", got)
	}
	if got := a.ErasedName(); got != "java.util.List" {
		t.Fatalf("ErasedName() = %q", got)
	}
	if tt.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tt.Len())
	}
}

func TestTypeInfo_Rendering(t *testing.T) {
	tests := []struct {
		name   string
		typ    *TypeInfo
		str    string
		erased string
	}{
		{"array", &TypeInfo{Primitive: true, QualifiedName: "int", Dimension: "[]"}, "int[]", "int[]"},
		{"varargs", &TypeInfo{QualifiedName: "java.lang.String", Dimension: "..."}, "java.lang.String...", "java.lang.String[]"},
		{
			"wildcard",
			&TypeInfo{QualifiedName: "java.util.List", Args: []*TypeInfo{{
				Wildcard: true, QualifiedName: "?",
				Bounds: []*TypeInfo{{QualifiedName: "java.lang.Number"}},
			}}},
			"java.util.List<? extends java.lang.Number>",
			"java.util.List",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.typ.String(); got != tc.str {
				t.Fatalf("String() = %q, want %q", got, tc.str)
			}
			if got := tc.typ.ErasedName(); got != tc.erased {
				t.Fatalf("ErasedName() = %q, want %q", got, tc.erased)
			}
		})
	}
}

func TestMethod_HashableName(t *testing.T) {
	m := &Method{
		Name: "format",
		Params: []*Param{
			{Type: &TypeInfo{QualifiedName: "java.lang.String"}},
			{Type: &TypeInfo{QualifiedName: "java.lang.Object", Dimension: "..."}},
		},
		VarArgs: true,
	}
	if got := m.HashableName(); got != "format(java.lang.String,java.lang.Object[])" {
		t.Fatalf("HashableName() = %q", got)
	}
}

func TestSnapshot_NewClassIsIdempotent(t *testing.T) {
	s := NewSnapshot("v1")
	a, created := s.NewClass("p.A", true)
	if !created || !a.ID().IsValid() {
		t.Fatalf("first NewClass: created=%v id=%v", created, a.ID())
	}
	b, created := s.NewClass("p.A", false)
	if created || a != b {
		t.Fatalf("second NewClass must return the existing class")
	}
	if got, ok := s.Class(a.ID()); !ok || got != a {
		t.Fatalf("Class(id) lookup failed")
	}
}

func TestSplitQualifiedName(t *testing.T) {
	tests := []struct{ in, pkg, name string }{
		{"java.util.Map.Entry", "java.util", "Map.Entry"},
		{"p.q.r", "p.q", "r"},
		{"Top", "", "Top"},
	}
	for _, tc := range tests {
		pkg, name := SplitQualifiedName(tc.in)
		if pkg != tc.pkg || name != tc.name {
			t.Errorf("SplitQualifiedName(%q) = %q, %q", tc.in, pkg, name)
		}
	}
}

func TestHierarchyLookups(t *testing.T) {
	s := NewSnapshot("v1")
	iface := newTestClass(s, "p.Runner")
	iface.Kind = KindInterface
	superIface := newTestClass(s, "p.Base")
	superIface.Kind = KindInterface
	iface.Interfaces = []*Class{superIface}
	superIface.Methods = []*Method{{Name: "close", Class: superIface}}

	parent := newTestClass(s, "p.Parent")
	parent.Methods = []*Method{{Name: "run", Class: parent}}
	parent.Interfaces = []*Class{iface}

	child := newTestClass(s, "p.Child")
	child.Superclass = parent
	child.Methods = []*Method{{Name: "run", Class: child}}

	// cycle in a malformed input must not hang
	superIface.Interfaces = []*Class{iface}

	s.Freeze()

	if m := child.FindMethodInHierarchy("run()"); m == nil || m.Class != child {
		t.Fatalf("FindMethodInHierarchy(run) = %v", m)
	}
	if m := child.FindInterfaceMethod("close()"); m == nil || m.Class != superIface {
		t.Fatalf("FindInterfaceMethod(close) = %v", m)
	}
	if !child.ImplementsInterface("p.Base") {
		t.Fatalf("Child must implement p.Base through its superclass")
	}
	if child.ImplementsInterface("p.Missing") {
		t.Fatalf("Child must not implement p.Missing")
	}
	if m := child.Methods[0].Overridden; m == nil || m.Class != parent {
		t.Fatalf("Overridden = %v, want Parent.run", m)
	}
}

func TestClass_IsHidden(t *testing.T) {
	s := NewSnapshot("v1")
	outer := newTestClass(s, "p.Outer")
	inner := newTestClass(s, "p.Outer.Inner")
	inner.Containing = outer
	outer.Doc = ParseDoc("/** @hide */")
	if !inner.IsHidden() {
		t.Fatalf("inner class of a hidden class must be hidden")
	}

	other := newTestClass(s, "q.Other")
	other.Package.Hidden = true
	if !other.IsHidden() {
		t.Fatalf("class in a hidden package must be hidden")
	}
}

func TestParseDoc(t *testing.T) {
	d := ParseDoc("/**\n * Does things.\n * @deprecated use other\n * @since 4\n */")
	if !d.Deprecated || d.Hidden || d.Since != "4" {
		t.Fatalf("ParseDoc = %+v", d)
	}
	if ParseDoc("mail me @hidealot").Hidden {
		t.Fatalf("@hidealot is not @hide")
	}
}
