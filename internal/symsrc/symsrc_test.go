package symsrc

import (
	"errors"
	"testing"
)

func TestParseTypeRef(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		typeVar bool
		dim     string
		args    int
	}{
		{"int", "int", false, "", 0},
		{"java.lang.String[][]", "java.lang.String[][]", false, "[][]", 0},
		{"java.lang.Object...", "java.lang.Object...", false, "...", 0},
		{"T", "T", true, "", 0},
		{"T[]", "T[]", true, "[]", 0},
		{"java.util.Map<java.lang.String, java.util.List<T>>", "java.util.Map<java.lang.String, java.util.List<T>>", false, "", 2},
		{"java.util.List<? extends java.lang.Number>", "java.util.List<? extends java.lang.Number>", false, "", 1},
		{"java.util.Comparator<? super T>", "java.util.Comparator<? super T>", false, "", 1},
		{"E extends java.lang.Enum<E>", "E extends java.lang.Enum<E>", true, "", 0},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			ref, err := ParseTypeRef(tc.in)
			if err != nil {
				t.Fatalf("ParseTypeRef: %v", err)
			}
			if got := ref.String(); got != tc.want {
				t.Fatalf("String() = %q, want %q", got, tc.want)
			}
			if ref.TypeVar != tc.typeVar || ref.Dimension != tc.dim || len(ref.Args) != tc.args {
				t.Fatalf("ref = %+v", ref)
			}
		})
	}
}

func TestParseTypeRef_Malformed(t *testing.T) {
	for _, in := range []string{"", "java.util.List<", "a..b", "java.util.Map<K V>", "x.", "int]"} {
		if _, err := ParseTypeRef(in); err == nil {
			t.Errorf("ParseTypeRef(%q) must fail", in)
		}
	}
}

const sampleDump = `
name: v2
packages:
  - name: p
    comment: "/** Things. */"
classes:
  - name: Foo
    package: p
    visibility: public
    extends: p.Base<java.lang.String>
    implements: [java.lang.Runnable]
    methods:
      - name: bar
        visibility: public
        return: int
        params:
          - {name: xs, type: "java.lang.String..."}
        throws: [java.io.IOException]
    fields:
      - name: MAX
        visibility: public
        static: true
        final: true
        type: int
        value: "10"
  - name: Foo.Inner
    package: p
    containing: p.Foo
    visibility: public
    static: true
`

func TestLoad(t *testing.T) {
	set, err := Load("dump.yaml", []byte(sampleDump))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Name != "v2" || set.Len() != 2 {
		t.Fatalf("Name=%q Len=%d", set.Name, set.Len())
	}
	foo, ok := set.Lookup("p.Foo")
	if !ok {
		t.Fatalf("p.Foo missing")
	}
	if foo.Extends == nil || foo.Extends.Name != "p.Base" || len(foo.Extends.Args) != 1 {
		t.Fatalf("Extends = %+v", foo.Extends)
	}
	bar := foo.Methods[0]
	if !bar.VarArgs || bar.Params[0].Type.Dimension != "..." {
		t.Fatalf("bar varargs not detected: %+v", bar)
	}
	if f := foo.Fields[0]; f.Value == nil || *f.Value != "10" || !f.Static || !f.Final {
		t.Fatalf("field = %+v", f)
	}
	if _, ok := set.Lookup("p.Foo.Inner"); !ok {
		t.Fatalf("p.Foo.Inner missing")
	}
	if pkgs := set.Packages(); len(pkgs) != 1 || pkgs[0].Comment == "" {
		t.Fatalf("Packages() = %+v", pkgs)
	}
}

func TestLoad_NormalizesIdentifiers(t *testing.T) {
	// decomposed e + combining acute must match the precomposed key
	data := "classes:\n  - name: \"Cafe\u0301\"\n    package: p\n"
	set, err := Load("n.yaml", []byte(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := set.Lookup("p.Caf\u00e9"); !ok {
		t.Fatalf("NFC-normalized lookup failed")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		line int
	}{
		{"syntax", "classes:\n\t- name: A\n", 2},
		{"unknown field", "classes:\n  - name: A\n    bogus: 1\n", 3},
		{"bad type", "classes:\n  - name: A\n    extends: \"java.util.List<\"\n", 3},
		{"duplicate", "classes:\n  - name: A\n    pos: {line: 2}\n  - name: A\n    pos: {line: 4}\n", 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load("bad.yaml", []byte(tc.data))
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("err = %v, want *LoadError", err)
			}
			if le.File != "bad.yaml" || le.Line != tc.line {
				t.Fatalf("LoadError at %s:%d, want line %d (%v)", le.File, le.Line, tc.line, le.Err)
			}
		})
	}
}
